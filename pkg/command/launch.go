package command

import (
	"container/list"
	"sync"

	"github.com/dmitrymomot/nowplaying/pkg/media"
)

const defaultLaunchCacheSize = 16

type launchEntry struct {
	app    string
	opener media.Opener
}

// launchCache memoizes successful launcher lookups per app. The least
// recently used app is evicted once capacity is exceeded. Misses are not
// stored, so an app that gains a launch target is found on the next lookup.
type launchCache struct {
	capacity int
	items    map[string]*list.Element
	order    *list.List
	mu       sync.Mutex
}

func newLaunchCache(capacity int) *launchCache {
	if capacity <= 0 {
		capacity = defaultLaunchCacheSize
	}
	return &launchCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// resolve returns the cached opener for app or asks launcher and stores a hit.
func (c *launchCache) resolve(app string, launcher media.Launcher) (media.Opener, bool) {
	c.mu.Lock()
	if elem, ok := c.items[app]; ok {
		c.order.MoveToFront(elem)
		e := elem.Value.(*launchEntry)
		c.mu.Unlock()
		return e.opener, true
	}
	c.mu.Unlock()

	opener, ok := launcher.LaunchOpener(app)
	if !ok || opener == nil {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, exists := c.items[app]; exists {
		c.order.MoveToFront(elem)
		elem.Value.(*launchEntry).opener = opener
		return opener, true
	}
	c.items[app] = c.order.PushFront(&launchEntry{app: app, opener: opener})
	if c.order.Len() > c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*launchEntry).app)
		}
	}
	return opener, true
}

func (c *launchCache) forget(app string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[app]; ok {
		c.order.Remove(elem)
		delete(c.items, app)
	}
}

func (c *launchCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
