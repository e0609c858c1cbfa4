package palette

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/nowplaying/pkg/artwork"
	"github.com/dmitrymomot/nowplaying/pkg/logger"
	"github.com/dmitrymomot/nowplaying/pkg/metrics"
)

// DefaultSampleEdge bounds the image the quantizer looks at.
const DefaultSampleEdge = 100

// DefaultColor is used when no target qualifies (#2D2D2D).
var DefaultColor = color.RGBA{R: 0x2d, G: 0x2d, B: 0x2d, A: 0xff}

// Job asks for the background color of one piece of art.
type Job struct {
	Identity artwork.Identity
	Image    image.Image
}

// Result is the color computed for Identity.
type Result struct {
	Identity artwork.Identity
	Color    color.RGBA
}

// ColorFunc computes the background color of an already sampled image.
type ColorFunc func(img image.Image) color.RGBA

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithFallback sets the color used when extraction yields nothing.
func WithFallback(c color.RGBA) Option {
	return func(e *Extractor) { e.fallback = c }
}

// WithSampleEdge sets the max edge of the sampled image. Values <= 0 disable sampling.
func WithSampleEdge(edge int) Option {
	return func(e *Extractor) { e.sampleEdge = edge }
}

// WithMaxColors sets the swatch count for Generate.
func WithMaxColors(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxColors = n
		}
	}
}

// WithColorFunc replaces the default Generate+Select pipeline.
func WithColorFunc(fn ColorFunc) Option {
	return func(e *Extractor) {
		if fn != nil {
			e.colorFn = fn
		}
	}
}

// WithResultBuffer sets the capacity of the results channel.
func WithResultBuffer(n int) Option {
	return func(e *Extractor) {
		if n >= 0 {
			e.resultBuf = n
		}
	}
}

// Extractor computes palette colors on a single background goroutine.
type Extractor struct {
	log        *slog.Logger
	fallback   color.RGBA
	sampleEdge int
	maxColors  int
	resultBuf  int
	colorFn    ColorFunc

	mu      sync.Mutex
	queue   []Job
	wake    chan struct{}
	results chan Result
	done    chan struct{}
	closed  atomic.Bool
	once    sync.Once
}

// NewExtractor creates an extractor and starts its worker.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		log:        slog.Default(),
		fallback:   DefaultColor,
		sampleEdge: DefaultSampleEdge,
		maxColors:  DefaultMaxColors,
		resultBuf:  16,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.colorFn == nil {
		e.colorFn = func(img image.Image) color.RGBA {
			return Select(Generate(img, e.maxColors), e.fallback)
		}
	}
	e.results = make(chan Result, e.resultBuf)
	e.log = e.log.With(logger.Component("palette"))

	go e.run()
	return e
}

// Submit enqueues a job. It never blocks.
func (e *Extractor) Submit(job Job) error {
	if job.Image == nil {
		return ErrNilImage
	}

	e.mu.Lock()
	if e.closed.Load() {
		e.mu.Unlock()
		return ErrExtractorClosed
	}
	e.queue = append(e.queue, job)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	metrics.PaletteJobsTotal.WithLabelValues(metrics.ResultSubmitted).Inc()
	return nil
}

// Results delivers computed colors in submission order.
// The channel is never closed; select on it together with your own shutdown signal.
func (e *Extractor) Results() <-chan Result {
	return e.results
}

// Pending returns the number of queued jobs, excluding the one in flight.
func (e *Extractor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Close stops the worker without waiting for the job in flight. Queued jobs
// are dropped and any result computed afterwards is discarded. Safe to call
// more than once.
func (e *Extractor) Close() {
	e.once.Do(func() {
		e.mu.Lock()
		e.closed.Store(true)
		e.queue = nil
		e.mu.Unlock()
		close(e.done)
	})
}

func (e *Extractor) run() {
	for {
		job, ok := e.next()
		if !ok {
			return
		}

		res := Result{Identity: job.Identity, Color: e.compute(job)}
		if e.closed.Load() {
			return
		}

		select {
		case e.results <- res:
		case <-e.done:
			return
		}
	}
}

func (e *Extractor) next() (Job, bool) {
	for {
		e.mu.Lock()
		if e.closed.Load() {
			e.mu.Unlock()
			return Job{}, false
		}
		if len(e.queue) > 0 {
			job := e.queue[0]
			e.queue[0] = Job{}
			e.queue = e.queue[1:]
			e.mu.Unlock()
			return job, true
		}
		e.mu.Unlock()

		select {
		case <-e.wake:
		case <-e.done:
			return Job{}, false
		}
	}
}

// compute never panics; any failure yields the fallback color.
func (e *Extractor) compute(job Job) (c color.RGBA) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("palette extraction panicked",
				logger.Identity(job.Identity),
				logger.Error(fmt.Errorf("panic: %v", r)))
			c = e.fallback
		}
		metrics.PaletteDuration.Observe(time.Since(start).Seconds())
	}()

	img := job.Image
	if e.sampleEdge > 0 {
		sampled, err := artwork.Sample(img, e.sampleEdge)
		if err != nil {
			e.log.Warn("sampling art failed", logger.Identity(job.Identity), logger.Error(err))
			return e.fallback
		}
		img = sampled
	}
	return e.colorFn(img)
}
