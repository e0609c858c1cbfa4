package filehost

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/nowplaying/pkg/media"
)

// defaultActions is advertised when a descriptor omits the actions field.
const defaultActions = media.ActionPlay | media.ActionPause | media.ActionPlayPause

// Descriptor is the on-disk description of one playback session.
type Descriptor struct {
	Token   string   `json:"token" yaml:"token"`
	App     string   `json:"app" yaml:"app"`
	Title   string   `json:"title" yaml:"title"`
	Artist  string   `json:"artist" yaml:"artist"`
	Art     string   `json:"art" yaml:"art"`
	Status  string   `json:"status" yaml:"status"`
	Actions []string `json:"actions" yaml:"actions"`
	Order   int      `json:"order" yaml:"order"`
	// Open is the session-level target handed to the open command.
	Open string `json:"open" yaml:"open"`
	// Launch is the app-level launch target, remembered per app.
	Launch string `json:"launch" yaml:"launch"`
}

// isDescriptor reports whether name has a descriptor extension.
func isDescriptor(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// ParseDescriptor decodes data according to the extension of name. The token
// falls back to the file name without extension.
func ParseDescriptor(name string, data []byte) (Descriptor, error) {
	var d Descriptor
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		err = json.Unmarshal(data, &d)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &d)
	default:
		return d, fmt.Errorf("%w: unsupported extension %q", ErrInvalidDescriptor, filepath.Ext(name))
	}
	if err != nil {
		return d, fmt.Errorf("%w: %s: %w", ErrInvalidDescriptor, name, err)
	}

	d.Token = strings.TrimSpace(d.Token)
	if d.Token == "" {
		base := filepath.Base(name)
		d.Token = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if d.Token == "." || d.Token == ".." || strings.ContainsAny(d.Token, `/\`) {
		return d, fmt.Errorf("%w: token %q is not a valid file name", ErrInvalidDescriptor, d.Token)
	}
	return d, nil
}

// actions returns the advertised bitmask. A missing field means the default
// play/pause set; an explicit empty list means none.
func (d Descriptor) actions() media.Actions {
	if d.Actions == nil {
		return defaultActions
	}
	return media.ParseActions(d.Actions...)
}
