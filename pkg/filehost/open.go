package filehost

import (
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"github.com/dmitrymomot/nowplaying/pkg/media"
)

// OpenFunc hands target (a URL, URI or path) to the desktop.
type OpenFunc func(ctx context.Context, target string) error

// CommandOpener runs name with args followed by the target, e.g. "xdg-open".
func CommandOpener(name string, args ...string) OpenFunc {
	return func(ctx context.Context, target string) error {
		cmd := exec.CommandContext(ctx, name, append(slices.Clone(args), target)...)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("%w: %s: %w: %s", ErrOpenFailed, name, err, strings.TrimSpace(string(out)))
		}
		return nil
	}
}

// Target binds fn to a fixed target.
func Target(fn OpenFunc, target string) media.Opener {
	return media.OpenerFunc(func(ctx context.Context) error {
		return fn(ctx, target)
	})
}
