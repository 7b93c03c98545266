package scene

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the scene at path whenever it changes and delivers each valid
// result on the returned channel. Files that fail to parse are reported to
// onErr and skipped. Only the newest pending config is kept.
//
// The parent directory is watched so that editors that replace the file by
// rename are picked up too. The channel closes when ctx is done.
func Watch(ctx context.Context, path string, onErr func(error)) (<-chan Config, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("scene: watch: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("scene: watch: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("scene: watch %s: %w", filepath.Dir(abs), err)
	}
	if onErr == nil {
		onErr = func(error) {}
	}

	out := make(chan Config, 1)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				onErr(fmt.Errorf("scene: watch: %w", err))
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				c, err := Load(abs)
				if err != nil {
					onErr(err)
					continue
				}
				publish(out, c)
			}
		}
	}()
	return out, nil
}

// Rewrite applies f to every config from in. Like Watch, it keeps only the
// newest undelivered result, so a slow reader never sees stale scenes. The
// returned channel closes when in does.
func Rewrite(in <-chan Config, f func(Config) Config) <-chan Config {
	out := make(chan Config, 1)
	go func() {
		defer close(out)
		for c := range in {
			publish(out, f(c))
		}
	}()
	return out
}

// publish replaces any undelivered config with c.
func publish(out chan Config, c Config) {
	for {
		select {
		case out <- c:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}
