package localstore

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ChangeFunc receives the slot key and its new raw value whenever
// another view rewrites a slot.
type ChangeFunc func(key string, raw []byte)

// Watch observes the state directory and invokes onChange for writes
// made by other views. Own writes are suppressed by byte comparison.
// Runs until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, onChange ChangeFunc, log zerolog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start store watch: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch state dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				key, ok := keyForPath(ev.Name)
				if !ok {
					continue
				}
				raw, err := s.Load(key)
				if err != nil || len(raw) == 0 {
					continue
				}
				if s.WrittenBySelf(key, raw) {
					continue
				}
				log.Debug().Str("key", key).Msg("store changed by another view")
				onChange(key, raw)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("store watch error")
			}
		}
	}()
	return nil
}
