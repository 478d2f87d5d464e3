package logstore

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 250 * time.Millisecond

// Watch calls onChange after the text log or ledger changes on disk, for
// example when another process appends a claim. Bursts of events are
// coalesced. onChange runs on the watcher goroutine. Watching stops when ctx
// is cancelled.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	textAbs, err := filepath.Abs(s.TextPath)
	if err != nil {
		w.Close()
		return err
	}
	ledgerAbs, err := filepath.Abs(s.LedgerPath)
	if err != nil {
		w.Close()
		return err
	}
	// Watch the directory so files created later are seen too.
	if err := w.Add(filepath.Dir(textAbs)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(textAbs), err)
	}

	go func() {
		defer w.Close()

		timer := time.NewTimer(debounce)
		timer.Stop()

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				name := filepath.Clean(ev.Name)
				if name != textAbs && name != ledgerAbs {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				timer.Reset(debounce)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warning("log watcher: %v", err)
			case <-timer.C:
				onChange()
			}
		}
	}()
	return nil
}
