package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/isaacphi/cmdstream/internal/events"
)

// FollowStream replays the file at path like ReaderStream and then keeps
// streaming whatever is appended to it, the way tail -f does. The stream
// ends when the file is renamed away or when nothing was appended for idle.
// With a zero idle it only ends with ctx.
func FollowStream(ctx context.Context, path string, chunkSize int, idle time.Duration) (LLMStream, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	f, err := os.Open(path)
	if err != nil {
		return LLMStream{}, fmt.Errorf("failed to open %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return LLMStream{}, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		f.Close()
		return LLMStream{}, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	eventsChan := make(chan events.Event)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(eventsChan)
		defer f.Close()
		defer watcher.Close()

		var content strings.Builder
		buf := make([]byte, chunkSize)

		// drain sends everything readable so far. It reports false once the
		// stream has to stop.
		drain := func() bool {
			for {
				n, err := f.Read(buf)
				if n > 0 {
					content.Write(buf[:n])
					if !send(ctx, eventsChan, &TextEvent{Content: string(buf[:n])}) {
						return false
					}
				}
				if errors.Is(err, io.EOF) {
					return true
				}
				if err != nil {
					send(ctx, eventsChan, &events.ErrorEvent{Error: fmt.Errorf("failed to read %s: %w", path, err)})
					return false
				}
			}
		}

		var (
			timer *time.Timer
			idleC <-chan time.Time
		)
		if idle > 0 {
			timer = time.NewTimer(idle)
			defer timer.Stop()
			idleC = timer.C
		}

		if !drain() {
			return
		}

	loop:
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					break loop
				}
				switch {
				case event.Has(fsnotify.Write):
					if !drain() {
						return
					}
					if timer != nil {
						timer.Reset(idle)
					}
				case event.Has(fsnotify.Rename), event.Has(fsnotify.Remove):
					if !drain() {
						return
					}
					break loop
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					break loop
				}
				send(ctx, eventsChan, &events.ErrorEvent{Error: fmt.Errorf("failed to watch %s: %w", path, err)})
				return

			case <-idleC:
				break loop
			}
		}

		send(ctx, eventsChan, &MessageCompleteEvent{Content: content.String()})
	}()

	return LLMStream{Events: eventsChan, Done: done}, nil
}
