package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/isaacphi/cmdstream/internal/events"
)

const DefaultChunkSize = 16

// ReaderStream replays r as a model reply, cut into chunks of chunkSize
// bytes. Chunks do not respect UTF-8 or JSON token boundaries, which makes
// it useful for exercising stream consumers with recorded output.
func ReaderStream(ctx context.Context, r io.Reader, chunkSize int) LLMStream {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	eventsChan := make(chan events.Event)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(eventsChan)

		var content strings.Builder
		buf := make([]byte, chunkSize)
		for {
			n, err := io.ReadFull(r, buf)
			if n > 0 {
				content.Write(buf[:n])
				if !send(ctx, eventsChan, &TextEvent{Content: string(buf[:n])}) {
					return
				}
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			if err != nil {
				send(ctx, eventsChan, &events.ErrorEvent{Error: fmt.Errorf("failed to read stream: %w", err)})
				return
			}
		}

		send(ctx, eventsChan, &MessageCompleteEvent{Content: content.String()})
	}()

	return LLMStream{Events: eventsChan, Done: done}
}
