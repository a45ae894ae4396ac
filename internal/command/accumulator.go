package command

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// Accumulator turns one stream of text chunks into dispatched commands.
//
// Each top-level object is buffered on its own, starting at the '{' that
// opens it. Bytes between objects, such as the brackets and commas of a
// surrounding array, are scanned but never buffered. When the scanner sees
// the object close, the buffer is parsed; a valid command is dispatched and
// the buffer cleared. A buffer that does not parse yet is kept and grows
// until a later close makes it parse or the stream ends.
//
// A raw text block that opens outside a string is buffered verbatim up to
// its END_RAW without being scanned, and is expanded when the object closes.
//
// An Accumulator belongs to a single stream and is not safe for concurrent
// use.
type Accumulator struct {
	scanner    Scanner
	buf        strings.Builder
	dispatcher Dispatcher
	logger     *slog.Logger
	maxBuffer  int

	// discarding is set while skipping the rest of an oversized object.
	discarding bool
	// inRaw is set between START_RAW and END_RAW; sentinel counts the bytes
	// of the sentinel matched so far.
	inRaw    bool
	sentinel int
	// carry holds the unprocessed tail of a chunk whose dispatch failed.
	carry      string
	dispatched []Command
}

type AccumulatorOption func(*Accumulator)

// WithLogger sets the logger used for dropped buffers and invalid commands.
func WithLogger(logger *slog.Logger) AccumulatorOption {
	return func(a *Accumulator) {
		a.logger = logger
	}
}

// WithMaxBuffer bounds the size of a single buffered object. An object that
// grows past n bytes is skipped. Zero means no limit.
func WithMaxBuffer(n int) AccumulatorOption {
	return func(a *Accumulator) {
		a.maxBuffer = n
	}
}

func NewAccumulator(d Dispatcher, opts ...AccumulatorOption) *Accumulator {
	a := &Accumulator{
		dispatcher: d,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Feed consumes the next chunk and returns the commands it completed, in
// order. An error from the dispatcher stops processing; the command that
// failed is not redelivered, and the rest of the chunk is kept for the next
// call to Feed or Close.
func (a *Accumulator) Feed(chunk string) ([]Command, error) {
	if a.carry != "" {
		chunk = a.carry + chunk
		a.carry = ""
	}

	var done []Command
	for i := 0; i < len(chunk); i++ {
		c := chunk[i]

		// Raw text is buffered verbatim and hidden from the scanner.
		if a.inRaw {
			if a.matchSentinel(RawEnd, c) {
				a.inRaw = false
			}
			if !a.discarding {
				a.write(c)
			}
			continue
		}

		opening := a.scanner.Depth() == 0
		closed := a.scanner.Scan(c)

		if a.scanner.Depth() > 0 && !a.scanner.InString() {
			if a.matchSentinel(RawStart, c) {
				a.inRaw = true
			}
		} else {
			a.sentinel = 0
		}

		if a.discarding {
			if a.scanner.Depth() == 0 {
				a.discarding = false
			}
			continue
		}

		if a.buf.Len() == 0 && !(opening && a.scanner.Depth() == 1) {
			continue
		}
		if !a.write(c) || !closed {
			continue
		}

		cmd, ok, parsed := a.parseBuffer()
		if !parsed {
			continue
		}
		a.buf.Reset()
		if !ok {
			continue
		}

		if err := a.dispatcher.Dispatch(cmd); err != nil {
			a.carry = chunk[i+1:]
			return done, err
		}
		a.dispatched = append(a.dispatched, cmd)
		done = append(done, cmd)
	}
	return done, nil
}

// write buffers c. It reports false if that made the buffer too large, in
// which case the object is dropped and skipped.
func (a *Accumulator) write(c byte) bool {
	a.buf.WriteByte(c)
	if a.maxBuffer > 0 && a.buf.Len() > a.maxBuffer {
		a.logger.Warn("dropping oversized command buffer", "size", a.buf.Len(), "limit", a.maxBuffer)
		a.buf.Reset()
		a.discarding = a.scanner.Depth() > 0
		return false
	}
	return true
}

// matchSentinel advances the match of sentinel by c and reports whether the
// whole sentinel has now been seen. Neither sentinel repeats its first byte,
// so a mismatch only has to restart at that byte.
func (a *Accumulator) matchSentinel(sentinel string, c byte) bool {
	switch {
	case c == sentinel[a.sentinel]:
		a.sentinel++
	case c == sentinel[0]:
		a.sentinel = 1
	default:
		a.sentinel = 0
	}
	if a.sentinel == len(sentinel) {
		a.sentinel = 0
		return true
	}
	return false
}

// parseBuffer parses the buffered object. parsed is false if the buffer is
// not valid JSON yet; ok is false if it is valid JSON but not a command.
func (a *Accumulator) parseBuffer() (cmd Command, ok bool, parsed bool) {
	text := a.buf.String()

	candidates := []string{
		text,
		// Some providers leave newlines inside strings unescaped.
		newlineEscaper.Replace(text),
	}
	if strings.Contains(text, RawStart) {
		// The object is closed, so its raw blocks are complete.
		candidates = append(candidates, expandRawBlocks(text))
	}

	var v any
	for _, candidate := range candidates {
		if err := json.Unmarshal([]byte(candidate), &v); err == nil {
			parsed = true
			break
		}
	}
	if !parsed {
		return Command{}, false, false
	}

	cmd, ok = FromValue(v)
	if !ok {
		a.logger.Debug("skipping object that is not a command", "object", text)
	}
	return cmd, ok, true
}

// Close ends the stream. Any command that can still be salvaged from the
// pending buffer is dispatched, and the command that was still being
// written, if any, is returned.
func (a *Accumulator) Close() (*Command, error) {
	if a.carry != "" {
		if _, err := a.Feed(""); err != nil {
			return nil, err
		}
	}

	pending := a.buf.String()
	a.buf.Reset()
	a.scanner.Reset()
	a.discarding = false
	a.inRaw = false
	a.sentinel = 0

	complete, partial := recoverPending(pending)
	if len(complete) == 0 && partial == nil && strings.TrimSpace(pending) != "" {
		a.logger.Warn("discarding unreadable command buffer at end of stream", "size", len(pending))
	}
	for i, cmd := range complete {
		if err := a.dispatcher.Dispatch(cmd); err != nil {
			a.logger.Debug("dispatch failed while closing stream", "command", cmd.Name, "remaining", len(complete)-i-1)
			return partial, err
		}
		a.dispatched = append(a.dispatched, cmd)
	}
	return partial, nil
}

// Snapshot returns the commands dispatched so far and the best known state
// of the command currently being streamed.
func (a *Accumulator) Snapshot() (complete []Command, partial *Command) {
	complete = make([]Command, len(a.dispatched))
	copy(complete, a.dispatched)
	if a.discarding {
		return complete, nil
	}
	_, partial = recoverPending(a.buf.String())
	return complete, partial
}

// recoverPending is Recover for a buffer that may hold raw text blocks,
// possibly one that is still open.
func recoverPending(pending string) ([]Command, *Command) {
	if strings.Contains(pending, RawStart) {
		pending = expandRawBlocks(pending)
	}
	return Recover(pending)
}

// Pending returns the text buffered for the object currently open.
func (a *Accumulator) Pending() string {
	return a.buf.String()
}

// Dispatched returns how many commands were dispatched successfully.
func (a *Accumulator) Dispatched() int {
	return len(a.dispatched)
}
