package command

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

var errEmptyInput = errors.New("empty input")

// tolerantReader decodes JSON that may have been cut off at any byte.
// Whatever is still open when the input runs out is closed with its best
// known value: strings keep what arrived, objects and arrays keep their
// finished members, truncated literals are completed and truncated numbers
// fall back to their longest valid prefix. Malformed input that is not
// explained by truncation is an error.
type tolerantReader struct {
	data string
	pos  int
}

func parseTolerant(s string) (any, error) {
	r := &tolerantReader{data: s}
	r.skipSpace()
	if r.eof() {
		return nil, errEmptyInput
	}

	v, ok, err := r.value()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errEmptyInput
	}

	r.skipSpace()
	if !r.eof() {
		return nil, r.errorf("unexpected trailing data")
	}
	return v, nil
}

func (r *tolerantReader) eof() bool {
	return r.pos >= len(r.data)
}

func (r *tolerantReader) peek() byte {
	return r.data[r.pos]
}

func (r *tolerantReader) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", r.pos, fmt.Sprintf(format, args...))
}

func (r *tolerantReader) skipSpace() {
	for !r.eof() {
		switch r.peek() {
		case ' ', '\t', '\n', '\r':
			r.pos++
		default:
			return
		}
	}
}

// value reads the next value. ok is false when the input ended before any
// usable part of a value was seen.
func (r *tolerantReader) value() (v any, ok bool, err error) {
	r.skipSpace()
	if r.eof() {
		return nil, false, nil
	}

	switch c := r.peek(); {
	case c == '{':
		return r.object()
	case c == '[':
		return r.array()
	case c == '"':
		s, _, err := r.str()
		if err != nil {
			return nil, false, err
		}
		return s, true, nil
	case c == 't':
		return r.literal("true", true)
	case c == 'f':
		return r.literal("false", false)
	case c == 'n':
		return r.literal("null", nil)
	case c == '-' || (c >= '0' && c <= '9'):
		return r.number()
	default:
		return nil, false, r.errorf("unexpected character %q", c)
	}
}

func (r *tolerantReader) object() (any, bool, error) {
	r.pos++ // '{'
	obj := make(map[string]any)
	expectComma := false

	for {
		r.skipSpace()
		if r.eof() {
			return obj, true, nil
		}

		c := r.peek()
		if c == '}' {
			r.pos++
			return obj, true, nil
		}

		if expectComma {
			if c != ',' {
				return nil, false, r.errorf("expected ',' or '}' in object, got %q", c)
			}
			r.pos++
			r.skipSpace()
			if r.eof() {
				return obj, true, nil
			}
			c = r.peek()
		}

		if c != '"' {
			return nil, false, r.errorf("expected object key, got %q", c)
		}
		key, closed, err := r.str()
		if err != nil {
			return nil, false, err
		}
		if !closed {
			// Half a key carries no information.
			return obj, true, nil
		}

		r.skipSpace()
		if r.eof() {
			return obj, true, nil
		}
		if c := r.peek(); c != ':' {
			return nil, false, r.errorf("expected ':' after key %q, got %q", key, c)
		}
		r.pos++

		v, ok, err := r.value()
		if err != nil {
			return nil, false, err
		}
		if ok {
			obj[key] = v
		}
		expectComma = true
	}
}

func (r *tolerantReader) array() (any, bool, error) {
	r.pos++ // '['
	arr := make([]any, 0)
	expectComma := false

	for {
		r.skipSpace()
		if r.eof() {
			return arr, true, nil
		}

		c := r.peek()
		if c == ']' {
			r.pos++
			return arr, true, nil
		}

		if expectComma {
			if c != ',' {
				return nil, false, r.errorf("expected ',' or ']' in array, got %q", c)
			}
			r.pos++
		}

		v, ok, err := r.value()
		if err != nil {
			return nil, false, err
		}
		if ok {
			arr = append(arr, v)
		}
		expectComma = true
	}
}

// str reads a string literal starting at the opening quote. closed reports
// whether the closing quote was found before the input ran out. Raw control
// characters are accepted since some providers emit unescaped newlines.
func (r *tolerantReader) str() (s string, closed bool, err error) {
	r.pos++ // opening quote
	var sb strings.Builder

	for !r.eof() {
		c := r.peek()
		switch c {
		case '"':
			r.pos++
			return sb.String(), true, nil

		case '\\':
			if r.pos+1 >= len(r.data) {
				r.pos = len(r.data)
				return sb.String(), false, nil
			}
			esc := r.data[r.pos+1]
			switch esc {
			case '"', '\\', '/':
				sb.WriteByte(esc)
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'u':
				ru, width, complete, err := r.unicodeEscape(r.pos)
				if err != nil {
					return "", false, err
				}
				if !complete {
					r.pos = len(r.data)
					return sb.String(), false, nil
				}
				sb.WriteRune(ru)
				r.pos += width
				continue
			default:
				return "", false, r.errorf("invalid escape sequence \\%c", esc)
			}
			r.pos += 2

		default:
			start := r.pos
			for !r.eof() && r.peek() != '"' && r.peek() != '\\' {
				r.pos++
			}
			sb.WriteString(r.data[start:r.pos])
		}
	}
	return sb.String(), false, nil
}

// unicodeEscape decodes the \uXXXX escape at offset i, joining surrogate
// pairs. complete is false if the input ends inside the escape.
func (r *tolerantReader) unicodeEscape(i int) (ru rune, width int, complete bool, err error) {
	hi, partial, err := r.hex4(i)
	if err != nil || partial {
		return 0, 0, false, err
	}
	if !utf16.IsSurrogate(rune(hi)) {
		return rune(hi), 6, true, nil
	}

	// A high surrogate needs its partner, which may still be on its way.
	j := i + 6
	rest := r.data[j:]
	switch {
	case rest == "" || rest == `\`:
		return 0, 0, false, nil
	case strings.HasPrefix(rest, `\u`):
		lo, partial, err := r.hex4(j)
		if err != nil || partial {
			return 0, 0, false, err
		}
		if dec := utf16.DecodeRune(rune(hi), rune(lo)); dec != utf8.RuneError {
			return dec, 12, true, nil
		}
	}
	return utf8.RuneError, 6, true, nil
}

// hex4 parses the four hex digits of the \u escape at offset i. partial
// reports that the input ends before all four digits arrived.
func (r *tolerantReader) hex4(i int) (n uint16, partial bool, err error) {
	end := i + 6
	if end > len(r.data) {
		for _, c := range []byte(r.data[i+2:]) {
			if !isHex(c) {
				return 0, false, r.errorf("invalid unicode escape")
			}
		}
		return 0, true, nil
	}
	v, err := strconv.ParseUint(r.data[i+2:end], 16, 16)
	if err != nil {
		return 0, false, r.errorf("invalid unicode escape %q", r.data[i:end])
	}
	return uint16(v), false, nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (r *tolerantReader) literal(word string, v any) (any, bool, error) {
	rest := r.data[r.pos:]
	if strings.HasPrefix(rest, word) {
		r.pos += len(word)
		return v, true, nil
	}
	if strings.HasPrefix(word, rest) {
		r.pos = len(r.data)
		return v, true, nil
	}
	return nil, false, r.errorf("invalid literal, expected %q", word)
}

// jsonNumber is the number grammar of RFC 8259, which unlike
// strconv.ParseFloat rejects leading zeros, a leading '+' and a bare '.'.
var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

func (r *tolerantReader) number() (any, bool, error) {
	start := r.pos
	for !r.eof() && strings.IndexByte("+-.eE0123456789", r.peek()) >= 0 {
		r.pos++
	}
	text := r.data[start:r.pos]

	if jsonNumber.MatchString(text) {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, false, r.errorf("invalid number %q", text)
		}
		return f, true, nil
	}
	if !r.eof() {
		return nil, false, r.errorf("invalid number %q", text)
	}

	// Cut off mid-number: keep the longest prefix that is still a number.
	for end := len(text) - 1; end > 0; end-- {
		if !jsonNumber.MatchString(text[:end]) {
			continue
		}
		if f, err := strconv.ParseFloat(text[:end], 64); err == nil {
			return f, true, nil
		}
	}
	return nil, false, nil
}
