package command

// Scanner tracks just enough JSON lexical state to find object boundaries:
// whether we are inside a string literal, whether the previous byte was an
// escaping backslash, and the nesting of braces.
//
// Only ASCII bytes are structural, and UTF-8 never uses ASCII bytes inside a
// multi-byte sequence, so a chunk that splits a rune is scanned correctly.
type Scanner struct {
	inString   bool
	escapeNext bool
	braces     []byte
}

// Scan consumes one byte and reports whether it closed a top-level object.
func (s *Scanner) Scan(c byte) bool {
	// The escape flag only ever applies to the byte right after the backslash.
	escaped := s.escapeNext
	s.escapeNext = false

	switch {
	case c == '"' && !escaped:
		s.inString = !s.inString
	case c == '\\' && s.inString:
		if !escaped {
			s.escapeNext = true
		}
	case c == '{' && !s.inString:
		s.braces = append(s.braces, '{')
	case c == '}' && !s.inString:
		if n := len(s.braces); n > 0 && s.braces[n-1] == '{' {
			s.braces = s.braces[:n-1]
			return len(s.braces) == 0
		}
	}
	return false
}

// Depth returns the current brace nesting depth.
func (s *Scanner) Depth() int {
	return len(s.braces)
}

// InString reports whether the last scanned byte left us inside a string.
func (s *Scanner) InString() bool {
	return s.inString
}

// Reset returns the scanner to its initial state.
func (s *Scanner) Reset() {
	s.inString = false
	s.escapeNext = false
	s.braces = s.braces[:0]
}
