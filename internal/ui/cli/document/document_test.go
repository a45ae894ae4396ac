package document

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteParsed(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "complete list",
			input:    `[{"say": {"text": "a <b>"}}, {"think": {"thoughts": "c"}}]`,
			expected: `{"complete": [{"say": {"text": "a <b>"}}, {"think": {"thoughts": "c"}}], "partial": null}`,
		},
		{
			name:     "cut off",
			input:    `[{"say": {"text": "a"}}, {"say": {"text": "b`,
			expected: `{"complete": [{"say": {"text": "a"}}], "partial": {"say": {"text": "b"}}}`,
		},
		{
			name:     "raw block",
			input:    "[{\"write\": {\"filename\": \"x.py\", \"text\": START_RAW\nprint(\"hi\")\nEND_RAW}}]",
			expected: `{"complete": [{"write": {"filename": "x.py", "text": "print(\"hi\")"}}], "partial": null}`,
		},
		{
			name:     "not json",
			input:    "hello",
			expected: `{"complete": [], "partial": null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeParsed(&buf, tt.input))
			assert.JSONEq(t, tt.expected, buf.String())
		})
	}
}

func TestWriteParsedKeepsHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeParsed(&buf, `{"say": {"text": "<b>&</b>"}}`))
	assert.Contains(t, buf.String(), "<b>&</b>")
	assert.True(t, json.Valid(buf.Bytes()))
}
