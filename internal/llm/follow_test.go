package llm

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendFile(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(text)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestFollowStreamReadsAppendedText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.txt")
	first := `[{"say": {"text": "a"}}`
	second := `, {"say": {"text": "b"}}]`
	require.NoError(t, os.WriteFile(path, []byte(first), 0o644))

	stream, err := FollowStream(context.Background(), path, 4, 500*time.Millisecond)
	require.NoError(t, err)

	var got strings.Builder
	for got.Len() < len(first) {
		event := <-stream.Events
		text, ok := event.(*TextEvent)
		require.True(t, ok, "unexpected event %T", event)
		got.WriteString(text.Content)
	}
	assert.Equal(t, first, got.String())

	appendFile(t, path, second)

	rest, complete, errs := collect(t, stream)
	assert.Empty(t, errs)
	assert.Equal(t, second, strings.Join(rest, ""))
	require.NotNil(t, complete)
	assert.Equal(t, first+second, complete.Content)
}

func TestFollowStreamEndsOnRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reply.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	stream, err := FollowStream(context.Background(), path, 0, 0)
	require.NoError(t, err)

	event := <-stream.Events
	require.IsType(t, &TextEvent{}, event)

	require.NoError(t, os.Rename(path, filepath.Join(dir, "moved.txt")))

	_, complete, errs := collect(t, stream)
	assert.Empty(t, errs)
	require.NotNil(t, complete)
	assert.Equal(t, "abc", complete.Content)
}

func TestFollowStreamCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := FollowStream(ctx, path, 1, 0)
	require.NoError(t, err)

	<-stream.Events
	cancel()
	<-stream.Done
}

func TestFollowStreamMissingFile(t *testing.T) {
	_, err := FollowStream(context.Background(), filepath.Join(t.TempDir(), "missing"), 4, time.Second)
	assert.ErrorContains(t, err, "failed to open")
}
