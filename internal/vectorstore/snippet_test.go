package vectorstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnippetShortTextReturnedInFull(t *testing.T) {
	require.Equal(t, "hello world", Snippet("hello world"))
}

func TestSnippetCollapsesWhitespace(t *testing.T) {
	require.Equal(t, "hello world", Snippet("  hello \n\n world  "))
}

func TestSnippetTruncatesTo200Chars(t *testing.T) {
	text := strings.Repeat("a", 500)
	snippet := Snippet(text)
	require.LessOrEqual(t, len(snippet), 200)
	require.Equal(t, strings.Repeat("a", 200), snippet)
}
