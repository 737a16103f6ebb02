package summarize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/svnchurn/svnchurn/internal/summarize"
)

func TestSummarize_EmptyMessage(t *testing.T) {
	s := summarize.Summarize(summarize.Config{MessageMaxLength: 120}, "")
	assert.Equal(t, 0, s.Length)
	assert.Equal(t, "", s.Short)
}

func TestSummarize_LengthIncludesNewlines(t *testing.T) {
	msg := "line one\nline two\n"
	s := summarize.Summarize(summarize.Config{MessageMaxLength: 120}, msg)
	assert.Equal(t, len(msg), s.Length)
}

func TestSummarize_NewlinesBecomeSingleSpaces(t *testing.T) {
	s := summarize.Summarize(summarize.Config{MessageMaxLength: 120}, "fix bug\r\nin parser\rand\ncache")
	assert.Equal(t, "fix bug in parser and cache", s.Short)
}

func TestSummarize_CollapsesMultipleSpaces(t *testing.T) {
	s := summarize.Summarize(summarize.Config{MessageMaxLength: 120}, "fix   the    bug")
	assert.Equal(t, "fix the bug", s.Short)
}

func TestSummarize_Trims(t *testing.T) {
	s := summarize.Summarize(summarize.Config{MessageMaxLength: 120}, "  padded message  ")
	assert.Equal(t, "padded message", s.Short)
}

func TestSummarize_TruncatesAndAppendsEllipsis(t *testing.T) {
	msg := strings.Repeat("a", 150)
	s := summarize.Summarize(summarize.Config{MessageMaxLength: 10}, msg)
	assert.Equal(t, strings.Repeat("a", 10)+"...", s.Short)
	assert.Equal(t, 13, len(s.Short))
}

func TestSummarize_ExactlyAtMaxLengthNotTruncated(t *testing.T) {
	msg := strings.Repeat("a", 10)
	s := summarize.Summarize(summarize.Config{MessageMaxLength: 10}, msg)
	assert.Equal(t, msg, s.Short)
}
