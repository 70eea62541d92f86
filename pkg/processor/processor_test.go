package processor_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xhad/docsearch/pkg/processor"
)

func TestProcessor_Process(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	page := strings.Repeat("Hello world ", 60)
	text := page + "\n" + page + "\n" + page
	uploadedAt := time.Date(2024, 3, 9, 14, 5, 7, 123, time.FixedZone("CET", 3600))

	meta := p.Process(text, "report.pdf", uploadedAt)

	assert.Equal(t, 360, meta.WordCount)
	assert.Equal(t, len(strings.Fields(text)), meta.WordCount)
	assert.Equal(t, text[:1000], meta.Content)
	assert.Len(t, []rune(meta.Content), 1000)
	assert.Equal(t, "report.pdf", meta.FileName)
	assert.Equal(t, "2024-03-09T13:05:07.000000123Z", meta.UploadDate)
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		n        int
		expected string
	}{
		{name: "shorter than limit", text: "short", n: 10, expected: "short"},
		{name: "exact limit", text: "abcde", n: 5, expected: "abcde"},
		{name: "truncates", text: "abcdefgh", n: 3, expected: "abc"},
		{name: "counts runes not bytes", text: "héllo wörld", n: 4, expected: "héll"},
		{name: "zero", text: "abc", n: 0, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, processor.Preview(tt.text, tt.n))
		})
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, processor.WordCount(""))
	assert.Equal(t, 0, processor.WordCount(" \n\t "))
	assert.Equal(t, 4, processor.WordCount("one  two\nthree\tfour"))
}

func TestProcessStripsInvalidBytes(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{PreviewLength: 50})

	meta := p.Process("ok\x00 text \xff end", "a.pdf", time.Unix(0, 0))

	assert.Equal(t, "ok text  end", meta.Content)
}

func TestUploadDateSorts(t *testing.T) {
	earlier := processor.FormatUploadDate(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	later := processor.FormatUploadDate(time.Date(2024, 1, 1, 10, 0, 0, 5, time.UTC))

	assert.Less(t, earlier, later)
}
