package processor

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xhad/docsearch/internal/models"
)

// UploadDateLayout is RFC 3339 in UTC with nanoseconds: unambiguous and
// lexically sortable.
const UploadDateLayout = "2006-01-02T15:04:05.000000000Z07:00"

type ProcessorConfig struct {
	PreviewLength int
}

type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.PreviewLength <= 0 {
		config.PreviewLength = 1000
	}

	return Processor{
		config: config,
	}
}

// Process builds the index metadata for an extracted document.
func (p *Processor) Process(text, fileName string, uploadedAt time.Time) models.Metadata {
	return models.Metadata{
		Content:    sanitizeUTF8(Preview(text, p.config.PreviewLength)),
		FileName:   fileName,
		WordCount:  WordCount(text),
		UploadDate: FormatUploadDate(uploadedAt),
	}
}

// Preview returns the first n characters (runes) of text.
func Preview(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}

// WordCount counts whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func FormatUploadDate(t time.Time) string {
	return t.UTC().Format(UploadDateLayout)
}

// sanitizeUTF8 drops invalid byte sequences and NUL characters, neither of
// which PostgreSQL accepts in text or jsonb values.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) && !strings.ContainsRune(s, 0) {
		return s
	}
	v := make([]rune, 0, len(s))
	for i, r := range s {
		if r == 0 {
			continue
		}
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				continue
			}
		}
		v = append(v, r)
	}
	return string(v)
}
