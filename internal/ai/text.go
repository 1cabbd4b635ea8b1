package ai

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxChars caps how much raw text is read from one document.
	DefaultMaxChars = 100000
	// DefaultInputChars caps what is sent to the extraction service.
	DefaultInputChars = 12000
)

var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".log": true,
	".csv": true,
}

// ExtractText returns the document's readable text, or "" for binary
// formats the pipeline cannot read locally.
func ExtractText(filename string, data []byte, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if !textExtensions[strings.ToLower(filepath.Ext(filename))] {
		return ""
	}
	if !utf8.Valid(data) {
		return ""
	}
	text := string(data)
	if len(text) > maxChars {
		text = text[:cutAtRune(text, maxChars)]
	}
	return text
}

// cutAtRune backs i up to a rune boundary so slicing never splits a
// multi-byte character.
func cutAtRune(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// PrepareInput trims the text to the service's input budget keeping the
// head and the tail, where contract documents carry their key terms.
func PrepareInput(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultInputChars
	}
	if len(text) <= maxChars {
		return text
	}
	head := cutAtRune(text, maxChars*7/10)
	tailStart := len(text) - (maxChars - head)
	for tailStart < len(text) && !utf8.RuneStart(text[tailStart]) {
		tailStart++
	}
	return text[:head] + "\n\n[TRUNCATED]\n\n" + text[tailStart:]
}
