package utils

import (
	"log"
	"regexp"
	"strings"
)

// ContainsString checks if a slice of strings contains a specific string.
func ContainsString(slice []string, str string) bool {
	for _, item := range slice {
		if item == str {
			return true
		}
	}
	return false
}

// GoSafe runs the given function in a new goroutine and recovers from any panic.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Panic Recovered] %v", r)
			}
		}()
		fn()
	}()
}

func ToPointer[T any](value T) *T {
	return &value
}

var htmlTagPattern = regexp.MustCompile(`<[^<]+?>`)

// StripHTML removes tags and decodes the common entities, producing the
// plain-text alternative of an HTML email body.
func StripHTML(html string) string {
	text := htmlTagPattern.ReplaceAllString(html, "")
	replacer := strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&", "&nbsp;", " ")
	return replacer.Replace(text)
}
