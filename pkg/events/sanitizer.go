package events

import (
	"strings"
	"unicode"
)

// ZeroWidthSpace is the placeholder some generation layers substitute for an
// empty text delta so that construction-time validation passes. It counts as
// empty here.
const ZeroWidthSpace = '​'

// Keep classifies a single event for forwarding. Control events always pass.
// Content events pass only when their text is non-empty after trimming
// whitespace and zero-width placeholders. Events of an unrecognized kind are
// treated as content with unknown text and passed through unmodified, so a
// payload the sanitizer does not understand can never crash the stream.
func Keep(e Event) bool {
	if e.Kind != KindContent {
		return true
	}
	trimmed := strings.TrimFunc(e.Text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ZeroWidthSpace
	})
	return trimmed != ""
}

// Sanitize drains in and forwards only the events Keep accepts. It buffers
// nothing beyond the single event in flight and preserves order. The returned
// channel closes when in closes.
func Sanitize(in <-chan Event) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for e := range in {
			if Keep(e) {
				out <- e
			}
		}
	}()
	return out
}
