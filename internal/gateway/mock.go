package gateway

import (
	"context"
	"strings"
)

// MockPrefix marks text produced by the mock backend.
const MockPrefix = "[MT] "

// MockBackend is the deterministic stub used by --mock: it echoes every
// request line back as a protocol response with the markup prefixed by
// MockPrefix. It lets the whole pipeline run end to end without a live
// backend.
type MockBackend struct{}

func (MockBackend) Translate(_ context.Context, _, user string) (string, error) {
	var b strings.Builder
	for _, line := range strings.Split(user, "\n") {
		id, rest, ok := strings.Cut(line, Delimiter)
		if !ok {
			continue
		}
		// Drop the limit field, keep the markup.
		_, text, ok := strings.Cut(rest, Delimiter)
		if !ok {
			text = rest
		}
		b.WriteString(strings.TrimSpace(id))
		b.WriteString(" " + Delimiter + " ")
		b.WriteString(MockPrefix + strings.TrimSpace(text))
		b.WriteByte('\n')
	}
	return b.String(), nil
}
