// Package gateway speaks the line-oriented wire protocol to the translation
// backend. A batch goes out as one line per item ("id ::: limit ::: text")
// under a per-batch system prompt; the response is reparsed line by line,
// tolerating missing, reordered, extra and malformed lines. Reconciliation
// of missing ids is the orchestrator's job; the gateway only promises to
// return whatever it could parse, and never to raise on mangled output.
package gateway

import (
	"context"
	"strconv"
	"strings"

	"github.com/believeitmyway/SlideTrans/internal/config"
)

// Delimiter separates the fields of a protocol line.
const Delimiter = ":::"

// BatchItem is one outbound paragraph: a batch-local 0-based id, the encoded
// markup, and its translated-length budget in characters.
type BatchItem struct {
	ID    int
	Text  string
	Limit int
}

// BatchResult is one parsed response line.
type BatchResult struct {
	ID          int
	Translation string
}

// Backend is a chat-style translation call: one system instruction, one user
// payload, one response string. Implementations must honor ctx cancellation
// and surface failures as errors for the caller to drop the batch.
type Backend interface {
	Translate(ctx context.Context, system, user string) (string, error)
}

// Gateway binds a backend to the prompt configuration of one run.
type Gateway struct {
	backend  Backend
	cfg      *config.Config
	glossary config.Glossary
}

func New(backend Backend, cfg *config.Config, glossary config.Glossary) *Gateway {
	return &Gateway{backend: backend, cfg: cfg, glossary: glossary}
}

// TranslateBatch sends one batch under the given prompt template and returns
// the parsed results. A backend failure returns an error and no results (the
// whole batch degrades to untranslated); malformed backend output never does.
func (g *Gateway) TranslateBatch(ctx context.Context, template string, items []BatchItem) ([]BatchResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	system := g.SystemPrompt(template, items)
	user := MarshalBatch(items)

	raw, err := g.backend.Translate(ctx, system, user)
	if err != nil {
		return nil, err
	}
	return ParseResponse(raw), nil
}

// SystemPrompt substitutes the template placeholders once per batch: the
// language pair, and {max_chars} as the largest limit in the batch. The
// glossary block, when non-empty, is appended as plain lines.
func (g *Gateway) SystemPrompt(template string, items []BatchItem) string {
	maxChars := 0
	for _, it := range items {
		if it.Limit > maxChars {
			maxChars = it.Limit
		}
	}

	s := template
	s = strings.ReplaceAll(s, "{source_language}", g.cfg.SourceLanguage)
	s = strings.ReplaceAll(s, "{target_language}", g.cfg.TargetLanguage)
	s = strings.ReplaceAll(s, "{max_chars}", strconv.Itoa(maxChars))

	if block := g.glossary.PromptBlock(); block != "" {
		s = s + "\n\n" + block
	}
	return s
}

// MarshalBatch serializes items to the request payload, one line per item.
func MarshalBatch(items []BatchItem) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(it.ID))
		b.WriteString(" " + Delimiter + " ")
		b.WriteString(strconv.Itoa(it.Limit))
		b.WriteString(" " + Delimiter + " ")
		b.WriteString(it.Text)
	}
	return b.String()
}

// ParseResponse parses backend output line by line. A line splits on the
// first delimiter into an id and a translation; lines without the delimiter
// or without an integer id are skipped. Duplicate ids keep the last value.
func ParseResponse(raw string) []BatchResult {
	var results []BatchResult
	for _, line := range strings.Split(raw, "\n") {
		head, tail, ok := strings.Cut(line, Delimiter)
		if !ok {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(head))
		if err != nil {
			continue
		}
		results = append(results, BatchResult{ID: id, Translation: strings.TrimSpace(tail)})
	}
	return results
}
