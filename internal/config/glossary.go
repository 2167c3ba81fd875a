package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Glossary maps source terms to their fixed target translations.
type Glossary map[string]string

// LoadGlossary reads the glossary file at path. Two formats are accepted:
// a JSON object of term -> translation, or plain "term: translation" lines
// (blank lines and #-comments ignored). Terms and translations are
// NFC-normalized so lookups don't depend on the file's Unicode composition.
//
// Any failure returns an empty glossary together with the error; glossary
// problems are never fatal to the pipeline.
func LoadGlossary(path string) (Glossary, error) {
	if path == "" {
		return Glossary{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Glossary{}, fmt.Errorf("failed to read glossary %s: %w", path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err == nil {
		return normalize(raw), nil
	}

	raw = map[string]string{}
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		term, translation, ok := strings.Cut(line, ":")
		if !ok {
			return Glossary{}, fmt.Errorf("glossary %s: malformed line %q", path, line)
		}
		raw[strings.TrimSpace(term)] = strings.TrimSpace(translation)
	}
	if err := sc.Err(); err != nil {
		return Glossary{}, fmt.Errorf("failed to scan glossary %s: %w", path, err)
	}

	return normalize(raw), nil
}

func normalize(raw map[string]string) Glossary {
	g := make(Glossary, len(raw))
	for term, translation := range raw {
		term = norm.NFC.String(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		g[term] = norm.NFC.String(strings.TrimSpace(translation))
	}
	return g
}

// PromptBlock renders the glossary as "term: translation" lines in a stable
// order, ready to append to a system prompt. Empty glossaries render as "".
func (g Glossary) PromptBlock() string {
	if len(g) == 0 {
		return ""
	}
	terms := make([]string, 0, len(g))
	for term := range g {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	var b strings.Builder
	b.WriteString("Use these fixed translations for the following terms:\n")
	for _, term := range terms {
		b.WriteString(term)
		b.WriteString(": ")
		b.WriteString(g[term])
		b.WriteString("\n")
	}
	return b.String()
}
