package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/believeitmyway/SlideTrans/internal/config"
)

type scriptedBackend struct {
	response string
	err      error
	system   string
	user     string
}

func (s *scriptedBackend) Translate(_ context.Context, system, user string) (string, error) {
	s.system, s.user = system, user
	return s.response, s.err
}

func testConfig() *config.Config {
	return &config.Config{SourceLanguage: "Japanese", TargetLanguage: "English"}
}

func TestMarshalBatch(t *testing.T) {
	got := MarshalBatch([]BatchItem{
		{ID: 0, Text: "<b>こんにちは</b>", Limit: 17},
		{ID: 1, Text: "世界", Limit: 4},
	})
	want := "0 ::: 17 ::: <b>こんにちは</b>\n1 ::: 4 ::: 世界"
	if got != want {
		t.Errorf("MarshalBatch = %q, want %q", got, want)
	}
}

func TestParseResponse_ReorderedLines(t *testing.T) {
	results := ParseResponse("1 ::: T2\n0 ::: T1")
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	byID := map[int]string{}
	for _, r := range results {
		byID[r.ID] = r.Translation
	}
	if byID[0] != "T1" || byID[1] != "T2" {
		t.Errorf("reconciliation by id failed: %v", byID)
	}
}

func TestParseResponse_MalformedLines(t *testing.T) {
	raw := strings.Join([]string{
		"Sure, here are the translations:",
		"not-a-number ::: oops",
		"",
		"0 ::: good",
		"::: headless",
	}, "\n")

	results := ParseResponse(raw)
	if len(results) != 1 || results[0].ID != 0 || results[0].Translation != "good" {
		t.Errorf("got %+v", results)
	}
}

func TestParseResponse_Empty(t *testing.T) {
	if got := ParseResponse("no delimiters here at all"); len(got) != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestSystemPrompt_Substitution(t *testing.T) {
	g := New(&scriptedBackend{}, testConfig(), config.Glossary{"売上": "revenue"})

	prompt := g.SystemPrompt("from {source_language} to {target_language}, max {max_chars}",
		[]BatchItem{{ID: 0, Limit: 12}, {ID: 1, Limit: 40}})

	if !strings.Contains(prompt, "from Japanese to English") {
		t.Errorf("languages not substituted: %q", prompt)
	}
	if !strings.Contains(prompt, "max 40") {
		t.Errorf("max_chars not substituted with the batch maximum: %q", prompt)
	}
	if !strings.Contains(prompt, "売上: revenue") {
		t.Errorf("glossary block missing: %q", prompt)
	}
}

func TestTranslateBatch_BackendErrorDropsBatch(t *testing.T) {
	backend := &scriptedBackend{err: errors.New("timeout")}
	g := New(backend, testConfig(), nil)

	results, err := g.TranslateBatch(context.Background(), "tpl", []BatchItem{{ID: 0, Text: "x", Limit: 5}})
	if err == nil {
		t.Error("expected error from backend failure")
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %+v", results)
	}
}

func TestTranslateBatch_EmptyBatch(t *testing.T) {
	backend := &scriptedBackend{}
	g := New(backend, testConfig(), nil)

	results, err := g.TranslateBatch(context.Background(), "tpl", nil)
	if err != nil || results != nil {
		t.Errorf("empty batch: results=%v err=%v", results, err)
	}
	if backend.user != "" {
		t.Error("empty batch must not reach the backend")
	}
}

func TestMockBackend_RoundTrip(t *testing.T) {
	items := []BatchItem{
		{ID: 0, Text: "<b>hello</b>", Limit: 10},
		{ID: 1, Text: "world", Limit: 5},
	}
	raw, err := MockBackend{}.Translate(context.Background(), "sys", MarshalBatch(items))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results := ParseResponse(raw)
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Translation != MockPrefix+"<b>hello</b>" {
		t.Errorf("item 0 = %q", results[0].Translation)
	}
	if results[1].Translation != MockPrefix+"world" {
		t.Errorf("item 1 = %q", results[1].Translation)
	}
}
