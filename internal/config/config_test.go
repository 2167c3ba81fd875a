package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "backend:\n  endpoint: http://localhost:8080\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SourceLanguage != "Japanese" || cfg.TargetLanguage != "English" {
		t.Errorf("language defaults = %q -> %q", cfg.SourceLanguage, cfg.TargetLanguage)
	}
	if cfg.ExpansionRatio != 1.0 {
		t.Errorf("expansion ratio = %v", cfg.ExpansionRatio)
	}
	if cfg.BatchSize != 8 || cfg.MaxParallelRequests != 5 {
		t.Errorf("batch = %d, parallel = %d", cfg.BatchSize, cfg.MaxParallelRequests)
	}
	if cfg.BodyPrompt == "" || cfg.ConstrainedPrompt == "" {
		t.Error("expected default prompt templates")
	}
}

func TestLoad_Override(t *testing.T) {
	path := writeFile(t, "config.yaml", `
translation:
  source_language: English
  target_language: Japanese
  expansion_ratio: 1.7
  batch_size: 3
backend:
  endpoint: http://example.invalid/v1
  model: gpt-x
  timeout: 30s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SourceLanguage != "English" || cfg.ExpansionRatio != 1.7 || cfg.BatchSize != 3 {
		t.Errorf("got %+v", cfg)
	}
	if cfg.Backend.Model != "gpt-x" || cfg.Backend.Timeout.Seconds() != 30 {
		t.Errorf("backend = %+v", cfg.Backend)
	}
}

func TestLoad_MissingFileIsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadGlossary_JSON(t *testing.T) {
	path := writeFile(t, "glossary.json", `{"売上": "revenue", "粗利": "gross profit"}`)

	g, err := LoadGlossary(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g["売上"] != "revenue" || g["粗利"] != "gross profit" {
		t.Errorf("got %v", g)
	}
}

func TestLoadGlossary_PlainLines(t *testing.T) {
	path := writeFile(t, "glossary.txt", "# terms\n売上: revenue\n\n経常利益: ordinary income\n")

	g, err := LoadGlossary(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g) != 2 || g["経常利益"] != "ordinary income" {
		t.Errorf("got %v", g)
	}
}

func TestLoadGlossary_MissingFile(t *testing.T) {
	g, err := LoadGlossary(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Error("expected error for missing glossary")
	}
	if len(g) != 0 {
		t.Errorf("expected empty glossary, got %v", g)
	}
}

func TestGlossary_PromptBlock(t *testing.T) {
	g := Glossary{"b": "2", "a": "1"}
	block := g.PromptBlock()
	if !strings.Contains(block, "a: 1\n") || !strings.Contains(block, "b: 2\n") {
		t.Errorf("block = %q", block)
	}
	if strings.Index(block, "a: 1") > strings.Index(block, "b: 2") {
		t.Error("expected stable sorted order")
	}
	if (Glossary{}).PromptBlock() != "" {
		t.Error("empty glossary must render empty")
	}
}
