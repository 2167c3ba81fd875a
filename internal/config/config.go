// Package config loads the YAML configuration and the optional glossary
// file. A missing config file is fatal; a missing or malformed glossary is
// not (the pipeline continues with an empty glossary).
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the already-validated settings the pipeline consumes.
type Config struct {
	SourceLanguage string
	TargetLanguage string
	// ExpansionRatio is the expected character growth translating Japanese
	// into English; the reverse direction uses its inverse.
	ExpansionRatio      float64
	BatchSize           int
	MaxParallelRequests int
	GlossaryPath        string

	// BodyPrompt is the system prompt template for free-floating text;
	// ConstrainedPrompt the stricter one for table/group text. Both may
	// contain {max_chars} and {target_language} placeholders.
	BodyPrompt        string
	ConstrainedPrompt string

	Backend BackendConfig
}

// BackendConfig configures the chat-completions backend.
type BackendConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

const defaultBodyPrompt = `You are a professional presentation translator. Translate each line from {source_language} to {target_language}.
Lines are formatted as "id ::: limit ::: text". Reply with one line per input line, formatted as "id ::: translation".
Keep every markup tag (<b>, <i>, <u>, <s>, <sz>, <c>, <sp/>, <br/>) exactly where it belongs around the translated words.
Keep each translation within its character limit of {max_chars} characters where possible.`

const defaultConstrainedPrompt = `You are a professional presentation translator. Translate each line from {source_language} to {target_language}.
Lines are formatted as "id ::: limit ::: text". Reply with one line per input line, formatted as "id ::: translation".
Keep every markup tag exactly where it belongs around the translated words.
The text sits in fixed table cells: the translation MUST NOT exceed {max_chars} characters. Prefer shorter wording and abbreviations over length.`

// Load reads the config file at path. Absence of the file is a fatal error
// surfaced to the caller before any document I/O happens.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("translation.source_language", "Japanese")
	v.SetDefault("translation.target_language", "English")
	v.SetDefault("translation.expansion_ratio", 1.0)
	v.SetDefault("translation.batch_size", 8)
	v.SetDefault("translation.max_parallel_requests", 5)
	v.SetDefault("translation.glossary_path", "glossary.json")
	v.SetDefault("translation.presentation_body_prompt", defaultBodyPrompt)
	v.SetDefault("translation.constrained_text_prompt", defaultConstrainedPrompt)
	v.SetDefault("backend.timeout", "120s")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{
		SourceLanguage:      v.GetString("translation.source_language"),
		TargetLanguage:      v.GetString("translation.target_language"),
		ExpansionRatio:      v.GetFloat64("translation.expansion_ratio"),
		BatchSize:           v.GetInt("translation.batch_size"),
		MaxParallelRequests: v.GetInt("translation.max_parallel_requests"),
		GlossaryPath:        v.GetString("translation.glossary_path"),
		BodyPrompt:          v.GetString("translation.presentation_body_prompt"),
		ConstrainedPrompt:   v.GetString("translation.constrained_text_prompt"),
		Backend: BackendConfig{
			Endpoint: v.GetString("backend.endpoint"),
			APIKey:   v.GetString("backend.api_key"),
			Model:    v.GetString("backend.model"),
			Timeout:  v.GetDuration("backend.timeout"),
		},
	}

	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.MaxParallelRequests < 1 {
		cfg.MaxParallelRequests = 1
	}
	if cfg.ExpansionRatio <= 0 {
		cfg.ExpansionRatio = 1.0
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 120 * time.Second
	}

	return cfg, nil
}
