// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the transport
	// defaults in place; the Scopus stage relies on upstream 429
	// signalling rather than client-side timeouts.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "sesg/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ScopusConfig holds settings for the Scopus search stage.
type ScopusConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKeys are the Scopus API keys rotated during a search. At least
	// one is required.
	APIKeys []string `json:"api_keys,omitempty" yaml:"api_keys,omitempty"`

	// MaxConcurrency caps simultaneous in-flight page requests during
	// pagination fan-out. Zero means one goroutine per remaining page.
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency"`

	// RetryAttempts bounds consecutive retries of transient server
	// errors and of malformed payloads, tracked independently (default 5).
	RetryAttempts int `json:"retry_attempts" yaml:"retry_attempts"`
}

// StoreConfig holds settings for the persistence stage.
type StoreConfig struct {
	// Path is the SQLite database file (default "sesg.db").
	Path string `json:"path" yaml:"path"`
}

// StringConfig holds settings for search-string generation.
type StringConfig struct {
	// WordsPerTopic is the number of words kept per topic (default 5).
	WordsPerTopic int `json:"words_per_topic" yaml:"words_per_topic"`

	// SimilarWordsPerWord is the number of similar words enriched per
	// kept word when a similar-words generator is configured.
	SimilarWordsPerWord int `json:"similar_words_per_word" yaml:"similar_words_per_word"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Scopus ScopusConfig `json:"scopus" yaml:"scopus"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	String StringConfig `json:"string" yaml:"string"`
}
