// Package file provides a TOML-backed configuration store.
package file

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore persists configuration as TOML under the docuflow config
// directory. Nested tables are flattened to dot-notation keys
// ("ocr.engine", "pipeline.chunk_size").
type ConfigStore struct {
	mu       sync.RWMutex
	dir      string
	filePath string
	data     map[string]any
}

// NewConfigStore creates a TOML config store. An empty configDir
// defaults to ~/.docuflow.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".docuflow")
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		dir:      configDir,
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]any),
	}
	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}

	// TOML integers decode as int64.
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// GetFloat retrieves a float configuration value. TOML integers are
// accepted where a float is expected.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, ok := s.Get(key)
	if !ok {
		return false
	}
	b, ok := val.(bool)
	if !ok {
		return false
	}
	return b
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(unflattenMap(s.data))
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0o600)
}

// Load reads configuration from the TOML file. A missing file starts
// an empty store.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}
	s.data = flattenMap(loaded, "")
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Settings materialises the typed settings aggregate. Missing keys fall
// back to defaults; the data directory defaults to the config directory.
func (s *ConfigStore) Settings() domain.Settings {
	def := domain.DefaultSettings()

	out := domain.Settings{
		DataDir: stringOr(s.GetString("data_dir"), s.dir),
		OCR: domain.OCRSettings{
			Engine:    stringOr(s.GetString("ocr.engine"), def.OCR.Engine),
			Binary:    s.GetString("ocr.binary"),
			Language:  stringOr(s.GetString("ocr.language"), def.OCR.Language),
			BaseURL:   s.GetString("ocr.base_url"),
			APIKey:    s.GetString("ocr.api_key"),
			RateLimit: s.GetInt("ocr.rate_limit"),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   stringOr(s.GetString("embedding.provider"), def.Embedding.Provider),
			BaseURL:    s.GetString("embedding.base_url"),
			APIKey:     s.GetString("embedding.api_key"),
			Model:      s.GetString("embedding.model"),
			Dimensions: s.GetInt("embedding.dimensions"),
		},
		LLM: domain.LLMSettings{
			Provider: s.GetString("llm.provider"),
			BaseURL:  s.GetString("llm.base_url"),
			APIKey:   s.GetString("llm.api_key"),
			Model:    s.GetString("llm.model"),
		},
		Pipeline: domain.PipelineSettings{
			ChunkSize:      intOr(s.GetInt("pipeline.chunk_size"), def.Pipeline.ChunkSize),
			ChunkOverlap:   intOr(s.GetInt("pipeline.chunk_overlap"), def.Pipeline.ChunkOverlap),
			LowercaseProse: s.GetBool("pipeline.lowercase_prose"),
			SpellCorrect:   boolOr(s, "pipeline.spell_correct", def.Pipeline.SpellCorrect),
			Workers:        intOr(s.GetInt("pipeline.workers"), def.Pipeline.Workers),
		},
		Query: domain.QuerySettings{
			TopK:          intOr(s.GetInt("query.top_k"), def.Query.TopK),
			MinSimilarity: floatOr(s.GetFloat("query.min_similarity"), def.Query.MinSimilarity),
			ContextWords:  intOr(s.GetInt("query.context_words"), def.Query.ContextWords),
		},
		Thresholds: domain.Thresholds{
			Review:   floatOr(s.GetFloat("validation.review_threshold"), def.Thresholds.Review),
			Accept:   floatOr(s.GetFloat("validation.accept_threshold"), def.Thresholds.Accept),
			MinWords: intOr(s.GetInt("validation.min_words"), def.Thresholds.MinWords),
		},
	}

	// 0 is meaningful here: it disables the round-number check.
	if _, set := s.Get("validation.round_number_modulus"); set {
		out.Thresholds.RoundNumberModulus = s.GetInt("validation.round_number_modulus")
	} else {
		out.Thresholds.RoundNumberModulus = def.Thresholds.RoundNumberModulus
	}
	return out
}

func stringOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func intOr(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func floatOr(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}

func boolOr(s *ConfigStore, key string, fallback bool) bool {
	if _, ok := s.Get(key); ok {
		return s.GetBool(key)
	}
	return fallback
}

// flattenMap converts nested maps to dot-notation keys.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)
	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}
	return result
}

// unflattenMap rebuilds nested tables from dot-notation keys so the
// written TOML stays sectioned.
func unflattenMap(flat map[string]any) map[string]any {
	result := make(map[string]any)
	for key, value := range flat {
		parts := splitKey(key)
		node := result
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return result
}

func splitKey(key string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			parts = append(parts, key[start:i])
			start = i + 1
		}
	}
	return append(parts, key[start:])
}
