package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// DefaultSource names the embedded configuration in snapshots
const DefaultSource = "embedded:default.yaml"

// Load reads a YAML file and returns the validated Config with raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read strategy config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}

	return cfg, data, nil
}

// LoadDefault returns the embedded default configuration
func LoadDefault() (*Config, error) {
	return Parse(defaultYAML)
}

// LoadOrDefault loads path when set, otherwise the embedded defaults
func LoadOrDefault(path string) (*Config, *Snapshot, error) {
	var (
		cfg    *Config
		err    error
		source = DefaultSource
	)

	if path == "" {
		cfg, err = LoadDefault()
	} else {
		cfg, _, err = Load(path)
		source = path
	}
	if err != nil {
		return nil, nil, err
	}

	snap, err := NewSnapshot(cfg, source)
	if err != nil {
		return nil, nil, err
	}

	return cfg, snap, nil
}

// DefaultYAML returns a copy of the embedded configuration text
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

// Parse decodes and validates YAML bytes
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode strategy config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Hash generates SHA256 hash from Config (canonical JSON)
// encoding/json은 map 키를 정렬하므로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// NewSnapshot creates a run identifier for the configuration
func NewSnapshot(cfg *Config, source string) (*Snapshot, error) {
	hash, err := Hash(cfg)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ConfigHash: hash,
		StrategyID: cfg.Meta.StrategyID,
		Version:    cfg.Meta.Version,
		Source:     source,
		LoadedAt:   time.Now(),
	}, nil
}
