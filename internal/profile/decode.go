package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// ErrUnsupportedFormat is returned for resume files that are neither structured
// profiles nor plain text.
var ErrUnsupportedFormat = errors.New("unsupported resume format")

// Decode converts a generic map, as produced by JSON or YAML decoding, into a
// Profile. Skills may be a list or a comma-separated string.
func Decode(raw map[string]any) (*Profile, error) {
	var p Profile

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	return &p, nil
}

// Load reads a resume file. Structured files (.json, .yaml, .yml, .toml) are
// decoded as profiles; .txt and .md files are parsed as text resumes against skills.
func Load(path string, skills []string) (*Profile, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".yaml", ".yml", ".toml":
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading profile %s: %w", path, err)
		}
		return Decode(v.AllSettings())
	case ".txt", ".md", ".text":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ParseText(string(data), skills), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
