package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override the params file.
const EnvPrefix = "COORDCHECK_"

// envKeys maps snake_case environment suffixes to params file keys,
// e.g. COORDCHECK_PROJECT_ID -> projectId.
var envKeys = map[string]string{ //nolint:gochecknoglobals // static lookup table
	"file_name":         "fileName",
	"tolerance":         "tolerance",
	"token":             "token",
	"project_id":        "projectId",
	"issue_sub_type_id": "issueSubTypeId",
	"user_id":           "userId",
	"version_urn":       "versionUrn",
	"hub_id":            "hubId",
	"log_level":         "logLevel",
	"tracker_base_url":  "trackerBaseUrl",
	"tracker_timeout":   "trackerTimeout",
}

// Load builds a Config by layering defaults, the params file at path, and
// env vars. Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. params file (JSON, or YAML for .yaml/.yml)
//  3. env (prefix COORDCHECK_)
func Load(ctx context.Context, path string) (*Config, error) {
	base := New(ctx)

	fi, err := os.Stat(path)
	if err != nil {
		return nil, unavailable(path, err)
	}
	if fi.IsDir() {
		return nil, unavailable(path, errIsDirectory)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, malformed("parse %s: %v", path, err)
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return envKeys[s]
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, malformed("environment: %v", err)
	}

	for _, key := range requiredKeys {
		if !k.Exists(key) {
			return nil, malformed("missing required key %q", key)
		}
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, malformed("decode: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value constraints that decoding cannot express.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.FileName) == "":
		return malformed("fileName must not be empty")
	case c.Tolerance < 0:
		return malformed("tolerance must be >= 0, got %v", c.Tolerance)
	case c.TrackerTimeout <= 0:
		return malformed("trackerTimeout must be positive, got %s", c.TrackerTimeout)
	case c.TrackerBaseURL == "":
		return malformed("trackerBaseUrl must not be empty")
	}
	return nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return json.Parser()
	}
}
