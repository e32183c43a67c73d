// Package config defines the parameters of a validation run and how they are
// loaded.
//
// Conventions:
// - Keys follow the camelCase names of the params file written by the caller.
// - All functions accept context.Context as the first parameter.
// - Load failures are classified with the shared error taxonomy.
package config

import (
	"context"
	"time"
)

// Defaults for ambient settings that the params file may omit.
const (
	DefaultTrackerBaseURL = "https://developer.api.autodesk.com"
	DefaultTrackerTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
)

// Config contains the parameters of a single run.
type Config struct {
	// FileName is the display name of the model file under evaluation.
	FileName string `koanf:"fileName"`

	// Tolerance is the largest allowed distance between an extracted point and
	// its reference before a discrepancy is flagged. Same units as coordinates.
	Tolerance float64 `koanf:"tolerance"`

	// Token is the bearer credential for the issue tracker. Never log it.
	Token string `koanf:"token"`

	// Issue tracker routing, forwarded verbatim.
	ProjectID      string `koanf:"projectId"`
	IssueSubTypeID string `koanf:"issueSubTypeId"`
	UserID         string `koanf:"userId"`
	VersionURN     string `koanf:"versionUrn"`
	HubID          string `koanf:"hubId"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"logLevel"`

	// TrackerBaseURL is the scheme and host of the issue tracker API.
	TrackerBaseURL string `koanf:"trackerBaseUrl"`

	// TrackerTimeout bounds the issue creation call, e.g. "30s".
	TrackerTimeout time.Duration `koanf:"trackerTimeout"`
}

// New creates a Config holding defaults only. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       DefaultLogLevel,
		TrackerBaseURL: DefaultTrackerBaseURL,
		TrackerTimeout: DefaultTrackerTimeout,
	}
}
