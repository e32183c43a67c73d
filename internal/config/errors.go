package config

import (
	"errors"
	"fmt"

	"github.com/okian/coordcheck/internal/domain/types"
)

// requiredKeys must be present in the params file or the environment.
var requiredKeys = []string{ //nolint:gochecknoglobals // fixed list of keys
	"fileName",
	"tolerance",
	"projectId",
	"token",
	"issueSubTypeId",
	"userId",
}

var errIsDirectory = errors.New("is a directory")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrMalformedConfig, fmt.Sprintf(format, args...))
}

func unavailable(path string, err error) error {
	return fmt.Errorf("%w: config %s: %v", types.ErrResourceUnavailable, path, err)
}
