// Package host is the boundary with the application that opens the model and
// extracts its coordinates. The host writes a small JSON document and this
// package turns it into model.ExtractedCoordinates; nothing here reads the
// model itself.
package host

import (
	"context"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/coordcheck/internal/domain/model"
	"github.com/okian/coordcheck/internal/domain/types"
)

// point mirrors the host's {"x":..,"y":..,"z":..} encoding.
type point struct {
	X float64 `koanf:"x"`
	Y float64 `koanf:"y"`
	Z float64 `koanf:"z"`
}

// document is the extracted coordinates file written by the host.
type document struct {
	BasePoint      point   `koanf:"basePoint"`
	SurveyPoint    point   `koanf:"surveyPoint"`
	TrueNorthAngle float64 `koanf:"trueNorthAngle"`
}

var requiredKeys = []string{"basePoint", "surveyPoint", "trueNorthAngle"} //nolint:gochecknoglobals // fixed list of keys

// LoadExtracted reads the coordinates the host extracted from the model.
func LoadExtracted(_ context.Context, path string) (model.ExtractedCoordinates, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return model.ExtractedCoordinates{}, fmt.Errorf("%w: extracted coordinates %s: %v", types.ErrResourceUnavailable, path, err)
	}
	if fi.IsDir() {
		return model.ExtractedCoordinates{}, fmt.Errorf("%w: extracted coordinates %s: is a directory", types.ErrResourceUnavailable, path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return model.ExtractedCoordinates{}, fmt.Errorf("%w: extracted coordinates: %v", types.ErrMalformedConfig, err)
	}
	for _, key := range requiredKeys {
		if !k.Exists(key) {
			return model.ExtractedCoordinates{}, fmt.Errorf("%w: extracted coordinates: missing %q", types.ErrMalformedConfig, key)
		}
	}

	var doc document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return model.ExtractedCoordinates{}, fmt.Errorf("%w: extracted coordinates: %v", types.ErrMalformedConfig, err)
	}

	return model.ExtractedCoordinates{
		BasePoint:      model.Point(doc.BasePoint),
		SurveyPoint:    model.Point(doc.SurveyPoint),
		TrueNorthAngle: doc.TrueNorthAngle,
	}, nil
}
