package host_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/coordcheck/internal/adapters/host"
	"github.com/okian/coordcheck/internal/domain/model"
	"github.com/okian/coordcheck/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extracted.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadExtracted(t *testing.T) {
	Convey("Given an extracted coordinates file", t, func() {
		path := writeFile(t, `{
  "basePoint": {"x": 0.5, "y": 0, "z": 0},
  "surveyPoint": {"x": 10, "y": -2, "z": 3.25},
  "trueNorthAngle": 0.7853981634
}`)

		Convey("When loading it", func() {
			got, err := host.LoadExtracted(context.Background(), path)

			Convey("Then every coordinate should be mapped", func() {
				So(err, ShouldBeNil)
				So(got.BasePoint, ShouldResemble, model.Point{X: 0.5})
				So(got.SurveyPoint, ShouldResemble, model.Point{X: 10, Y: -2, Z: 3.25})
				So(got.TrueNorthAngle, ShouldEqual, 0.7853981634)
			})
		})
	})

	Convey("Given a file missing the survey point", t, func() {
		path := writeFile(t, `{"basePoint": {"x": 0, "y": 0, "z": 0}, "trueNorthAngle": 0}`)

		Convey("When loading it", func() {
			_, err := host.LoadExtracted(context.Background(), path)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, types.ErrMalformedConfig), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "surveyPoint")
			})
		})
	})

	Convey("Given no file", t, func() {
		Convey("When loading it", func() {
			_, err := host.LoadExtracted(context.Background(), filepath.Join(t.TempDir(), "none.json"))

			Convey("Then it should fail as an unavailable resource", func() {
				So(errors.Is(err, types.ErrResourceUnavailable), ShouldBeTrue)
			})
		})
	})

	Convey("Given a directory in place of the file", t, func() {
		Convey("When loading it", func() {
			_, err := host.LoadExtracted(context.Background(), t.TempDir())

			Convey("Then it should fail as an unavailable resource", func() {
				So(errors.Is(err, types.ErrResourceUnavailable), ShouldBeTrue)
				So(errors.Is(err, types.ErrMalformedConfig), ShouldBeFalse)
			})
		})
	})
}
