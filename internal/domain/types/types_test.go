package types_test

import (
	"errors"
	"fmt"
	"testing"

	types "github.com/okian/coordcheck/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIsFatal(t *testing.T) {
	Convey("Given the error taxonomy", t, func() {
		Convey("When a loader error is wrapped", func() {
			Convey("Then resource errors should be fatal", func() {
				err := fmt.Errorf("open coordinates.csv: %w", types.ErrResourceUnavailable)
				So(types.IsFatal(err), ShouldBeTrue)
			})

			Convey("And parse errors should be fatal", func() {
				So(types.IsFatal(fmt.Errorf("line 3: %w", types.ErrMalformedRecord)), ShouldBeTrue)
				So(types.IsFatal(fmt.Errorf("tolerance: %w", types.ErrMalformedConfig)), ShouldBeTrue)
			})
		})

		Convey("When reporting fails", func() {
			err := fmt.Errorf("status 500: %w", types.ErrReportingFailure)

			Convey("Then it should not be fatal", func() {
				So(types.IsFatal(err), ShouldBeFalse)
				So(errors.Is(err, types.ErrReportingFailure), ShouldBeTrue)
			})
		})

		Convey("When the error is unclassified", func() {
			Convey("Then it should not be fatal", func() {
				So(types.IsFatal(errors.New("boom")), ShouldBeFalse)
				So(types.IsFatal(nil), ShouldBeFalse)
			})
		})
	})
}

func TestStage(t *testing.T) {
	Convey("Given a stage", t, func() {
		Convey("Then it should render as its name", func() {
			So(types.StageReportIssue.String(), ShouldEqual, "report_issue")
			So(fmt.Sprint(types.StageWriteResult), ShouldEqual, "write_result")
		})

		Convey("Then only the input stages should be loaders", func() {
			So(types.StageLoadConfig.Loader(), ShouldBeTrue)
			So(types.StageLoadReferences.Loader(), ShouldBeTrue)
			So(types.StageMatch.Loader(), ShouldBeFalse)
			So(types.StageReportIssue.Loader(), ShouldBeFalse)
			So(types.StageWriteResult.Loader(), ShouldBeFalse)
		})
	})
}
