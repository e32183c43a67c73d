package issues_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/coordcheck/internal/adapters/issues"
	"github.com/okian/coordcheck/internal/domain/model"
	"github.com/okian/coordcheck/internal/domain/types"
	"github.com/okian/coordcheck/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

type captured struct {
	mu      sync.Mutex
	method  string
	path    string
	auth    string
	ctype   string
	reqID   string
	payload map[string]any
}

func newTracker(status int, body string, got *captured) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.mu.Lock()
		defer got.mu.Unlock()
		got.method = r.Method
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		got.ctype = r.Header.Get("Content-Type")
		got.reqID = r.Header.Get("X-Request-Id")
		_ = json.NewDecoder(r.Body).Decode(&got.payload)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
}

func sampleIssue() issues.Issue {
	return issues.Issue{
		FileName:       "SITEA_model.rvt",
		VersionURN:     "urn:v1",
		ProjectID:      "b.project-1",
		IssueSubTypeID: "subtype-1",
		AssigneeID:     "user-1",
		Token:          "secret-token",
		RequestID:      "run-42",
		Extracted: model.ExtractedCoordinates{
			BasePoint:   model.Point{X: 5},
			SurveyPoint: model.Point{X: 10},
		},
		Correct: model.ReferenceRecord{
			Code:        "SITEA",
			SurveyPoint: model.Point{X: 10},
		},
	}
}

func TestIssueText(t *testing.T) {
	Convey("Given a discrepancy issue", t, func() {
		issue := sampleIssue()

		Convey("Then the title should name the file", func() {
			So(issue.Title(), ShouldEqual, "SITEA_model.rvt Coordinates issue")
		})

		Convey("Then the description should embed file, urn and all four points", func() {
			So(issue.Description(), ShouldEqual,
				"file: SITEA_model.rvt;"+
					"urn: urn:v1;"+
					"project_base_point: (5.000000000, 0.000000000, 0.000000000);"+
					"project_survey_point: (10.000000000, 0.000000000, 0.000000000);"+
					"correct_base_point: (0.000000000, 0.000000000, 0.000000000);"+
					"correct_survey_point: (10.000000000, 0.000000000, 0.000000000);")
		})

		Convey("Then the payload should carry the fixed tracker fields", func() {
			p := issue.Payload()
			So(p.Status, ShouldEqual, "open")
			So(p.AssignedTo, ShouldEqual, "user-1")
			So(p.AssignedToType, ShouldEqual, "user")
			So(p.IssueSubtypeID, ShouldEqual, "subtype-1")
			So(p.Published, ShouldBeTrue)
		})
	})
}

func TestReporterReport(t *testing.T) {
	Convey("Given a tracker that accepts issues", t, func() {
		var got captured
		srv := newTracker(http.StatusCreated, `{"id":"issue-1"}`, &got)
		defer srv.Close()

		reporter := issues.New(issues.WithBaseURL(srv.URL))

		Convey("When reporting an issue", func() {
			receipt, err := reporter.Report(context.Background(), sampleIssue())
			got.mu.Lock()
			defer got.mu.Unlock()

			Convey("Then it should succeed with the tracker's answer", func() {
				So(err, ShouldBeNil)
				So(receipt.StatusCode, ShouldEqual, http.StatusCreated)
				So(receipt.Body, ShouldEqual, `{"id":"issue-1"}`)
			})

			Convey("And the request should target the project's issues collection", func() {
				So(got.method, ShouldEqual, http.MethodPost)
				So(got.path, ShouldEqual, "/construction/issues/v1/projects/b.project-1/issues")
			})

			Convey("And it should carry the bearer token and JSON content type", func() {
				So(got.auth, ShouldEqual, "Bearer secret-token")
				So(got.ctype, ShouldEqual, "application/json")
				So(got.reqID, ShouldEqual, "run-42")
			})

			Convey("And the body should hold the issue fields", func() {
				So(got.payload["title"], ShouldEqual, "SITEA_model.rvt Coordinates issue")
				So(got.payload["status"], ShouldEqual, "open")
				So(got.payload["issueSubtypeId"], ShouldEqual, "subtype-1")
				So(got.payload["assignedTo"], ShouldEqual, "user-1")
				So(got.payload["assignedToType"], ShouldEqual, "user")
				So(got.payload["published"], ShouldEqual, true)
				So(got.payload["description"], ShouldContainSubstring, "urn: urn:v1;")
			})
		})
	})

	Convey("Given a tracker that fails", t, func() {
		var got captured
		srv := newTracker(http.StatusInternalServerError, `{"error":"down"}`, &got)
		defer srv.Close()

		reporter := issues.New(issues.WithBaseURL(srv.URL + "/"))

		Convey("When reporting an issue", func() {
			receipt, err := reporter.Report(context.Background(), sampleIssue())
			got.mu.Lock()
			defer got.mu.Unlock()

			Convey("Then it should return a reporting failure with the status", func() {
				So(errors.Is(err, types.ErrReportingFailure), ShouldBeTrue)
				So(types.IsFatal(err), ShouldBeFalse)
				So(receipt.StatusCode, ShouldEqual, http.StatusInternalServerError)
				So(got.path, ShouldEqual, "/construction/issues/v1/projects/b.project-1/issues")
			})
		})
	})

	Convey("Given a tracker that hangs", t, func() {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		reporter := issues.New(issues.WithBaseURL(srv.URL), issues.WithTimeout(50*time.Millisecond))

		Convey("When reporting an issue", func() {
			start := time.Now()
			_, err := reporter.Report(context.Background(), sampleIssue())

			Convey("Then the call should give up after the timeout", func() {
				So(errors.Is(err, types.ErrReportingFailure), ShouldBeTrue)
				So(time.Since(start), ShouldBeLessThan, 5*time.Second)
			})
		})
	})

	Convey("Given an unreachable tracker", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		reporter := issues.New(issues.WithBaseURL(addr))

		Convey("When reporting an issue", func() {
			_, err := reporter.Report(context.Background(), sampleIssue())

			Convey("Then the transport error should be a reporting failure", func() {
				So(errors.Is(err, types.ErrReportingFailure), ShouldBeTrue)
			})
		})
	})

	Convey("Given an issue without a project id", t, func() {
		issue := sampleIssue()
		issue.ProjectID = ""

		Convey("When reporting it", func() {
			_, err := issues.New().Report(context.Background(), issue)

			Convey("Then no request should be attempted", func() {
				So(errors.Is(err, types.ErrReportingFailure), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "project id is empty")
			})
		})
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestReporterHTTPClient(t *testing.T) {
	Convey("Given a reporter on a custom HTTP client", t, func() {
		var sent *http.Request
		client := &http.Client{
			Timeout: time.Minute,
			Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				sent = r
				return &http.Response{
					StatusCode: http.StatusCreated,
					Status:     "201 Created",
					Body:       io.NopCloser(strings.NewReader(`{"id":"issue-7"}`)),
					Header:     http.Header{},
					Request:    r,
				}, nil
			}),
		}
		reporter := issues.New(issues.WithHTTPClient(client), issues.WithTimeout(time.Second))

		Convey("When reporting an issue", func() {
			receipt, err := reporter.Report(context.Background(), sampleIssue())

			Convey("Then the request should go through the client's transport", func() {
				So(err, ShouldBeNil)
				So(receipt.Body, ShouldEqual, `{"id":"issue-7"}`)
				So(sent, ShouldNotBeNil)
				So(sent.URL.String(), ShouldEqual,
					"https://developer.api.autodesk.com/construction/issues/v1/projects/b.project-1/issues")
			})

			Convey("And the caller's client should keep its own timeout", func() {
				So(client.Timeout, ShouldEqual, time.Minute)
			})
		})
	})
}
