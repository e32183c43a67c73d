// Package issues creates coordinate discrepancy issues in the construction
// issue tracker.
//
// Reporting is best effort: every failure comes back wrapped in
// types.ErrReportingFailure and nothing is retried. There is no
// deduplication, so reporting the same discrepancy twice creates two issues.
package issues

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/coordcheck/internal/domain/model"
	"github.com/okian/coordcheck/internal/domain/types"
	"github.com/okian/coordcheck/pkg/logger"
)

// Default reporter configuration constants.
const (
	defaultBaseURL  = "https://developer.api.autodesk.com"
	defaultTimeout  = 30 * time.Second
	maxLoggedBody   = 4096
	issuesPathFmt   = "/construction/issues/v1/projects/%s/issues"
	requestIDHeader = "X-Request-Id"
)

// Issue holds everything needed to describe one discrepancy.
type Issue struct {
	FileName       string
	VersionURN     string
	ProjectID      string
	IssueSubTypeID string
	AssigneeID     string
	Token          string
	RequestID      string

	Extracted model.ExtractedCoordinates
	Correct   model.ReferenceRecord
}

// Title is the issue title shown in the tracker.
func (i Issue) Title() string {
	return i.FileName + " Coordinates issue"
}

// Description embeds the file, version and both pairs of points.
func (i Issue) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "file: %s;", i.FileName)
	fmt.Fprintf(&b, "urn: %s;", i.VersionURN)
	fmt.Fprintf(&b, "project_base_point: %s;", i.Extracted.BasePoint)
	fmt.Fprintf(&b, "project_survey_point: %s;", i.Extracted.SurveyPoint)
	fmt.Fprintf(&b, "correct_base_point: %s;", i.Correct.BasePoint)
	fmt.Fprintf(&b, "correct_survey_point: %s;", i.Correct.SurveyPoint)
	return b.String()
}

// Payload is the JSON body of an issue creation request.
type Payload struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Status         string `json:"status"`
	IssueSubtypeID string `json:"issueSubtypeId"`
	AssignedTo     string `json:"assignedTo"`
	AssignedToType string `json:"assignedToType"`
	Published      bool   `json:"published"`
}

// Payload builds the request body for the issue.
func (i Issue) Payload() Payload {
	return Payload{
		Title:          i.Title(),
		Description:    i.Description(),
		Status:         "open",
		IssueSubtypeID: i.IssueSubTypeID,
		AssignedTo:     i.AssigneeID,
		AssignedToType: "user",
		Published:      true,
	}
}

// Receipt describes the tracker's answer to a successful request.
type Receipt struct {
	StatusCode int
	Body       string
}

// Reporter sends issues to the tracker over HTTP.
type Reporter struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	logger  logger.Logger
}

// New constructs a Reporter with default configuration. Without WithLogger it
// logs through the global logger, falling back to slog.Default when
// logger.Init has not run.
func New(opts ...Option) *Reporter {
	r := &Reporter{
		baseURL: defaultBaseURL,
		timeout: defaultTimeout,
	}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	if r.client == nil {
		r.client = &http.Client{}
	}
	client := *r.client
	client.Timeout = r.timeout
	r.client = &client

	if r.logger == nil {
		r.logger = logger.Default().Named("issues")
	}
	return r
}

// Report creates one issue. Any transport error or non-2xx status is returned
// wrapped in types.ErrReportingFailure.
func (r *Reporter) Report(ctx context.Context, issue Issue) (Receipt, error) {
	if issue.ProjectID == "" {
		return Receipt{}, fmt.Errorf("%w: project id is empty", types.ErrReportingFailure)
	}

	body, err := json.Marshal(issue.Payload())
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: marshal payload: %v", types.ErrReportingFailure, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	endpoint := strings.TrimRight(r.baseURL, "/") + fmt.Sprintf(issuesPathFmt, url.PathEscape(issue.ProjectID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: build request: %v", types.ErrReportingFailure, err)
	}
	req.Header.Set("Authorization", "Bearer "+issue.Token)
	req.Header.Set("Content-Type", "application/json")
	if issue.RequestID != "" {
		req.Header.Set(requestIDHeader, issue.RequestID)
	}

	r.logger.Debug(ctx, "creating issue",
		logger.String("endpoint", endpoint),
		logger.String("title", issue.Title()),
		logger.String("request_id", issue.RequestID),
	)

	resp, err := r.client.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", types.ErrReportingFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: read response: %v", types.ErrReportingFailure, err)
	}
	receipt := Receipt{StatusCode: resp.StatusCode, Body: string(raw)}

	r.logger.Info(ctx, "issue tracker responded",
		logger.Int("status", receipt.StatusCode),
		logger.String("body", receipt.Body),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return receipt, fmt.Errorf("%w: tracker returned %s", types.ErrReportingFailure, resp.Status)
	}
	return receipt, nil
}
