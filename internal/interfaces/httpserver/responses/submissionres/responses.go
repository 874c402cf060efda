package submissionres

import (
	"time"

	"github.com/formgrid/forms-api/internal/domain/submission"
	"github.com/formgrid/forms-api/internal/utils/functional"
)

// SubmissionResponse represents a stored submission for the owner dashboard
type SubmissionResponse struct {
	ID             string         `json:"id"`
	Object         string         `json:"object"`
	FormID         string         `json:"formId"`
	Data           map[string]any `json:"data"`
	Authenticated  bool           `json:"authenticated"`
	IPAddress      string         `json:"ipAddress,omitempty"`
	UserAgent      string         `json:"userAgent,omitempty"`
	TimeToComplete *int           `json:"timeToComplete,omitempty"`
	CompletedAt    time.Time      `json:"completedAt"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// SubmissionAcceptedResponse is returned to respondents. It deliberately
// exposes only the receipt identifier, not the stored row.
type SubmissionAcceptedResponse struct {
	ID     string `json:"id"`
	Object string `json:"object"`
}

// SubmissionListResponse represents a paginated list of submissions
type SubmissionListResponse struct {
	Object string               `json:"object"`
	Data   []SubmissionResponse `json:"data"`
	Total  int64                `json:"total"`
}

// SubmissionDeletedResponse represents the delete confirmation response
type SubmissionDeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// WebhookTestResponse reports the outcome of a test delivery
type WebhookTestResponse struct {
	Object    string `json:"object"`
	Delivered bool   `json:"delivered"`
}

// NewSubmissionResponse creates a response from a domain submission
func NewSubmissionResponse(formPublicID string, s *submission.Submission) *SubmissionResponse {
	return &SubmissionResponse{
		ID:             s.PublicID,
		Object:         "submission",
		FormID:         formPublicID,
		Data:           s.Data,
		Authenticated:  s.UserID != nil,
		IPAddress:      s.IPAddress,
		UserAgent:      s.UserAgent,
		TimeToComplete: s.TimeToComplete,
		CompletedAt:    s.CompletedAt,
		CreatedAt:      s.CreatedAt,
	}
}

// NewSubmissionAcceptedResponse creates the respondent receipt
func NewSubmissionAcceptedResponse(publicID string) *SubmissionAcceptedResponse {
	return &SubmissionAcceptedResponse{ID: publicID, Object: "submission"}
}

// NewSubmissionListResponse creates a list response from domain submissions
func NewSubmissionListResponse(formPublicID string, subs []*submission.Submission, total int64) *SubmissionListResponse {
	return &SubmissionListResponse{
		Object: "list",
		Data: functional.Map(subs, func(s *submission.Submission) SubmissionResponse {
			return *NewSubmissionResponse(formPublicID, s)
		}),
		Total: total,
	}
}

// NewSubmissionDeletedResponse creates a delete response
func NewSubmissionDeletedResponse(publicID string) *SubmissionDeletedResponse {
	return &SubmissionDeletedResponse{
		ID:      publicID,
		Object:  "submission",
		Deleted: true,
	}
}
