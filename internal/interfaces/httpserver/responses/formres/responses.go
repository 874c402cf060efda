package formres

import (
	"sort"
	"time"

	"github.com/formgrid/forms-api/internal/domain/form"
	"github.com/formgrid/forms-api/internal/utils/functional"
)

// FormResponse represents the owner view of a form. The webhook secret is
// never serialized; owners re-enter it to rotate.
type FormResponse struct {
	ID          string          `json:"id"`
	Object      string          `json:"object"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Slug        string          `json:"slug"`
	Status      form.FormStatus `json:"status"`

	OpensAt  *time.Time `json:"opensAt,omitempty"`
	ClosesAt *time.Time `json:"closesAt,omitempty"`

	RequiresAuthentication   bool `json:"requiresAuthentication"`
	AllowMultipleSubmissions bool `json:"allowMultipleSubmissions"`
	OneResponsePerUser       bool `json:"oneResponsePerUser"`
	MaxSubmissions           *int `json:"maxSubmissions,omitempty"`
	IsMultiStep              bool `json:"isMultiStep"`

	WebhookEnabled   bool   `json:"webhookEnabled"`
	WebhookURL       string `json:"webhookUrl,omitempty"`
	WebhookHasSecret bool   `json:"webhookHasSecret"`

	ViewCount       int `json:"viewCount"`
	SubmissionCount int `json:"submissionCount"`

	Fields []form.Field `json:"fields,omitempty"`
	Steps  []form.Step  `json:"steps,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicFormResponse represents the respondent-facing fill view. Webhook
// configuration and counters stay private to the owner.
type PublicFormResponse struct {
	ID          string          `json:"id"`
	Object      string          `json:"object"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Slug        string          `json:"slug"`
	Status      form.FormStatus `json:"status"`

	OpensAt  *time.Time `json:"opensAt,omitempty"`
	ClosesAt *time.Time `json:"closesAt,omitempty"`

	RequiresAuthentication bool `json:"requiresAuthentication"`
	IsMultiStep            bool `json:"isMultiStep"`

	Fields []form.Field `json:"fields,omitempty"`
	Steps  []form.Step  `json:"steps,omitempty"`
}

// FormListResponse represents a paginated list of forms
type FormListResponse struct {
	Object string         `json:"object"`
	Data   []FormResponse `json:"data"`
	Total  int64          `json:"total"`
}

// FormDeletedResponse represents the delete confirmation response
type FormDeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// LogicPreviewResponse carries the classification of fields for a partial
// answer set.
type LogicPreviewResponse struct {
	Object   string   `json:"object"`
	Visible  []string `json:"visible"`
	Required []string `json:"required"`
	Skipped  []string `json:"skipped"`
}

// StepsResponse represents the saved structure after a steps replace
type StepsResponse struct {
	Object string      `json:"object"`
	Steps  []form.Step `json:"steps"`
}

// NewFormResponse creates an owner response from a domain form
func NewFormResponse(f *form.Form) *FormResponse {
	return &FormResponse{
		ID:                       f.PublicID,
		Object:                   "form",
		Title:                    f.Title,
		Description:              f.Description,
		Slug:                     f.Slug,
		Status:                   f.Status,
		OpensAt:                  f.OpensAt,
		ClosesAt:                 f.ClosesAt,
		RequiresAuthentication:   f.RequiresAuthentication,
		AllowMultipleSubmissions: f.AllowMultipleSubmissions,
		OneResponsePerUser:       f.OneResponsePerUser,
		MaxSubmissions:           f.MaxSubmissions,
		IsMultiStep:              f.IsMultiStep,
		WebhookEnabled:           f.WebhookEnabled,
		WebhookURL:               f.WebhookURL,
		WebhookHasSecret:         f.WebhookSecret != "",
		ViewCount:                f.ViewCount,
		SubmissionCount:          f.SubmissionCount,
		Fields:                   f.Fields,
		Steps:                    f.Steps,
		CreatedAt:                f.CreatedAt,
		UpdatedAt:                f.UpdatedAt,
	}
}

// NewPublicFormResponse creates the fill view from a domain form
func NewPublicFormResponse(f *form.Form) *PublicFormResponse {
	return &PublicFormResponse{
		ID:                     f.PublicID,
		Object:                 "form",
		Title:                  f.Title,
		Description:            f.Description,
		Slug:                   f.Slug,
		Status:                 f.Status,
		OpensAt:                f.OpensAt,
		ClosesAt:               f.ClosesAt,
		RequiresAuthentication: f.RequiresAuthentication,
		IsMultiStep:            f.IsMultiStep,
		Fields:                 f.Fields,
		Steps:                  f.Steps,
	}
}

// NewFormListResponse creates a list response from domain forms
func NewFormListResponse(forms []*form.Form, total int64) *FormListResponse {
	return &FormListResponse{
		Object: "list",
		Data: functional.Map(forms, func(f *form.Form) FormResponse {
			return *NewFormResponse(f)
		}),
		Total: total,
	}
}

// NewFormDeletedResponse creates a delete response
func NewFormDeletedResponse(publicID string) *FormDeletedResponse {
	return &FormDeletedResponse{
		ID:      publicID,
		Object:  "form",
		Deleted: true,
	}
}

// NewLogicPreviewResponse flattens a classification into stable field ID lists
func NewLogicPreviewResponse(c form.Classification) *LogicPreviewResponse {
	resp := &LogicPreviewResponse{
		Object:   "logic_preview",
		Visible:  make([]string, 0, len(c.Visible)),
		Required: make([]string, 0, len(c.Required)),
		Skipped:  make([]string, 0, len(c.Skipped)),
	}
	for id := range c.Visible {
		resp.Visible = append(resp.Visible, id)
	}
	for id := range c.Required {
		resp.Required = append(resp.Required, id)
	}
	for id := range c.Skipped {
		resp.Skipped = append(resp.Skipped, id)
	}
	sort.Strings(resp.Visible)
	sort.Strings(resp.Required)
	sort.Strings(resp.Skipped)
	return resp
}

// NewStepsResponse wraps a saved step structure
func NewStepsResponse(steps []form.Step) *StepsResponse {
	return &StepsResponse{Object: "steps", Steps: steps}
}
