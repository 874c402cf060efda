package formreq

import (
	"time"

	"github.com/formgrid/forms-api/internal/domain/form"
)

// CreateFormRequest represents the request to create a form
type CreateFormRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description,omitempty"`

	OpensAt  *time.Time `json:"opensAt,omitempty"`
	ClosesAt *time.Time `json:"closesAt,omitempty"`

	RequiresAuthentication   bool `json:"requiresAuthentication"`
	AllowMultipleSubmissions bool `json:"allowMultipleSubmissions"`
	OneResponsePerUser       bool `json:"oneResponsePerUser"`
	MaxSubmissions           *int `json:"maxSubmissions,omitempty" binding:"omitempty,gt=0"`
	IsMultiStep              bool `json:"isMultiStep"`

	WebhookEnabled bool   `json:"webhookEnabled"`
	WebhookURL     string `json:"webhookUrl,omitempty" binding:"omitempty,url"`
	WebhookSecret  string `json:"webhookSecret,omitempty"`
}

func (r *CreateFormRequest) ToInput() form.CreateFormInput {
	return form.CreateFormInput{
		Title:                    r.Title,
		Description:              r.Description,
		OpensAt:                  r.OpensAt,
		ClosesAt:                 r.ClosesAt,
		RequiresAuthentication:   r.RequiresAuthentication,
		AllowMultipleSubmissions: r.AllowMultipleSubmissions,
		OneResponsePerUser:       r.OneResponsePerUser,
		MaxSubmissions:           r.MaxSubmissions,
		IsMultiStep:              r.IsMultiStep,
		WebhookEnabled:           r.WebhookEnabled,
		WebhookURL:               r.WebhookURL,
		WebhookSecret:            r.WebhookSecret,
	}
}

// UpdateFormRequest represents the request to patch a form. Nil fields are
// left unchanged; the Clear flags reset the scheduling window.
type UpdateFormRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`

	OpensAt        *time.Time `json:"opensAt,omitempty"`
	ClearOpensAt   bool       `json:"clearOpensAt,omitempty"`
	ClosesAt       *time.Time `json:"closesAt,omitempty"`
	ClearClosesAt  bool       `json:"clearClosesAt,omitempty"`
	MaxSubmissions *int       `json:"maxSubmissions,omitempty" binding:"omitempty,gt=0"`

	RequiresAuthentication   *bool `json:"requiresAuthentication,omitempty"`
	AllowMultipleSubmissions *bool `json:"allowMultipleSubmissions,omitempty"`
	OneResponsePerUser       *bool `json:"oneResponsePerUser,omitempty"`
	IsMultiStep              *bool `json:"isMultiStep,omitempty"`

	WebhookEnabled *bool   `json:"webhookEnabled,omitempty"`
	WebhookURL     *string `json:"webhookUrl,omitempty" binding:"omitempty,url"`
	WebhookSecret  *string `json:"webhookSecret,omitempty"`
}

func (r *UpdateFormRequest) ToInput() form.UpdateFormInput {
	return form.UpdateFormInput{
		Title:                    r.Title,
		Description:              r.Description,
		OpensAt:                  r.OpensAt,
		ClearOpensAt:             r.ClearOpensAt,
		ClosesAt:                 r.ClosesAt,
		ClearClosesAt:            r.ClearClosesAt,
		MaxSubmissions:           r.MaxSubmissions,
		RequiresAuthentication:   r.RequiresAuthentication,
		AllowMultipleSubmissions: r.AllowMultipleSubmissions,
		OneResponsePerUser:       r.OneResponsePerUser,
		IsMultiStep:              r.IsMultiStep,
		WebhookEnabled:           r.WebhookEnabled,
		WebhookURL:               r.WebhookURL,
		WebhookSecret:            r.WebhookSecret,
	}
}

// UpdateStatusRequest represents the request to move a form through its
// publish lifecycle
type UpdateStatusRequest struct {
	Status form.FormStatus `json:"status" binding:"required,oneof=DRAFT PUBLISHED CLOSED ARCHIVED"`
}

// FieldRequest is one field definition inside a steps replace
type FieldRequest struct {
	Type     form.FieldType `json:"type" binding:"required"`
	Label    string         `json:"label" binding:"required"`
	Required bool           `json:"required"`
	Options  []string       `json:"options,omitempty"`

	ValidationRules  *form.ValidationRules  `json:"validationRules,omitempty"`
	ConditionalLogic *form.ConditionalLogic `json:"conditionalLogic,omitempty"`

	AllowedFileTypes []string `json:"allowedFileTypes,omitempty"`
	MaxFileSize      int64    `json:"maxFileSize,omitempty" binding:"omitempty,gte=0"`
	MaxFiles         int      `json:"maxFiles,omitempty" binding:"omitempty,gte=0"`
}

// StepRequest is one step definition inside a steps replace
type StepRequest struct {
	Title  string         `json:"title"`
	Fields []FieldRequest `json:"fields" binding:"omitempty,dive"`
}

// UpdateStepsRequest represents the full-replace steps payload. Clients send
// the complete structure on every save; field identifiers are reissued.
type UpdateStepsRequest struct {
	Steps []StepRequest `json:"steps" binding:"required,dive"`
}

func (r *UpdateStepsRequest) ToSteps() []form.Step {
	steps := make([]form.Step, 0, len(r.Steps))
	for _, s := range r.Steps {
		step := form.Step{Title: s.Title}
		for _, f := range s.Fields {
			step.Fields = append(step.Fields, form.Field{
				Type:             f.Type,
				Label:            f.Label,
				Required:         f.Required,
				Options:          f.Options,
				ValidationRules:  f.ValidationRules,
				ConditionalLogic: f.ConditionalLogic,
				AllowedFileTypes: f.AllowedFileTypes,
				MaxFileSize:      f.MaxFileSize,
				MaxFiles:         f.MaxFiles,
			})
		}
		steps = append(steps, step)
	}
	return steps
}

// PreviewLogicRequest carries a partial answer set for logic classification
type PreviewLogicRequest struct {
	Answers map[string]any `json:"answers" binding:"required"`
}
