package form

import (
	"context"
	"time"

	"github.com/formgrid/forms-api/internal/domain/webhook"
	"github.com/formgrid/forms-api/internal/utils/idgen"
	"github.com/formgrid/forms-api/internal/utils/platformerrors"
)

// Service provides business logic for form operations
type Service struct {
	repo Repository
}

// NewService creates a new form service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateFormInput carries the owner-supplied attributes of a new form.
type CreateFormInput struct {
	Title       string
	Description string

	OpensAt  *time.Time
	ClosesAt *time.Time

	RequiresAuthentication   bool
	AllowMultipleSubmissions bool
	OneResponsePerUser       bool
	MaxSubmissions           *int
	IsMultiStep              bool

	WebhookEnabled bool
	WebhookURL     string
	WebhookSecret  string
}

// UpdateFormInput patches a form; nil pointers leave the attribute unchanged.
type UpdateFormInput struct {
	Title       *string
	Description *string

	OpensAt        *time.Time
	ClearOpensAt   bool
	ClosesAt       *time.Time
	ClearClosesAt  bool
	MaxSubmissions *int

	RequiresAuthentication   *bool
	AllowMultipleSubmissions *bool
	OneResponsePerUser       *bool
	IsMultiStep              *bool

	WebhookEnabled *bool
	WebhookURL     *string
	WebhookSecret  *string
}

// validStatusTransitions encodes the publish lifecycle. ARCHIVED is terminal.
var validStatusTransitions = map[FormStatus][]FormStatus{
	FormStatusDraft:     {FormStatusPublished, FormStatusArchived},
	FormStatusPublished: {FormStatusClosed, FormStatusDraft, FormStatusArchived},
	FormStatusClosed:    {FormStatusPublished, FormStatusArchived},
	FormStatusArchived:  {},
}

func canTransition(from, to FormStatus) bool {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Create creates a new form in DRAFT with a fresh public ID and slug.
func (s *Service) Create(ctx context.Context, input CreateFormInput, ownerID uint) (*Form, error) {
	if input.Title == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "title is required", nil, "8f1c2a74-90de-4c0b-b3a1-5f62e7d8a410")
	}
	if err := s.validateWebhookConfig(ctx, input.WebhookEnabled, input.WebhookURL); err != nil {
		return nil, err
	}
	if err := validateWindow(ctx, input.OpensAt, input.ClosesAt); err != nil {
		return nil, err
	}

	publicID, err := idgen.GenerateSecureID("form", 24)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate ID", err, "a3b4c5d6-7e8f-4901-a234-b5c6d7e8f901")
	}

	slug, err := generateSlug(ctx, s.repo, input.Title)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate slug", err, "b4c5d6e7-8f90-4a12-b345-c6d7e8f90a12")
	}

	form := &Form{
		PublicID:                 publicID,
		OwnerID:                  ownerID,
		Title:                    input.Title,
		Description:              input.Description,
		Slug:                     slug,
		Status:                   FormStatusDraft,
		OpensAt:                  input.OpensAt,
		ClosesAt:                 input.ClosesAt,
		RequiresAuthentication:   input.RequiresAuthentication,
		AllowMultipleSubmissions: input.AllowMultipleSubmissions,
		OneResponsePerUser:       input.OneResponsePerUser,
		MaxSubmissions:           input.MaxSubmissions,
		IsMultiStep:              input.IsMultiStep,
		WebhookEnabled:           input.WebhookEnabled,
		WebhookURL:               input.WebhookURL,
		WebhookSecret:            input.WebhookSecret,
	}

	if err := s.repo.Create(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// GetOwned retrieves a form by public ID and verifies ownership.
func (s *Service) GetOwned(ctx context.Context, publicID string, ownerID uint) (*Form, error) {
	if !idgen.ValidateIDFormat(publicID, "form") {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "form not found", nil, "7f8a9b0c-1d2e-4f30-8abd-5c6d7e8f9a0b")
	}

	form, err := s.repo.FindWithFields(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if form.OwnerID != ownerID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "form does not belong to user", nil, "c5d6e7f8-90a1-4b23-c456-d7e8f90a1b23")
	}
	return form, nil
}

// GetBySlug retrieves a published form by slug for the public fill view and
// records the view. DRAFT and ARCHIVED forms are not found; CLOSED forms are
// returned so the client can render the closed notice.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Form, error) {
	form, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if form.Status != FormStatusPublished && form.Status != FormStatusClosed {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "form not found", nil, "d6e7f809-a1b2-4c34-d567-e8f90a1b2c34")
	}

	if err := s.repo.IncrementViewCount(ctx, form.ID); err != nil {
		// View counting is best-effort; the fill view still renders.
		_ = platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to increment view count")
	}
	form.ViewCount++
	return form, nil
}

// GetWithFields loads a form with its ordered fields and steps, without any
// ownership check. The submission pipeline uses it for public submits.
func (s *Service) GetWithFields(ctx context.Context, publicID string) (*Form, error) {
	return s.repo.FindWithFields(ctx, publicID)
}

// List returns the owner's forms with a total count.
func (s *Service) List(ctx context.Context, ownerID uint, status *FormStatus, p *Pagination) ([]*Form, int64, error) {
	filter := Filter{OwnerID: &ownerID, Status: status}

	forms, err := s.repo.FindByFilter(ctx, filter, p)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return forms, count, nil
}

// Update applies a patch to an owned form.
func (s *Service) Update(ctx context.Context, publicID string, ownerID uint, input UpdateFormInput) (*Form, error) {
	form, err := s.GetOwned(ctx, publicID, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "title cannot be empty", nil, "e7f809a1-b2c3-4d45-e678-f90a1b2c3d45")
		}
		form.Title = *input.Title
	}
	if input.Description != nil {
		form.Description = *input.Description
	}
	if input.OpensAt != nil {
		form.OpensAt = input.OpensAt
	}
	if input.ClearOpensAt {
		form.OpensAt = nil
	}
	if input.ClosesAt != nil {
		form.ClosesAt = input.ClosesAt
	}
	if input.ClearClosesAt {
		form.ClosesAt = nil
	}
	if input.MaxSubmissions != nil {
		form.MaxSubmissions = input.MaxSubmissions
	}
	if input.RequiresAuthentication != nil {
		form.RequiresAuthentication = *input.RequiresAuthentication
	}
	if input.AllowMultipleSubmissions != nil {
		form.AllowMultipleSubmissions = *input.AllowMultipleSubmissions
	}
	if input.OneResponsePerUser != nil {
		form.OneResponsePerUser = *input.OneResponsePerUser
	}
	if input.IsMultiStep != nil {
		form.IsMultiStep = *input.IsMultiStep
	}
	if input.WebhookEnabled != nil {
		form.WebhookEnabled = *input.WebhookEnabled
	}
	if input.WebhookURL != nil {
		form.WebhookURL = *input.WebhookURL
	}
	if input.WebhookSecret != nil {
		form.WebhookSecret = *input.WebhookSecret
	}

	if err := s.validateWebhookConfig(ctx, form.WebhookEnabled, form.WebhookURL); err != nil {
		return nil, err
	}
	if err := validateWindow(ctx, form.OpensAt, form.ClosesAt); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// Delete removes an owned form and its submissions.
func (s *Service) Delete(ctx context.Context, publicID string, ownerID uint) error {
	form, err := s.GetOwned(ctx, publicID, ownerID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, form.ID)
}

// UpdateStatus moves an owned form through the publish lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, publicID string, ownerID uint, status FormStatus) (*Form, error) {
	form, err := s.GetOwned(ctx, publicID, ownerID)
	if err != nil {
		return nil, err
	}

	if form.Status == status {
		return form, nil
	}
	if !canTransition(form.Status, status) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "invalid status transition", nil, "f809a1b2-c3d4-4e56-f789-0a1b2c3d4e56")
	}
	if status == FormStatusPublished && len(form.Fields) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "cannot publish a form without fields", nil, "09a1b2c3-d4e5-4f67-089a-1b2c3d4e5f67")
	}

	if err := s.repo.UpdateStatus(ctx, form.ID, status); err != nil {
		return nil, err
	}
	form.Status = status
	return form, nil
}

// ReplaceSteps replaces an owned form's steps and fields wholesale, assigning
// fresh public IDs. Clients send the complete structure on every save.
func (s *Service) ReplaceSteps(ctx context.Context, publicID string, ownerID uint, steps []Step) ([]Step, error) {
	form, err := s.GetOwned(ctx, publicID, ownerID)
	if err != nil {
		return nil, err
	}

	if err := validateSteps(ctx, steps); err != nil {
		return nil, err
	}

	for i := range steps {
		stepID, err := idgen.GenerateSecureID("step", 24)
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate ID", err, "1b2c3d4e-5f60-4789-1a2b-3c4d5e6f7089")
		}
		steps[i].PublicID = stepID
		steps[i].Order = i

		for j := range steps[i].Fields {
			fieldID, err := idgen.GenerateSecureID("fld", 24)
			if err != nil {
				return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate ID", err, "2c3d4e5f-6078-4890-2b3c-4d5e6f708190")
			}
			steps[i].Fields[j].PublicID = fieldID
			steps[i].Fields[j].Order = j
		}
	}

	return s.repo.ReplaceSteps(ctx, form.ID, steps)
}

// PreviewLogic classifies fields against a partial answer set so clients can
// render progressive multi-step forms without duplicating evaluator semantics.
func (s *Service) PreviewLogic(ctx context.Context, publicID string, answers map[string]any) (Classification, error) {
	form, err := s.repo.FindWithFields(ctx, publicID)
	if err != nil {
		return Classification{}, err
	}
	return Classify(form.Fields, answers), nil
}

func (s *Service) validateWebhookConfig(ctx context.Context, enabled bool, rawURL string) error {
	if !enabled {
		return nil
	}
	if err := webhook.IsSafeURL(rawURL); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "webhook URL is not allowed", err, "3d4e5f60-7889-49a1-3c4d-5e6f70819202")
	}
	return nil
}

func validateWindow(ctx context.Context, opensAt, closesAt *time.Time) error {
	if opensAt != nil && closesAt != nil && closesAt.Before(*opensAt) {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "closesAt must be after opensAt", nil, "4e5f6078-8990-4ab2-4d5e-6f7081920313")
	}
	return nil
}

func validateSteps(ctx context.Context, steps []Step) error {
	seen := make(map[string]bool)
	for _, step := range steps {
		for _, field := range step.Fields {
			if field.Label == "" {
				return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "field label is required", nil, "5f607889-90a1-4bc3-5e6f-708192031424")
			}
			if seen[field.Label] {
				return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "duplicate field label: "+field.Label, nil, "60788990-a1b2-4cd4-6f70-819203142535")
			}
			seen[field.Label] = true
		}
	}
	return nil
}
