package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/formgrid/forms-api/internal/domain/form"
	"github.com/formgrid/forms-api/internal/domain/notification"
	"github.com/formgrid/forms-api/internal/domain/webhook"
	"github.com/formgrid/forms-api/internal/infrastructure/logger"
	"github.com/formgrid/forms-api/internal/infrastructure/metrics"
	"github.com/formgrid/forms-api/internal/utils/idgen"
	"github.com/formgrid/forms-api/internal/utils/platformerrors"
)

// Rejection reasons recorded on the eligibility metrics counter.
const (
	reasonNotPublished  = "not_published"
	reasonNotOpenYet    = "not_open_yet"
	reasonClosed        = "closed"
	reasonAuthRequired  = "auth_required"
	reasonQuotaExceeded = "quota_exceeded"
	reasonDuplicate     = "duplicate"
)

// Service orchestrates the submission pipeline: eligibility, classification,
// validation, externalization, persistence, and post-commit dispatch.
type Service struct {
	repo         Repository
	formRepo     form.Repository
	externalizer *Externalizer
	dispatcher   *webhook.Dispatcher
	notifier     notification.Notifier

	now func() time.Time
}

func NewService(repo Repository, formRepo form.Repository, externalizer *Externalizer, dispatcher *webhook.Dispatcher, notifier notification.Notifier) *Service {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	return &Service{
		repo:         repo,
		formRepo:     formRepo,
		externalizer: externalizer,
		dispatcher:   dispatcher,
		notifier:     notifier,
		now:          time.Now,
	}
}

// Submit runs the full pipeline for one candidate submission. Eligibility and
// validation failures return typed errors; everything after persistence is
// fire-and-forget and can never fail the submission.
func (s *Service) Submit(ctx context.Context, formPublicID string, input SubmitInput, userID *uint) (*Submission, error) {
	f, err := s.formRepo.FindWithFields(ctx, formPublicID)
	if err != nil {
		return nil, err
	}

	if err := s.checkEligibility(ctx, f, userID); err != nil {
		return nil, err
	}

	classification := form.Classify(f.Fields, input.Data)

	visible := make([]form.Field, 0, len(f.Fields))
	for _, field := range f.Fields {
		if !classification.IsVisible(field.PublicID) {
			continue
		}
		field.Required = classification.IsRequired(field.PublicID)
		visible = append(visible, field)
	}

	result := form.ValidateSubmission(visible, input.Data)
	if !result.IsValid {
		metrics.RecordSubmissionRejected("validation")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "submission failed validation",
			&ValidationFailedError{Fields: result.Errors}, "7a8b9c0d-1e2f-4a3b-8c4d-5e6f7a8b9c0d")
	}

	data := s.externalizer.Process(ctx, f, visible, input.Data)

	publicID, err := idgen.GenerateSecureID("sub", 24)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate ID", err, "8b9c0d1e-2f3a-4b4c-9d5e-6f7a8b9c0d1e")
	}

	sub := &Submission{
		PublicID:       publicID,
		FormID:         f.ID,
		UserID:         userID,
		Data:           data,
		IPAddress:      input.IPAddress,
		UserAgent:      input.UserAgent,
		TimeToComplete: input.TimeToComplete,
		CompletedAt:    s.now().UTC(),
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	if err := s.formRepo.IncrementSubmissionCount(ctx, f.ID); err != nil {
		// Counter drift is tolerated; the submission row is already committed.
		log := logger.GetLogger()
		log.Error().Err(err).Str("form_id", f.PublicID).Msg("failed to increment submission count")
	}
	metrics.SubmissionsAcceptedTotal.Inc()

	s.dispatchCreated(f, sub)

	return sub, nil
}

// checkEligibility applies the acceptance gates in order; the first failing
// gate decides the rejection.
func (s *Service) checkEligibility(ctx context.Context, f *form.Form, userID *uint) error {
	now := s.now()

	if f.Status != form.FormStatusPublished {
		return s.reject(ctx, reasonNotPublished, "form is not accepting submissions", "9c0d1e2f-3a4b-4c5d-ae6f-7a8b9c0d1e2f")
	}
	if f.OpensAt != nil && now.Before(*f.OpensAt) {
		return s.reject(ctx, reasonNotOpenYet, "form is not open yet", "0d1e2f3a-4b5c-4d6e-bf7a-8b9c0d1e2f3a")
	}
	if f.ClosesAt != nil && now.After(*f.ClosesAt) {
		return s.reject(ctx, reasonClosed, "form is closed", "1e2f3a4b-5c6d-4e7f-8a8b-9c0d1e2f3a4b")
	}
	if f.RequiresAuthentication && userID == nil {
		return s.reject(ctx, reasonAuthRequired, "authentication required", "2f3a4b5c-6d7e-4f8a-9b9c-0d1e2f3a4b5c")
	}

	if f.MaxSubmissions != nil {
		// Read-then-insert without a lock: concurrent submissions can exceed
		// the cap by the number of in-flight requests.
		count, err := s.repo.CountByForm(ctx, f.ID)
		if err != nil {
			return err
		}
		if count >= int64(*f.MaxSubmissions) {
			return s.reject(ctx, reasonQuotaExceeded, "maximum submissions reached", "3a4b5c6d-7e8f-4a9b-8cad-1e2f3a4b5c6d")
		}
	}

	if userID != nil && (!f.AllowMultipleSubmissions || f.OneResponsePerUser) {
		exists, err := s.repo.ExistsByFormAndUser(ctx, f.ID, *userID)
		if err != nil {
			return err
		}
		if exists {
			return s.reject(ctx, reasonDuplicate, "you have already submitted this form", "4b5c6d7e-8f9a-4bac-9dbe-2f3a4b5c6d7e")
		}
	}

	return nil
}

func (s *Service) reject(ctx context.Context, reason, message, code string) error {
	metrics.RecordSubmissionRejected(reason)
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeEligibility, message, nil, code)
}

// dispatchCreated fans out the accepted submission to the owner's realtime
// channel and webhook. Each delivery runs detached with its own timeout so a
// stuck endpoint never holds the request open.
func (s *Service) dispatchCreated(f *form.Form, sub *Submission) {
	go func() {
		defer recoverDispatch("realtime")
		s.notifier.Notify(f.OwnerID, notification.Notification{
			Type:    "new_submission",
			Title:   "New submission",
			Message: fmt.Sprintf("%s received a new submission", f.Title),
			Data: map[string]any{
				"formId":        f.PublicID,
				"formTitle":     f.Title,
				"formSlug":      f.Slug,
				"submissionId":  sub.PublicID,
				"responseCount": f.SubmissionCount + 1,
			},
		})
	}()

	if s.dispatcher != nil && f.WebhookEnabled && f.WebhookURL != "" {
		s.sendWebhook(f, webhook.Payload{
			Event:        webhook.EventSubmissionCreated,
			Timestamp:    s.now().UTC(),
			FormID:       f.PublicID,
			FormSlug:     f.Slug,
			SubmissionID: sub.PublicID,
			Data:         sub.Data,
		})
	}
}

func (s *Service) sendWebhook(f *form.Form, payload webhook.Payload) {
	url := f.WebhookURL
	secret := f.WebhookSecret
	go func() {
		defer recoverDispatch("webhook")
		ctx, cancel := context.WithTimeout(context.Background(), s.dispatcher.Timeout()+time.Second)
		defer cancel()
		s.dispatcher.Send(ctx, url, payload, secret)
	}()
}

func recoverDispatch(kind string) {
	if r := recover(); r != nil {
		log := logger.GetLogger()
		log.Error().Interface("panic", r).Str("dispatch", kind).Msg("dispatch task panicked")
	}
}

// ListByForm returns an owned form's submissions with the total count.
func (s *Service) ListByForm(ctx context.Context, formPublicID string, ownerID uint, p *Pagination) ([]*Submission, int64, error) {
	f, err := s.ownedForm(ctx, formPublicID, ownerID)
	if err != nil {
		return nil, 0, err
	}

	subs, err := s.repo.ListByForm(ctx, f.ID, p)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.CountByForm(ctx, f.ID)
	if err != nil {
		return nil, 0, err
	}
	return subs, count, nil
}

// Delete removes a submission from an owned form, decrements the form's
// counter, and emits the deletion webhook.
func (s *Service) Delete(ctx context.Context, formPublicID, submissionPublicID string, ownerID uint) error {
	f, err := s.ownedForm(ctx, formPublicID, ownerID)
	if err != nil {
		return err
	}

	sub, err := s.repo.FindByPublicID(ctx, submissionPublicID)
	if err != nil {
		return err
	}
	if sub.FormID != f.ID {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "submission not found", nil, "5c6d7e8f-9a0b-4cbd-aecf-3a4b5c6d7e8f")
	}

	if err := s.repo.Delete(ctx, sub.ID); err != nil {
		return err
	}
	if err := s.formRepo.DecrementSubmissionCount(ctx, f.ID); err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Str("form_id", f.PublicID).Msg("failed to decrement submission count")
	}

	if s.dispatcher != nil && f.WebhookEnabled && f.WebhookURL != "" {
		s.sendWebhook(f, webhook.Payload{
			Event:        webhook.EventSubmissionDeleted,
			Timestamp:    s.now().UTC(),
			FormID:       f.PublicID,
			FormSlug:     f.Slug,
			SubmissionID: sub.PublicID,
		})
	}

	return nil
}

// SendTestWebhook delivers a test event through the same gate and signer as
// real deliveries, synchronously so the owner sees the outcome.
func (s *Service) SendTestWebhook(ctx context.Context, formPublicID string, ownerID uint) (bool, error) {
	f, err := s.ownedForm(ctx, formPublicID, ownerID)
	if err != nil {
		return false, err
	}
	if !f.WebhookEnabled || f.WebhookURL == "" {
		return false, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "webhook is not configured", nil, "6d7e8f9a-0b1c-4dce-bfda-4b5c6d7e8f9a")
	}

	delivered := s.dispatcher.Send(ctx, f.WebhookURL, webhook.Payload{
		Event:     webhook.EventTest,
		Timestamp: s.now().UTC(),
		FormID:    f.PublicID,
		FormSlug:  f.Slug,
		Data:      map[string]any{"test": true},
	}, f.WebhookSecret)
	return delivered, nil
}

func (s *Service) ownedForm(ctx context.Context, formPublicID string, ownerID uint) (*form.Form, error) {
	f, err := s.formRepo.FindByPublicID(ctx, formPublicID)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != ownerID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "form does not belong to user", nil, "7e8f9a0b-1c2d-4edf-8aeb-5c6d7e8f9a0b")
	}
	return f, nil
}
