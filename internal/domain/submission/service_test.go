package submission_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formgrid/forms-api/internal/domain/form"
	"github.com/formgrid/forms-api/internal/domain/notification"
	"github.com/formgrid/forms-api/internal/domain/submission"
	"github.com/formgrid/forms-api/internal/utils/platformerrors"
)

// mockFormRepository is a mock implementation of form.Repository for testing
type mockFormRepository struct {
	form           *form.Form
	incrementCalls int
	decrementCalls int
}

func (m *mockFormRepository) Create(ctx context.Context, f *form.Form) error { return nil }
func (m *mockFormRepository) FindByFilter(ctx context.Context, filter form.Filter, p *form.Pagination) ([]*form.Form, error) {
	return nil, nil
}
func (m *mockFormRepository) Count(ctx context.Context, filter form.Filter) (int64, error) {
	return 0, nil
}
func (m *mockFormRepository) FindByID(ctx context.Context, id uint) (*form.Form, error) {
	return m.form, nil
}
func (m *mockFormRepository) FindByPublicID(ctx context.Context, publicID string) (*form.Form, error) {
	if m.form == nil || m.form.PublicID != publicID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "form not found", nil, "test")
	}
	return m.form, nil
}
func (m *mockFormRepository) FindBySlug(ctx context.Context, slug string) (*form.Form, error) {
	return m.form, nil
}
func (m *mockFormRepository) FindWithFields(ctx context.Context, publicID string) (*form.Form, error) {
	return m.FindByPublicID(ctx, publicID)
}
func (m *mockFormRepository) Update(ctx context.Context, f *form.Form) error { return nil }
func (m *mockFormRepository) Delete(ctx context.Context, id uint) error      { return nil }
func (m *mockFormRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return false, nil
}
func (m *mockFormRepository) UpdateStatus(ctx context.Context, id uint, status form.FormStatus) error {
	return nil
}
func (m *mockFormRepository) IncrementViewCount(ctx context.Context, id uint) error { return nil }
func (m *mockFormRepository) IncrementSubmissionCount(ctx context.Context, id uint) error {
	m.incrementCalls++
	return nil
}
func (m *mockFormRepository) DecrementSubmissionCount(ctx context.Context, id uint) error {
	m.decrementCalls++
	return nil
}
func (m *mockFormRepository) ReplaceSteps(ctx context.Context, formID uint, steps []form.Step) ([]form.Step, error) {
	return steps, nil
}
func (m *mockFormRepository) FindExpiredPublished(ctx context.Context, now time.Time) ([]*form.Form, error) {
	return nil, nil
}

// mockSubmissionRepository is a mock implementation of submission.Repository
type mockSubmissionRepository struct {
	created   []*submission.Submission
	count     int64
	duplicate bool
	createErr error
}

func (m *mockSubmissionRepository) Create(ctx context.Context, sub *submission.Submission) error {
	if m.createErr != nil {
		return m.createErr
	}
	sub.ID = uint(len(m.created) + 1)
	m.created = append(m.created, sub)
	return nil
}
func (m *mockSubmissionRepository) FindByPublicID(ctx context.Context, publicID string) (*submission.Submission, error) {
	for _, sub := range m.created {
		if sub.PublicID == publicID {
			return sub, nil
		}
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "submission not found", nil, "test")
}
func (m *mockSubmissionRepository) ListByForm(ctx context.Context, formID uint, p *submission.Pagination) ([]*submission.Submission, error) {
	return m.created, nil
}
func (m *mockSubmissionRepository) CountByForm(ctx context.Context, formID uint) (int64, error) {
	return m.count + int64(len(m.created)), nil
}
func (m *mockSubmissionRepository) ExistsByFormAndUser(ctx context.Context, formID uint, userID uint) (bool, error) {
	return m.duplicate, nil
}
func (m *mockSubmissionRepository) Delete(ctx context.Context, id uint) error { return nil }

// mockNotifier captures realtime notifications on a channel so tests can wait
// for the detached dispatch goroutine.
type mockNotifier struct {
	notified chan notification.Notification
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{notified: make(chan notification.Notification, 4)}
}

func (m *mockNotifier) Notify(userID uint, n notification.Notification) {
	m.notified <- n
}

func publishedForm() *form.Form {
	return &form.Form{
		ID:       1,
		PublicID: "form_test123",
		OwnerID:  7,
		Title:    "Feedback",
		Slug:     "feedback-abc123",
		Status:   form.FormStatusPublished,
		Fields: []form.Field{
			{PublicID: "fld_name", Label: "Name", Type: form.FieldTypeText, Required: true},
			{PublicID: "fld_email", Label: "Email", Type: form.FieldTypeEmail},
		},
	}
}

func newTestService(f *form.Form) (*submission.Service, *mockFormRepository, *mockSubmissionRepository, *mockNotifier) {
	formRepo := &mockFormRepository{form: f}
	repo := &mockSubmissionRepository{}
	notifier := newMockNotifier()
	svc := submission.NewService(repo, formRepo, submission.NewExternalizer(nil), nil, notifier)
	return svc, formRepo, repo, notifier
}

func assertRejected(t *testing.T, err error, wantType platformerrors.ErrorType, wantMsg string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, wantType))
	assert.Equal(t, wantMsg, platformerrors.MessageOf(err))
}

func TestSubmitAccepted(t *testing.T) {
	f := publishedForm()
	svc, formRepo, repo, notifier := newTestService(f)

	sub, err := svc.Submit(context.Background(), f.PublicID, submission.SubmitInput{
		Data:      map[string]any{"fld_name": "Ada", "fld_email": "ada@example.com"},
		IPAddress: "203.0.113.9",
	}, nil)

	require.NoError(t, err)
	assert.Regexp(t, `^sub_`, sub.PublicID)
	assert.Equal(t, uint(1), sub.FormID)
	require.Len(t, repo.created, 1)
	assert.Equal(t, 1, formRepo.incrementCalls)

	select {
	case n := <-notifier.notified:
		assert.Equal(t, "new_submission", n.Type)
		assert.Equal(t, f.PublicID, n.Data["formId"])
		assert.Equal(t, sub.PublicID, n.Data["submissionId"])
	case <-time.After(time.Second):
		t.Fatal("owner was not notified")
	}
}

func TestSubmitEligibilityOrder(t *testing.T) {
	opens := time.Now().Add(time.Hour)
	closes := time.Now().Add(-time.Hour)
	cap := 1
	uid := uint(42)

	tests := []struct {
		name    string
		mutate  func(*form.Form, *mockSubmissionRepository)
		userID  *uint
		wantMsg string
	}{
		{
			name:    "draft form",
			mutate:  func(f *form.Form, r *mockSubmissionRepository) { f.Status = form.FormStatusDraft },
			wantMsg: "form is not accepting submissions",
		},
		{
			name:    "closed status",
			mutate:  func(f *form.Form, r *mockSubmissionRepository) { f.Status = form.FormStatusClosed },
			wantMsg: "form is not accepting submissions",
		},
		{
			name:    "not open yet",
			mutate:  func(f *form.Form, r *mockSubmissionRepository) { f.OpensAt = &opens },
			wantMsg: "form is not open yet",
		},
		{
			name:    "past close time",
			mutate:  func(f *form.Form, r *mockSubmissionRepository) { f.ClosesAt = &closes },
			wantMsg: "form is closed",
		},
		{
			name:    "auth required without user",
			mutate:  func(f *form.Form, r *mockSubmissionRepository) { f.RequiresAuthentication = true },
			wantMsg: "authentication required",
		},
		{
			name: "quota reached",
			mutate: func(f *form.Form, r *mockSubmissionRepository) {
				f.MaxSubmissions = &cap
				r.count = 1
			},
			wantMsg: "maximum submissions reached",
		},
		{
			name: "duplicate user",
			mutate: func(f *form.Form, r *mockSubmissionRepository) {
				f.OneResponsePerUser = true
				r.duplicate = true
			},
			userID:  &uid,
			wantMsg: "you have already submitted this form",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := publishedForm()
			svc, _, repo, _ := newTestService(f)
			tt.mutate(f, repo)

			_, err := svc.Submit(context.Background(), f.PublicID, submission.SubmitInput{
				Data: map[string]any{"fld_name": "Ada"},
			}, tt.userID)

			assertRejected(t, err, platformerrors.ErrorTypeEligibility, tt.wantMsg)
			assert.Empty(t, repo.created)
		})
	}
}

func TestSubmitAnonymousNeverDeduplicated(t *testing.T) {
	f := publishedForm()
	f.AllowMultipleSubmissions = false
	svc, _, repo, _ := newTestService(f)
	repo.duplicate = true // would reject any authenticated user

	_, err := svc.Submit(context.Background(), f.PublicID, submission.SubmitInput{
		Data: map[string]any{"fld_name": "Anon"},
	}, nil)

	require.NoError(t, err)
}

func TestSubmitDuplicateUserSecondUserSucceeds(t *testing.T) {
	f := publishedForm()
	f.OneResponsePerUser = true
	svc, _, repo, _ := newTestService(f)

	u1 := uint(1)
	_, err := svc.Submit(context.Background(), f.PublicID, submission.SubmitInput{
		Data: map[string]any{"fld_name": "First"},
	}, &u1)
	require.NoError(t, err)

	repo.duplicate = true
	_, err = svc.Submit(context.Background(), f.PublicID, submission.SubmitInput{
		Data: map[string]any{"fld_name": "Again"},
	}, &u1)
	assertRejected(t, err, platformerrors.ErrorTypeEligibility, "you have already submitted this form")

	repo.duplicate = false
	u2 := uint(2)
	_, err = svc.Submit(context.Background(), f.PublicID, submission.SubmitInput{
		Data: map[string]any{"fld_name": "Second"},
	}, &u2)
	require.NoError(t, err)
}

func TestSubmitValidationFailureCarriesFieldErrors(t *testing.T) {
	f := publishedForm()
	svc, _, repo, _ := newTestService(f)

	_, err := svc.Submit(context.Background(), f.PublicID, submission.SubmitInput{
		Data: map[string]any{"fld_email": "not-an-email"},
	}, nil)

	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	var failed *submission.ValidationFailedError
	require.True(t, errors.As(err, &failed))
	assert.Contains(t, failed.Fields, "fld_name")
	assert.Contains(t, failed.Fields, "fld_email")
	assert.Empty(t, repo.created)
}

func TestSubmitHiddenRequiredFieldNotValidated(t *testing.T) {
	f := publishedForm()
	f.Fields = []form.Field{
		{PublicID: "hasCar", Label: "Do you have a car?", Type: form.FieldTypeRadio, Required: true},
		{
			PublicID: "carModel",
			Label:    "Car model",
			Type:     form.FieldTypeText,
			Required: true,
			ConditionalLogic: &form.ConditionalLogic{
				Logic: form.LogicAnd,
				Rules: []form.LogicRule{{FieldID: "hasCar", Operator: form.OpEquals, Value: "yes", Action: form.ActionShow}},
			},
		},
	}
	svc, _, _, _ := newTestService(f)

	sub, err := svc.Submit(context.Background(), f.PublicID, submission.SubmitInput{
		Data: map[string]any{"hasCar": "no"},
	}, nil)

	require.NoError(t, err, "hidden carModel must not be validated even though it is statically required")
	assert.NotNil(t, sub)
}

func TestSubmitRequireActionEnforced(t *testing.T) {
	f := publishedForm()
	f.Fields = []form.Field{
		{PublicID: "fld_type", Label: "Type", Type: form.FieldTypeRadio},
		{
			PublicID: "fld_details",
			Label:    "Details",
			Type:     form.FieldTypeText,
			ConditionalLogic: &form.ConditionalLogic{
				Logic: form.LogicAnd,
				Rules: []form.LogicRule{{FieldID: "fld_type", Operator: form.OpEquals, Value: "other", Action: form.ActionRequire}},
			},
		},
	}
	svc, _, _, _ := newTestService(f)

	_, err := svc.Submit(context.Background(), f.PublicID, submission.SubmitInput{
		Data: map[string]any{"fld_type": "other"},
	}, nil)

	require.Error(t, err)
	var failed *submission.ValidationFailedError
	require.True(t, errors.As(err, &failed))
	assert.Contains(t, failed.Fields, "fld_details")
}

func TestDeleteDecrementsCounter(t *testing.T) {
	f := publishedForm()
	svc, formRepo, _, _ := newTestService(f)

	sub, err := svc.Submit(context.Background(), f.PublicID, submission.SubmitInput{
		Data: map[string]any{"fld_name": "Ada"},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), f.PublicID, sub.PublicID, f.OwnerID))
	assert.Equal(t, 1, formRepo.decrementCalls)
}

func TestDeleteRejectsNonOwner(t *testing.T) {
	f := publishedForm()
	svc, _, _, _ := newTestService(f)

	sub, err := svc.Submit(context.Background(), f.PublicID, submission.SubmitInput{
		Data: map[string]any{"fld_name": "Ada"},
	}, nil)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), f.PublicID, sub.PublicID, f.OwnerID+1)
	assertRejected(t, err, platformerrors.ErrorTypeForbidden, "form does not belong to user")
}
