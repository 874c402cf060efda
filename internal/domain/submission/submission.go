package submission

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Submission is one accepted response to a form. Immutable after creation
// except for owner-initiated deletion.
type Submission struct {
	ID       uint   `json:"-"`
	PublicID string `json:"id"`
	FormID   uint   `json:"-"`
	UserID   *uint  `json:"-"`

	Data map[string]any `json:"data"`

	IPAddress      string `json:"-"`
	UserAgent      string `json:"-"`
	TimeToComplete *int   `json:"timeToComplete,omitempty"`

	CompletedAt time.Time `json:"completedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SubmitInput is the client-supplied portion of a submission.
type SubmitInput struct {
	Data           map[string]any
	IPAddress      string
	UserAgent      string
	TimeToComplete *int
}

// AttachmentDescriptor replaces an inline file payload once it has been
// persisted to the blob store.
type AttachmentDescriptor struct {
	Type        string `json:"type"`
	FileID      string `json:"fileId"`
	FormID      string `json:"formId"`
	WebViewLink string `json:"webViewLink,omitempty"`
	SecureURL   string `json:"secureUrl,omitempty"`
}

const descriptorType = "secure_file"

// isDescriptorShaped reports whether a submitted value is already an
// externalized reference and must pass through unchanged.
func isDescriptorShaped(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, key := range []string{"fileId", "url", "secureUrl", "webViewLink"} {
		if _, present := m[key]; present {
			return true
		}
	}
	return false
}

// isInlinePayload reports whether a string value carries attachment bytes
// inline as a data URI or bare base64.
func isInlinePayload(v any) bool {
	s, ok := v.(string)
	if !ok || s == "" {
		return false
	}
	if strings.HasPrefix(s, "data:") {
		return true
	}
	// Bare base64 of any real file is long; short strings are treated as
	// opaque references (e.g. externally hosted URLs).
	return len(s) > 256 && !strings.Contains(s, "://")
}

// Filter narrows submission lookups.
type Filter struct {
	FormID   *uint
	UserID   *uint
	PublicID *string
}

// Pagination mirrors the form package's offset pagination.
type Pagination struct {
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, sub *Submission) error
	FindByPublicID(ctx context.Context, publicID string) (*Submission, error)
	ListByForm(ctx context.Context, formID uint, p *Pagination) ([]*Submission, error)
	CountByForm(ctx context.Context, formID uint) (int64, error)
	// ExistsByFormAndUser backs the duplicate-submission gate.
	ExistsByFormAndUser(ctx context.Context, formID uint, userID uint) (bool, error)
	Delete(ctx context.Context, id uint) error
}

// ValidationFailedError carries the per-field validation messages to the
// transport layer. It travels as the cause of a platform validation error.
type ValidationFailedError struct {
	Fields map[string][]string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("submission failed validation on %d field(s)", len(e.Fields))
}
