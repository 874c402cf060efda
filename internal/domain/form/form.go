package form

import (
	"context"
	"time"
)

// ===============================================
// Form Types
// ===============================================

type FormStatus string

const (
	FormStatusDraft     FormStatus = "DRAFT"
	FormStatusPublished FormStatus = "PUBLISHED"
	FormStatusClosed    FormStatus = "CLOSED"
	FormStatusArchived  FormStatus = "ARCHIVED"
)

// FieldType is the closed set of input kinds a form can carry. Validation
// dispatches on it with a single switch; unknown types validate as opaque
// values so older clients keep working.
type FieldType string

const (
	FieldTypeText      FieldType = "TEXT"
	FieldTypeTextarea  FieldType = "TEXTAREA"
	FieldTypeNumber    FieldType = "NUMBER"
	FieldTypeEmail     FieldType = "EMAIL"
	FieldTypePhone     FieldType = "PHONE"
	FieldTypeDate      FieldType = "DATE"
	FieldTypeDatetime  FieldType = "DATETIME"
	FieldTypeSelect    FieldType = "SELECT"
	FieldTypeRadio     FieldType = "RADIO"
	FieldTypeCheckbox  FieldType = "CHECKBOX"
	FieldTypeFile      FieldType = "FILE"
	FieldTypeRating    FieldType = "RATING"
	FieldTypeScale     FieldType = "SCALE"
	FieldTypeToggle    FieldType = "TOGGLE"
	FieldTypeMatrix    FieldType = "MATRIX"
	FieldTypeSignature FieldType = "SIGNATURE"
)

// IsAttachment reports whether values of this type are externalized to the
// blob store when submitted inline.
func (t FieldType) IsAttachment() bool {
	return t == FieldTypeFile || t == FieldTypeSignature
}

// ===============================================
// Conditional Logic
// ===============================================

type LogicCombinator string

const (
	LogicAnd LogicCombinator = "AND"
	LogicOr  LogicCombinator = "OR"
)

type LogicOperator string

const (
	OpEquals             LogicOperator = "EQUALS"
	OpNotEquals          LogicOperator = "NOT_EQUALS"
	OpContains           LogicOperator = "CONTAINS"
	OpNotContains        LogicOperator = "NOT_CONTAINS"
	OpGreaterThan        LogicOperator = "GREATER_THAN"
	OpLessThan           LogicOperator = "LESS_THAN"
	OpGreaterThanOrEqual LogicOperator = "GREATER_THAN_OR_EQUAL"
	OpLessThanOrEqual    LogicOperator = "LESS_THAN_OR_EQUAL"
	OpIsEmpty            LogicOperator = "IS_EMPTY"
	OpIsNotEmpty         LogicOperator = "IS_NOT_EMPTY"
)

type LogicAction string

const (
	ActionShow    LogicAction = "SHOW"
	ActionHide    LogicAction = "HIDE"
	ActionRequire LogicAction = "REQUIRE"
	ActionSkip    LogicAction = "SKIP"
)

// LogicRule is one comparison against another field's submitted answer.
type LogicRule struct {
	FieldID  string        `json:"fieldId"`
	Operator LogicOperator `json:"operator"`
	Value    any           `json:"value,omitempty"`
	Action   LogicAction   `json:"action"`
}

// ConditionalLogic is a field's visibility rule set. All rules contribute to
// the boolean condition (combined with Logic); the acted-upon outcome is taken
// from the FIRST rule's Action only.
type ConditionalLogic struct {
	Logic LogicCombinator `json:"logic"`
	Rules []LogicRule     `json:"rules"`
}

// ===============================================
// Validation Rules
// ===============================================

// ValidationRules holds the type-appropriate constraints an owner can attach
// to a field. All fields are optional; nil means "no constraint".
type ValidationRules struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Email     bool     `json:"email,omitempty"`
	Phone     bool     `json:"phone,omitempty"`
	URL       bool     `json:"url,omitempty"`
	MinDate   string   `json:"minDate,omitempty"`
	MaxDate   string   `json:"maxDate,omitempty"`
}

// ===============================================
// Form Structure
// ===============================================

type Field struct {
	ID               uint              `json:"-"`
	PublicID         string            `json:"id"`
	FormID           uint              `json:"-"`
	StepID           *uint             `json:"-"`
	StepPublicID     *string           `json:"stepId,omitempty"`
	Type             FieldType         `json:"type"`
	Label            string            `json:"label"`
	Order            int               `json:"order"`
	Required         bool              `json:"required"`
	Options          []string          `json:"options,omitempty"`
	ValidationRules  *ValidationRules  `json:"validationRules,omitempty"`
	ConditionalLogic *ConditionalLogic `json:"conditionalLogic,omitempty"`

	// Attachment constraints, meaningful for FILE/SIGNATURE fields.
	AllowedFileTypes []string `json:"allowedFileTypes,omitempty"`
	MaxFileSize      int64    `json:"maxFileSize,omitempty"`
	MaxFiles         int      `json:"maxFiles,omitempty"`
}

type Step struct {
	ID       uint    `json:"-"`
	PublicID string  `json:"id"`
	FormID   uint    `json:"-"`
	Title    string  `json:"title"`
	Order    int     `json:"order"`
	Fields   []Field `json:"fields,omitempty"`
}

type Form struct {
	ID          uint       `json:"-"`
	PublicID    string     `json:"id"`
	OwnerID     uint       `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Slug        string     `json:"slug"`
	Status      FormStatus `json:"status"`

	OpensAt  *time.Time `json:"opensAt,omitempty"`
	ClosesAt *time.Time `json:"closesAt,omitempty"`

	RequiresAuthentication   bool `json:"requiresAuthentication"`
	AllowMultipleSubmissions bool `json:"allowMultipleSubmissions"`
	OneResponsePerUser       bool `json:"oneResponsePerUser"`
	MaxSubmissions           *int `json:"maxSubmissions,omitempty"`
	IsMultiStep              bool `json:"isMultiStep"`

	WebhookEnabled bool   `json:"webhookEnabled"`
	WebhookURL     string `json:"webhookUrl,omitempty"`
	// WebhookSecret is held decrypted in memory; the repository encrypts it
	// at rest and never returns it over the public read model.
	WebhookSecret string `json:"-"`

	ViewCount       int `json:"viewCount"`
	SubmissionCount int `json:"submissionCount"`

	Fields []Field `json:"fields,omitempty"`
	Steps  []Step  `json:"steps,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsOpenAt reports whether the form's time window admits now.
func (f *Form) IsOpenAt(now time.Time) bool {
	if f.OpensAt != nil && now.Before(*f.OpensAt) {
		return false
	}
	if f.ClosesAt != nil && now.After(*f.ClosesAt) {
		return false
	}
	return true
}

// FieldByPublicID resolves a field by its public identifier.
func (f *Form) FieldByPublicID(publicID string) (*Field, bool) {
	for i := range f.Fields {
		if f.Fields[i].PublicID == publicID {
			return &f.Fields[i], true
		}
	}
	return nil, false
}

// ===============================================
// Form Repository
// ===============================================

type Filter struct {
	ID       *uint
	PublicID *string
	OwnerID  *uint
	Slug     *string
	Status   *FormStatus
}

type Pagination struct {
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, form *Form) error
	FindByFilter(ctx context.Context, filter Filter, pagination *Pagination) ([]*Form, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	FindByID(ctx context.Context, id uint) (*Form, error)
	FindByPublicID(ctx context.Context, publicID string) (*Form, error)
	FindBySlug(ctx context.Context, slug string) (*Form, error)
	// FindWithFields loads the form together with its ordered fields and steps.
	FindWithFields(ctx context.Context, publicID string) (*Form, error)
	Update(ctx context.Context, form *Form) error
	Delete(ctx context.Context, id uint) error

	SlugExists(ctx context.Context, slug string) (bool, error)
	UpdateStatus(ctx context.Context, id uint, status FormStatus) error
	IncrementViewCount(ctx context.Context, id uint) error
	IncrementSubmissionCount(ctx context.Context, id uint) error
	DecrementSubmissionCount(ctx context.Context, id uint) error

	// ReplaceSteps deletes the form's steps and fields and recreates them
	// from the given slice in one transaction, assigning fresh identifiers.
	ReplaceSteps(ctx context.Context, formID uint, steps []Step) ([]Step, error)

	// FindExpiredPublished returns published forms whose close time has passed.
	FindExpiredPublished(ctx context.Context, now time.Time) ([]*Form, error)
}
