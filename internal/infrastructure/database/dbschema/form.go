package dbschema

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/formgrid/forms-api/internal/domain/form"
	"github.com/formgrid/forms-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Form{}, FormStep{}, FormField{})
}

// Form represents the persisted form schema.
type Form struct {
	BaseModel
	PublicID    string `gorm:"column:public_id;size:50;not null;uniqueIndex"`
	OwnerID     uint   `gorm:"column:owner_id;not null;index"`
	Title       string `gorm:"column:title;size:255;not null"`
	Description string `gorm:"column:description;type:text"`
	Slug        string `gorm:"column:slug;size:100;not null;uniqueIndex"`
	Status      string `gorm:"column:status;size:20;not null;default:'DRAFT';index"`

	OpensAt  *time.Time `gorm:"column:opens_at"`
	ClosesAt *time.Time `gorm:"column:closes_at;index"`

	RequiresAuthentication   bool `gorm:"column:requires_authentication;default:false"`
	AllowMultipleSubmissions bool `gorm:"column:allow_multiple_submissions;default:true"`
	OneResponsePerUser       bool `gorm:"column:one_response_per_user;default:false"`
	MaxSubmissions           *int `gorm:"column:max_submissions"`
	IsMultiStep              bool `gorm:"column:is_multi_step;default:false"`

	WebhookEnabled bool   `gorm:"column:webhook_enabled;default:false"`
	WebhookURL     string `gorm:"column:webhook_url;size:2048"`
	// WebhookSecret is AES-GCM encrypted by the repository before it lands here.
	WebhookSecret string `gorm:"column:webhook_secret;size:1024"`

	ViewCount       int `gorm:"column:view_count;not null;default:0"`
	SubmissionCount int `gorm:"column:submission_count;not null;default:0"`

	Steps  []FormStep  `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE"`
	Fields []FormField `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE"`
}

func (Form) TableName() string {
	return database.TablePrefix + "forms"
}

// FormStep represents one page of a multi-step form.
type FormStep struct {
	BaseModel
	PublicID string `gorm:"column:public_id;size:50;not null;uniqueIndex"`
	FormID   uint   `gorm:"column:form_id;not null;index"`
	Title    string `gorm:"column:title;size:255;not null"`
	Order    int    `gorm:"column:display_order;not null"`

	Fields []FormField `gorm:"foreignKey:StepID"`
}

func (FormStep) TableName() string {
	return database.TablePrefix + "form_steps"
}

// FormField represents one input of a form.
type FormField struct {
	BaseModel
	PublicID string `gorm:"column:public_id;size:50;not null;uniqueIndex"`
	FormID   uint   `gorm:"column:form_id;not null;index:ix_form_fields_form_order"`
	StepID   *uint  `gorm:"column:step_id;index"`
	Type     string `gorm:"column:type;size:30;not null"`
	Label    string `gorm:"column:label;size:500;not null"`
	Order    int    `gorm:"column:display_order;not null;index:ix_form_fields_form_order"`
	Required bool   `gorm:"column:required;default:false"`

	Options          datatypes.JSON `gorm:"column:options;type:jsonb"`
	ValidationRules  datatypes.JSON `gorm:"column:validation_rules;type:jsonb"`
	ConditionalLogic datatypes.JSON `gorm:"column:conditional_logic;type:jsonb"`
	AllowedFileTypes datatypes.JSON `gorm:"column:allowed_file_types;type:jsonb"`
	MaxFileSize      int64          `gorm:"column:max_file_size;default:0"`
	MaxFiles         int            `gorm:"column:max_files;default:0"`
}

func (FormField) TableName() string {
	return database.TablePrefix + "form_fields"
}

// NewSchemaForm converts a domain form to its schema row (steps and fields
// are persisted separately).
func NewSchemaForm(f *form.Form) *Form {
	if f == nil {
		return nil
	}
	return &Form{
		BaseModel: BaseModel{
			ID:        f.ID,
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
		},
		PublicID:                 f.PublicID,
		OwnerID:                  f.OwnerID,
		Title:                    f.Title,
		Description:              f.Description,
		Slug:                     f.Slug,
		Status:                   string(f.Status),
		OpensAt:                  f.OpensAt,
		ClosesAt:                 f.ClosesAt,
		RequiresAuthentication:   f.RequiresAuthentication,
		AllowMultipleSubmissions: f.AllowMultipleSubmissions,
		OneResponsePerUser:       f.OneResponsePerUser,
		MaxSubmissions:           f.MaxSubmissions,
		IsMultiStep:              f.IsMultiStep,
		WebhookEnabled:           f.WebhookEnabled,
		WebhookURL:               f.WebhookURL,
		WebhookSecret:            f.WebhookSecret,
		ViewCount:                f.ViewCount,
		SubmissionCount:          f.SubmissionCount,
	}
}

// EtoD converts a schema form back to the domain representation.
func (f *Form) EtoD() (*form.Form, error) {
	if f == nil {
		return nil, nil
	}

	out := &form.Form{
		ID:                       f.ID,
		PublicID:                 f.PublicID,
		OwnerID:                  f.OwnerID,
		Title:                    f.Title,
		Description:              f.Description,
		Slug:                     f.Slug,
		Status:                   form.FormStatus(f.Status),
		OpensAt:                  f.OpensAt,
		ClosesAt:                 f.ClosesAt,
		RequiresAuthentication:   f.RequiresAuthentication,
		AllowMultipleSubmissions: f.AllowMultipleSubmissions,
		OneResponsePerUser:       f.OneResponsePerUser,
		MaxSubmissions:           f.MaxSubmissions,
		IsMultiStep:              f.IsMultiStep,
		WebhookEnabled:           f.WebhookEnabled,
		WebhookURL:               f.WebhookURL,
		WebhookSecret:            f.WebhookSecret,
		ViewCount:                f.ViewCount,
		SubmissionCount:          f.SubmissionCount,
		CreatedAt:                f.CreatedAt,
		UpdatedAt:                f.UpdatedAt,
	}

	stepPublicIDs := make(map[uint]string, len(f.Steps))
	for _, step := range f.Steps {
		stepPublicIDs[step.ID] = step.PublicID
		out.Steps = append(out.Steps, form.Step{
			ID:       step.ID,
			PublicID: step.PublicID,
			FormID:   step.FormID,
			Title:    step.Title,
			Order:    step.Order,
		})
	}

	for _, field := range f.Fields {
		domainField, err := field.EtoD()
		if err != nil {
			return nil, err
		}
		if field.StepID != nil {
			if publicID, ok := stepPublicIDs[*field.StepID]; ok {
				domainField.StepPublicID = &publicID
			}
		}
		out.Fields = append(out.Fields, *domainField)
	}

	return out, nil
}

// NewSchemaFormField converts a domain field to its schema row.
func NewSchemaFormField(f *form.Field) (*FormField, error) {
	if f == nil {
		return nil, nil
	}

	row := &FormField{
		BaseModel:   BaseModel{ID: f.ID},
		PublicID:    f.PublicID,
		FormID:      f.FormID,
		StepID:      f.StepID,
		Type:        string(f.Type),
		Label:       f.Label,
		Order:       f.Order,
		Required:    f.Required,
		MaxFileSize: f.MaxFileSize,
		MaxFiles:    f.MaxFiles,
	}

	var err error
	if row.Options, err = marshalJSONColumn(f.Options); err != nil {
		return nil, err
	}
	if row.ValidationRules, err = marshalJSONColumn(f.ValidationRules); err != nil {
		return nil, err
	}
	if row.ConditionalLogic, err = marshalJSONColumn(f.ConditionalLogic); err != nil {
		return nil, err
	}
	if row.AllowedFileTypes, err = marshalJSONColumn(f.AllowedFileTypes); err != nil {
		return nil, err
	}
	return row, nil
}

// EtoD converts a schema field back to the domain representation.
func (f *FormField) EtoD() (*form.Field, error) {
	out := &form.Field{
		ID:          f.ID,
		PublicID:    f.PublicID,
		FormID:      f.FormID,
		StepID:      f.StepID,
		Type:        form.FieldType(f.Type),
		Label:       f.Label,
		Order:       f.Order,
		Required:    f.Required,
		MaxFileSize: f.MaxFileSize,
		MaxFiles:    f.MaxFiles,
	}

	if len(f.Options) > 0 {
		if err := json.Unmarshal(f.Options, &out.Options); err != nil {
			return nil, err
		}
	}
	if len(f.ValidationRules) > 0 {
		if err := json.Unmarshal(f.ValidationRules, &out.ValidationRules); err != nil {
			return nil, err
		}
	}
	if len(f.ConditionalLogic) > 0 {
		if err := json.Unmarshal(f.ConditionalLogic, &out.ConditionalLogic); err != nil {
			return nil, err
		}
	}
	if len(f.AllowedFileTypes) > 0 {
		if err := json.Unmarshal(f.AllowedFileTypes, &out.AllowedFileTypes); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func marshalJSONColumn(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return datatypes.JSON(data), nil
}
