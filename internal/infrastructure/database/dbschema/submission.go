package dbschema

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/formgrid/forms-api/internal/domain/submission"
	"github.com/formgrid/forms-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Submission{})
}

// Submission represents one accepted form response.
type Submission struct {
	BaseModel
	PublicID string `gorm:"column:public_id;size:50;not null;uniqueIndex"`
	FormID   uint   `gorm:"column:form_id;not null;index:ix_submissions_form_user"`
	UserID   *uint  `gorm:"column:user_id;index:ix_submissions_form_user"`

	Data datatypes.JSON `gorm:"column:data;type:jsonb;not null"`

	IPAddress      string `gorm:"column:ip_address;size:64"`
	UserAgent      string `gorm:"column:user_agent;size:512"`
	TimeToComplete *int   `gorm:"column:time_to_complete"`

	CompletedAt time.Time `gorm:"column:completed_at;not null"`
}

func (Submission) TableName() string {
	return database.TablePrefix + "submissions"
}

// NewSchemaSubmission converts a domain submission to its schema row.
func NewSchemaSubmission(s *submission.Submission) (*Submission, error) {
	if s == nil {
		return nil, nil
	}

	data, err := json.Marshal(s.Data)
	if err != nil {
		return nil, err
	}

	return &Submission{
		BaseModel: BaseModel{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
		},
		PublicID:       s.PublicID,
		FormID:         s.FormID,
		UserID:         s.UserID,
		Data:           datatypes.JSON(data),
		IPAddress:      s.IPAddress,
		UserAgent:      s.UserAgent,
		TimeToComplete: s.TimeToComplete,
		CompletedAt:    s.CompletedAt,
	}, nil
}

// EtoD converts a schema submission back to the domain representation.
func (s *Submission) EtoD() (*submission.Submission, error) {
	if s == nil {
		return nil, nil
	}

	var data map[string]any
	if len(s.Data) > 0 {
		if err := json.Unmarshal(s.Data, &data); err != nil {
			return nil, err
		}
	}

	return &submission.Submission{
		ID:             s.ID,
		PublicID:       s.PublicID,
		FormID:         s.FormID,
		UserID:         s.UserID,
		Data:           data,
		IPAddress:      s.IPAddress,
		UserAgent:      s.UserAgent,
		TimeToComplete: s.TimeToComplete,
		CompletedAt:    s.CompletedAt,
		CreatedAt:      s.CreatedAt,
	}, nil
}
