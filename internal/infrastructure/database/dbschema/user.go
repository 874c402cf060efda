package dbschema

import (
	"github.com/formgrid/forms-api/internal/domain/user"
	"github.com/formgrid/forms-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(User{})
}

// User represents the persisted form-owner identity.
type User struct {
	BaseModel
	PublicID string  `gorm:"column:public_id;size:50;not null;uniqueIndex"`
	Subject  string  `gorm:"column:subject;size:255;not null;uniqueIndex"`
	Email    *string `gorm:"column:email;size:320"`
	Name     *string `gorm:"column:name;size:255"`
}

func (User) TableName() string {
	return database.TablePrefix + "users"
}

// NewSchemaUser converts a domain user into a schema instance.
func NewSchemaUser(u *user.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		BaseModel: BaseModel{
			ID:        u.ID,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		},
		PublicID: u.PublicID,
		Subject:  u.Subject,
		Email:    u.Email,
		Name:     u.Name,
	}
}

// EtoD converts a schema user back to the domain representation.
func (u *User) EtoD() *user.User {
	if u == nil {
		return nil
	}
	return &user.User{
		ID:        u.ID,
		PublicID:  u.PublicID,
		Subject:   u.Subject,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
