package user

import (
	"context"
	"time"

	"github.com/formgrid/forms-api/internal/utils/idgen"
	"github.com/formgrid/forms-api/internal/utils/platformerrors"
)

// User is a form owner. Identity comes from a verified bearer token; this
// service never issues credentials.
type User struct {
	ID       uint   `json:"-"`
	PublicID string `json:"id"`
	// Subject is the stable identifier from the token's `sub` claim.
	Subject string  `json:"-"`
	Email   *string `json:"email,omitempty"`
	Name    *string `json:"name,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByPublicID(ctx context.Context, publicID string) (*User, error)
	FindBySubject(ctx context.Context, subject string) (*User, error)
	Update(ctx context.Context, u *User) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ResolveSubject returns the user for a verified token subject, creating the
// row on first sight and refreshing profile claims on subsequent logins.
func (s *Service) ResolveSubject(ctx context.Context, subject string, email, name *string) (*User, error) {
	if subject == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "token subject is required", nil, "8f9a0b1c-2d3e-4fa0-9bfc-6d7e8f9a0b1c")
	}

	existing, err := s.repo.FindBySubject(ctx, subject)
	if err == nil {
		if claimsChanged(existing, email, name) {
			existing.Email = email
			existing.Name = name
			if err := s.repo.Update(ctx, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, err
	}

	publicID, err := idgen.GenerateSecureID("user", 24)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate ID", err, "9a0b1c2d-3e4f-4ab1-8cad-7e8f9a0b1c2d")
	}

	u := &User{
		PublicID: publicID,
		Subject:  subject,
		Email:    email,
		Name:     name,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID loads a user by internal ID.
func (s *Service) GetByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func claimsChanged(u *User, email, name *string) bool {
	return !strPtrEqual(u.Email, email) || !strPtrEqual(u.Name, name)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
