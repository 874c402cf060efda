package userrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/formgrid/forms-api/internal/domain/user"
	"github.com/formgrid/forms-api/internal/infrastructure/database/dbschema"
	"github.com/formgrid/forms-api/internal/infrastructure/database/transaction"
	"github.com/formgrid/forms-api/internal/utils/platformerrors"
)

// UserGormRepository implements user.Repository using GORM
type UserGormRepository struct {
	db *transaction.Database
}

var _ user.Repository = (*UserGormRepository)(nil)

// NewUserGormRepository creates a new user repository
func NewUserGormRepository(db *transaction.Database) user.Repository {
	return &UserGormRepository{db: db}
}

func (repo *UserGormRepository) getDB(ctx context.Context) *gorm.DB {
	return repo.db.GetTx(ctx).WithContext(ctx)
}

// Create implements user.Repository.
func (repo *UserGormRepository) Create(ctx context.Context, u *user.User) error {
	model := dbschema.NewSchemaUser(u)
	if err := repo.getDB(ctx).Create(model).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to create user", "c2738495-a6b7-4c8d-7e3f-7a8b9cadbecf")
	}
	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID implements user.Repository.
func (repo *UserGormRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model dbschema.User
	if err := repo.getDB(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, repo.notFoundOr(ctx, err, "failed to find user by ID", "d38495a6-b7c8-4d9e-8f40-8b9cadbecfd0")
	}
	return model.EtoD(), nil
}

// FindByPublicID implements user.Repository.
func (repo *UserGormRepository) FindByPublicID(ctx context.Context, publicID string) (*user.User, error) {
	var model dbschema.User
	if err := repo.getDB(ctx).Where("public_id = ?", publicID).First(&model).Error; err != nil {
		return nil, repo.notFoundOr(ctx, err, "failed to find user by public ID", "e495a6b7-c8d9-4eaf-9051-9cadbecfd0e1")
	}
	return model.EtoD(), nil
}

// FindBySubject implements user.Repository.
func (repo *UserGormRepository) FindBySubject(ctx context.Context, subject string) (*user.User, error) {
	var model dbschema.User
	if err := repo.getDB(ctx).Where("subject = ?", subject).First(&model).Error; err != nil {
		return nil, repo.notFoundOr(ctx, err, "failed to find user by subject", "f5a6b7c8-d9ea-4fb0-a162-adbecfd0e1f2")
	}
	return model.EtoD(), nil
}

// Update implements user.Repository.
func (repo *UserGormRepository) Update(ctx context.Context, u *user.User) error {
	model := dbschema.NewSchemaUser(u)
	if err := repo.getDB(ctx).Model(&dbschema.User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"email": model.Email,
		"name":  model.Name,
	}).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to update user", "06b7c8d9-eafb-40c1-b273-becfd0e1f204")
	}
	return nil
}

func (repo *UserGormRepository) notFoundOr(ctx context.Context, err error, message, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "user not found", err, code)
	}
	return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, message, code)
}
