package submissionrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/formgrid/forms-api/internal/domain/submission"
	"github.com/formgrid/forms-api/internal/infrastructure/database/dbschema"
	"github.com/formgrid/forms-api/internal/infrastructure/database/transaction"
	"github.com/formgrid/forms-api/internal/utils/platformerrors"
)

// SubmissionGormRepository implements submission.Repository using GORM
type SubmissionGormRepository struct {
	db *transaction.Database
}

var _ submission.Repository = (*SubmissionGormRepository)(nil)

// NewSubmissionGormRepository creates a new submission repository
func NewSubmissionGormRepository(db *transaction.Database) submission.Repository {
	return &SubmissionGormRepository{db: db}
}

func (repo *SubmissionGormRepository) getDB(ctx context.Context) *gorm.DB {
	return repo.db.GetTx(ctx).WithContext(ctx)
}

// Create implements submission.Repository.
func (repo *SubmissionGormRepository) Create(ctx context.Context, sub *submission.Submission) error {
	model, err := dbschema.NewSchemaSubmission(sub)
	if err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to encode submission", "39eafb0c-1d2e-43f4-e5a6-e1f203142536")
	}
	if err := repo.getDB(ctx).Create(model).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to create submission", "4afb0c1d-2e3f-4405-f6b7-f20314253647")
	}
	sub.ID = model.ID
	sub.CreatedAt = model.CreatedAt
	return nil
}

// FindByPublicID implements submission.Repository.
func (repo *SubmissionGormRepository) FindByPublicID(ctx context.Context, publicID string) (*submission.Submission, error) {
	var model dbschema.Submission
	if err := repo.getDB(ctx).Where("public_id = ?", publicID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "submission not found", err, "5b0c1d2e-3f40-4516-07c8-031425364758")
		}
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to find submission", "6c1d2e3f-4051-4627-18d9-142536475869")
	}
	return repo.toDomain(ctx, &model)
}

// ListByForm implements submission.Repository.
func (repo *SubmissionGormRepository) ListByForm(ctx context.Context, formID uint, p *submission.Pagination) ([]*submission.Submission, error) {
	db := repo.getDB(ctx).Where("form_id = ?", formID).Order("created_at DESC")
	if p != nil {
		if p.Limit > 0 {
			db = db.Limit(p.Limit)
		}
		if p.Offset > 0 {
			db = db.Offset(p.Offset)
		}
	}

	var rows []dbschema.Submission
	if err := db.Find(&rows).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to list submissions", "7d2e3f40-5162-4738-29ea-25364758697a")
	}

	result := make([]*submission.Submission, 0, len(rows))
	for i := range rows {
		sub, err := repo.toDomain(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, nil
}

// CountByForm implements submission.Repository.
func (repo *SubmissionGormRepository) CountByForm(ctx context.Context, formID uint) (int64, error) {
	var count int64
	if err := repo.getDB(ctx).Model(&dbschema.Submission{}).Where("form_id = ?", formID).Count(&count).Error; err != nil {
		return 0, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to count submissions", "8e3f4051-6273-4849-3afb-364758697a8b")
	}
	return count, nil
}

// ExistsByFormAndUser implements submission.Repository.
func (repo *SubmissionGormRepository) ExistsByFormAndUser(ctx context.Context, formID uint, userID uint) (bool, error) {
	var count int64
	err := repo.getDB(ctx).Model(&dbschema.Submission{}).
		Where("form_id = ? AND user_id = ?", formID, userID).
		Count(&count).Error
	if err != nil {
		return false, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to check prior submission", "9f405162-7384-495a-4b0c-4758697a8b9c")
	}
	return count > 0, nil
}

// Delete implements submission.Repository.
func (repo *SubmissionGormRepository) Delete(ctx context.Context, id uint) error {
	if err := repo.getDB(ctx).Where("id = ?", id).Delete(&dbschema.Submission{}).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to delete submission", "a0516273-8495-4a6b-5c1d-58697a8b9cad")
	}
	return nil
}

func (repo *SubmissionGormRepository) toDomain(ctx context.Context, model *dbschema.Submission) (*submission.Submission, error) {
	sub, err := model.EtoD()
	if err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to decode submission", "b1627384-95a6-4b7c-6d2e-697a8b9cadbe")
	}
	return sub, nil
}
