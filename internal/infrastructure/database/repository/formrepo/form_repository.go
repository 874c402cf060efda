package formrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/formgrid/forms-api/internal/domain/form"
	"github.com/formgrid/forms-api/internal/infrastructure/database/dbschema"
	"github.com/formgrid/forms-api/internal/infrastructure/database/transaction"
	"github.com/formgrid/forms-api/internal/utils/crypto"
	"github.com/formgrid/forms-api/internal/utils/platformerrors"
)

// FormGormRepository implements form.Repository using GORM
type FormGormRepository struct {
	db *transaction.Database
	// secretKey encrypts webhook secrets at rest.
	secretKey string
}

var _ form.Repository = (*FormGormRepository)(nil)

// NewFormGormRepository creates a new form repository
func NewFormGormRepository(db *transaction.Database, secretKey string) form.Repository {
	return &FormGormRepository{db: db, secretKey: secretKey}
}

func (repo *FormGormRepository) getDB(ctx context.Context) *gorm.DB {
	return repo.db.GetTx(ctx).WithContext(ctx)
}

// Create implements form.Repository.
func (repo *FormGormRepository) Create(ctx context.Context, f *form.Form) error {
	model := dbschema.NewSchemaForm(f)
	if err := repo.sealSecret(ctx, model); err != nil {
		return err
	}
	if err := repo.getDB(ctx).Create(model).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to create form", "a0b1c2d3-e4f5-4a6b-8c7d-9e0f1a2b3c4d")
	}
	f.ID = model.ID
	f.CreatedAt = model.CreatedAt
	f.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByFilter implements form.Repository.
func (repo *FormGormRepository) FindByFilter(ctx context.Context, filter form.Filter, pagination *form.Pagination) ([]*form.Form, error) {
	db := repo.applyFilter(repo.getDB(ctx), filter)
	if pagination != nil {
		if pagination.Limit > 0 {
			db = db.Limit(pagination.Limit)
		}
		if pagination.Offset > 0 {
			db = db.Offset(pagination.Offset)
		}
	}

	var rows []dbschema.Form
	if err := db.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to find forms", "b1c2d3e4-f5a6-4b7c-8d8e-0f1a2b3c4d5e")
	}

	result := make([]*form.Form, 0, len(rows))
	for i := range rows {
		domainForm, err := repo.toDomain(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, domainForm)
	}
	return result, nil
}

// Count implements form.Repository.
func (repo *FormGormRepository) Count(ctx context.Context, filter form.Filter) (int64, error) {
	db := repo.applyFilter(repo.getDB(ctx).Model(&dbschema.Form{}), filter)
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to count forms", "c2d3e4f5-a6b7-4c8d-9e9f-1a2b3c4d5e6f")
	}
	return count, nil
}

// FindByID implements form.Repository.
func (repo *FormGormRepository) FindByID(ctx context.Context, id uint) (*form.Form, error) {
	var model dbschema.Form
	if err := repo.getDB(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, repo.notFoundOr(ctx, err, "failed to find form by ID", "d3e4f5a6-b7c8-4d9e-8fa0-2b3c4d5e6f70")
	}
	return repo.toDomain(ctx, &model)
}

// FindByPublicID implements form.Repository.
func (repo *FormGormRepository) FindByPublicID(ctx context.Context, publicID string) (*form.Form, error) {
	var model dbschema.Form
	if err := repo.getDB(ctx).Where("public_id = ?", publicID).First(&model).Error; err != nil {
		return nil, repo.notFoundOr(ctx, err, "failed to find form by public ID", "e4f5a6b7-c8d9-4eaf-90b1-3c4d5e6f7081")
	}
	return repo.toDomain(ctx, &model)
}

// FindBySlug implements form.Repository.
func (repo *FormGormRepository) FindBySlug(ctx context.Context, slug string) (*form.Form, error) {
	var model dbschema.Form
	err := repo.getDB(ctx).
		Preload("Steps", orderSteps).
		Preload("Fields", orderFields).
		Where("slug = ?", slug).
		First(&model).Error
	if err != nil {
		return nil, repo.notFoundOr(ctx, err, "failed to find form by slug", "f5a6b7c8-d9ea-4fb0-81c2-4d5e6f708192")
	}
	return repo.toDomain(ctx, &model)
}

// FindWithFields implements form.Repository.
func (repo *FormGormRepository) FindWithFields(ctx context.Context, publicID string) (*form.Form, error) {
	var model dbschema.Form
	err := repo.getDB(ctx).
		Preload("Steps", orderSteps).
		Preload("Fields", orderFields).
		Where("public_id = ?", publicID).
		First(&model).Error
	if err != nil {
		return nil, repo.notFoundOr(ctx, err, "failed to find form with fields", "06b7c8d9-eafb-40c1-92d3-5e6f70819203")
	}
	return repo.toDomain(ctx, &model)
}

// Update implements form.Repository.
func (repo *FormGormRepository) Update(ctx context.Context, f *form.Form) error {
	model := dbschema.NewSchemaForm(f)
	if err := repo.sealSecret(ctx, model); err != nil {
		return err
	}
	// A column map so zero values overwrite.
	err := repo.getDB(ctx).Model(&dbschema.Form{}).
		Where("id = ?", f.ID).
		Updates(map[string]any{
			"title":                      model.Title,
			"description":                model.Description,
			"opens_at":                   model.OpensAt,
			"closes_at":                  model.ClosesAt,
			"requires_authentication":    model.RequiresAuthentication,
			"allow_multiple_submissions": model.AllowMultipleSubmissions,
			"one_response_per_user":      model.OneResponsePerUser,
			"max_submissions":            model.MaxSubmissions,
			"is_multi_step":              model.IsMultiStep,
			"webhook_enabled":            model.WebhookEnabled,
			"webhook_url":                model.WebhookURL,
			"webhook_secret":             model.WebhookSecret,
			"updated_at":                 time.Now(),
		}).Error
	if err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to update form", "17c8d9ea-fb0c-41d2-83e4-6f7081920314")
	}
	return nil
}

// Delete implements form.Repository.
func (repo *FormGormRepository) Delete(ctx context.Context, id uint) error {
	return repo.db.Transaction(ctx, func(ctx context.Context) error {
		db := repo.getDB(ctx)
		if err := db.Where("form_id = ?", id).Delete(&dbschema.Submission{}).Error; err != nil {
			return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to delete form submissions", "28d9eafb-0c1d-42e3-94f5-708192031425")
		}
		if err := db.Where("form_id = ?", id).Delete(&dbschema.FormField{}).Error; err != nil {
			return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to delete form fields", "39eafb0c-1d2e-43f4-85a6-819203142536")
		}
		if err := db.Where("form_id = ?", id).Delete(&dbschema.FormStep{}).Error; err != nil {
			return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to delete form steps", "4afb0c1d-2e3f-4405-96b7-920314253647")
		}
		if err := db.Where("id = ?", id).Delete(&dbschema.Form{}).Error; err != nil {
			return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to delete form", "5b0c1d2e-3f40-4516-87c8-031425364758")
		}
		return nil
	})
}

// SlugExists implements form.Repository.
func (repo *FormGormRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := repo.getDB(ctx).Model(&dbschema.Form{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to check slug", "6c1d2e3f-4051-4627-98d9-142536475869")
	}
	return count > 0, nil
}

// UpdateStatus implements form.Repository.
func (repo *FormGormRepository) UpdateStatus(ctx context.Context, id uint, status form.FormStatus) error {
	err := repo.getDB(ctx).Model(&dbschema.Form{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now()}).Error
	if err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to update form status", "7d2e3f40-5162-4738-89ea-25364758697a")
	}
	return nil
}

// IncrementViewCount implements form.Repository.
func (repo *FormGormRepository) IncrementViewCount(ctx context.Context, id uint) error {
	return repo.adjustCounter(ctx, id, "view_count", 1, "8e3f4051-6273-4849-9afb-364758697a8b")
}

// IncrementSubmissionCount implements form.Repository.
func (repo *FormGormRepository) IncrementSubmissionCount(ctx context.Context, id uint) error {
	return repo.adjustCounter(ctx, id, "submission_count", 1, "9f405162-7384-495a-8b0c-4758697a8b9c")
}

// DecrementSubmissionCount implements form.Repository.
func (repo *FormGormRepository) DecrementSubmissionCount(ctx context.Context, id uint) error {
	return repo.adjustCounter(ctx, id, "submission_count", -1, "a0516273-8495-4a6b-9c1d-58697a8b9cad")
}

func (repo *FormGormRepository) adjustCounter(ctx context.Context, id uint, column string, delta int, code string) error {
	err := repo.getDB(ctx).Model(&dbschema.Form{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
	if err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to adjust "+column, code)
	}
	return nil
}

// ReplaceSteps implements form.Repository. The whole replace runs in one
// transaction so a failure leaves the previous structure intact.
func (repo *FormGormRepository) ReplaceSteps(ctx context.Context, formID uint, steps []form.Step) ([]form.Step, error) {
	var out []form.Step

	err := repo.db.Transaction(ctx, func(ctx context.Context) error {
		db := repo.getDB(ctx)

		if err := db.Where("form_id = ?", formID).Delete(&dbschema.FormField{}).Error; err != nil {
			return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to delete existing fields", "b1627384-95a6-4b7c-8d2e-697a8b9cadbe")
		}
		if err := db.Where("form_id = ?", formID).Delete(&dbschema.FormStep{}).Error; err != nil {
			return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to delete existing steps", "c2738495-a6b7-4c8d-9e3f-7a8b9cadbecf")
		}

		out = make([]form.Step, 0, len(steps))
		for _, step := range steps {
			stepRow := &dbschema.FormStep{
				PublicID: step.PublicID,
				FormID:   formID,
				Title:    step.Title,
				Order:    step.Order,
			}
			if err := db.Create(stepRow).Error; err != nil {
				return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to create step", "d38495a6-b7c8-4d9e-8f40-8b9cadbecfd0")
			}

			created := form.Step{
				ID:       stepRow.ID,
				PublicID: stepRow.PublicID,
				FormID:   formID,
				Title:    stepRow.Title,
				Order:    stepRow.Order,
			}

			for _, field := range step.Fields {
				field.FormID = formID
				field.StepID = &stepRow.ID
				fieldRow, err := dbschema.NewSchemaFormField(&field)
				if err != nil {
					return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to encode field", "e495a6b7-c8d9-4eaf-9051-9cadbecfd0e1")
				}
				if err := db.Create(fieldRow).Error; err != nil {
					return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to create field", "f5a6b7c8-d9ea-4fb0-a162-adbecfd0e1f2")
				}
				field.ID = fieldRow.ID
				field.StepPublicID = &created.PublicID
				created.Fields = append(created.Fields, field)
			}

			out = append(out, created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindExpiredPublished implements form.Repository.
func (repo *FormGormRepository) FindExpiredPublished(ctx context.Context, now time.Time) ([]*form.Form, error) {
	var rows []dbschema.Form
	err := repo.getDB(ctx).
		Where("status = ?", string(form.FormStatusPublished)).
		Where("closes_at IS NOT NULL AND closes_at < ?", now).
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to find expired forms", "06b7c8d9-eafb-40c1-b273-becfd0e1f203")
	}

	result := make([]*form.Form, 0, len(rows))
	for i := range rows {
		domainForm, err := repo.toDomain(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, domainForm)
	}
	return result, nil
}

func (repo *FormGormRepository) applyFilter(db *gorm.DB, filter form.Filter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.PublicID != nil {
		db = db.Where("public_id = ?", *filter.PublicID)
	}
	if filter.OwnerID != nil {
		db = db.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Slug != nil {
		db = db.Where("slug = ?", *filter.Slug)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", string(*filter.Status))
	}
	return db
}

func orderSteps(db *gorm.DB) *gorm.DB  { return db.Order("display_order ASC") }
func orderFields(db *gorm.DB) *gorm.DB { return db.Order("display_order ASC") }

func (repo *FormGormRepository) notFoundOr(ctx context.Context, err error, message, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "form not found", err, code)
	}
	return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, message, code)
}

// sealSecret encrypts the webhook secret before it reaches the row.
func (repo *FormGormRepository) sealSecret(ctx context.Context, model *dbschema.Form) error {
	if model.WebhookSecret == "" || repo.secretKey == "" {
		return nil
	}
	sealed, err := crypto.EncryptString(repo.secretKey, model.WebhookSecret)
	if err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to encrypt webhook secret", "17c8d9ea-fb0c-41d2-c384-cfd0e1f20314")
	}
	model.WebhookSecret = sealed
	return nil
}

// toDomain converts a row and unseals the webhook secret.
func (repo *FormGormRepository) toDomain(ctx context.Context, model *dbschema.Form) (*form.Form, error) {
	domainForm, err := model.EtoD()
	if err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to decode form", "28d9eafb-0c1d-42e3-d495-d0e1f2031425")
	}
	if domainForm.WebhookSecret != "" && repo.secretKey != "" {
		plain, err := crypto.DecryptString(repo.secretKey, domainForm.WebhookSecret)
		if err != nil {
			// Tolerate legacy plaintext secrets.
			return domainForm, nil
		}
		domainForm.WebhookSecret = plain
	}
	return domainForm, nil
}
