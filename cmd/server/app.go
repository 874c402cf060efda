package main

import (
	"github.com/formgrid/forms-api/internal/config"
	"github.com/formgrid/forms-api/internal/domain/form"
	"github.com/formgrid/forms-api/internal/domain/submission"
	"github.com/formgrid/forms-api/internal/domain/user"
	"github.com/formgrid/forms-api/internal/domain/webhook"
	"github.com/formgrid/forms-api/internal/infrastructure/blobstore"
	"github.com/formgrid/forms-api/internal/infrastructure/crontab"
	"github.com/formgrid/forms-api/internal/infrastructure/database"
	"github.com/formgrid/forms-api/internal/infrastructure/database/repository/formrepo"
	"github.com/formgrid/forms-api/internal/infrastructure/database/repository/submissionrepo"
	"github.com/formgrid/forms-api/internal/infrastructure/database/repository/userrepo"
	"github.com/formgrid/forms-api/internal/infrastructure/database/transaction"
	"github.com/formgrid/forms-api/internal/infrastructure/logger"
	"github.com/formgrid/forms-api/internal/infrastructure/realtime"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/handlers/formhandler"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/handlers/notificationhandler"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/handlers/submissionhandler"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/middlewares"
	v1 "github.com/formgrid/forms-api/internal/interfaces/httpserver/routes/v1"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/routes/v1/forms"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/routes/v1/notifications"
)

// CreateApplication wires the full dependency graph by hand.
func CreateApplication(cfg *config.Config) (*Application, error) {
	log := logger.GetLogger()

	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migration(db); err != nil {
		return nil, err
	}
	txDB := transaction.NewDatabase(db)

	formRepo := formrepo.NewFormGormRepository(txDB, cfg.SecretEncryptionKey)
	submissionRepo := submissionrepo.NewSubmissionGormRepository(txDB)
	userRepo := userrepo.NewUserGormRepository(txDB)

	store, err := blobstore.New(cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		log.Warn().Msg("blob store not configured, attachments stay inline")
	}

	hub := realtime.NewHub()
	dispatcher := webhook.NewDispatcher(cfg.WebhookTimeout, cfg.WebhookUserAgent)

	formService := form.NewService(formRepo)
	userService := user.NewService(userRepo)
	submissionService := submission.NewService(
		submissionRepo,
		formRepo,
		submission.NewExternalizer(store),
		dispatcher,
		hub,
	)

	authn := middlewares.NewAuthenticator(middlewares.AuthConfig{
		Secret: cfg.AuthSecret,
		Issuer: cfg.AuthIssuer,
	}, userService)

	formRoute := forms.NewFormRoute(
		formhandler.NewFormHandler(formService),
		submissionhandler.NewSubmissionHandler(submissionService),
		authn,
	)
	notificationRoute := notifications.NewNotificationRoute(
		notificationhandler.NewNotificationHandler(hub),
		authn,
	)
	v1Route := v1.NewV1Route(formRoute, notificationRoute)

	return &Application{
		httpServer: httpserver.NewHTTPServer(v1Route, cfg, log),
		crontab:    crontab.NewCrontab(formRepo),
		blobStore:  store,
		config:     cfg,
	}, nil
}
