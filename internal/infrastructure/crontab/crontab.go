package crontab

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"

	"github.com/formgrid/forms-api/internal/config"
	"github.com/formgrid/forms-api/internal/domain/form"
	"github.com/formgrid/forms-api/internal/infrastructure/logger"
	"github.com/formgrid/forms-api/internal/infrastructure/metrics"
	"github.com/formgrid/forms-api/internal/utils/platformerrors"
)

const (
	DefaultAutoCloseInterval = 1
	CronJobTimeout           = 2 * time.Minute
)

// Crontab runs the scheduled maintenance jobs.
type Crontab struct {
	ctab     *crontab.Crontab
	formRepo form.Repository
}

func NewCrontab(formRepo form.Repository) *Crontab {
	return &Crontab{
		ctab:     crontab.New(),
		formRepo: formRepo,
	}
}

func (c *Crontab) Run(ctx context.Context) error {
	// execute once on server start
	c.closeExpiredForms(ctx)

	cfg := config.GetGlobal()
	if cfg != nil && cfg.AutoCloseEnabled {
		interval := cfg.AutoCloseIntervalMinutes
		if interval <= 0 {
			interval = DefaultAutoCloseInterval
		}

		cronExpr := fmt.Sprintf("*/%d * * * *", interval)
		if err := c.ctab.AddJob(cronExpr, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
			defer cancel()
			c.closeExpiredForms(jobCtx)
		}); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add auto-close job")
		}
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return ctx.Err()
}

// closeExpiredForms transitions PUBLISHED forms whose close time has passed
// to CLOSED. The submission-time window check stays authoritative; this job
// only keeps the stored status in sync for listings.
func (c *Crontab) closeExpiredForms(ctx context.Context) {
	log := logger.GetLogger()

	expired, err := c.formRepo.FindExpiredPublished(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("auto-close: failed to list expired forms")
		return
	}

	for _, f := range expired {
		if err := c.formRepo.UpdateStatus(ctx, f.ID, form.FormStatusClosed); err != nil {
			log.Error().Err(err).Str("form_id", f.PublicID).Msg("auto-close: failed to close form")
			continue
		}
		metrics.FormsAutoClosedTotal.Inc()
		log.Info().Str("form_id", f.PublicID).Msg("auto-close: form closed")
	}
}
