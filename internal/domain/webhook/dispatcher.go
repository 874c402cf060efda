package webhook

import (
	"context"
	"encoding/json"
	"time"

	"resty.dev/v3"

	"github.com/formgrid/forms-api/internal/infrastructure/logger"
	"github.com/formgrid/forms-api/internal/infrastructure/metrics"
)

// Dispatcher delivers signed webhook payloads. Deliveries are at-most-once:
// no retries, no redirect following, and a failed delivery only surfaces as a
// false return and a log line.
type Dispatcher struct {
	client  *resty.Client
	timeout time.Duration

	// skipSafetyCheck disables the destination gate; tests delivering to a
	// local listener set it.
	skipSafetyCheck bool
}

// NewDispatcher builds a dispatcher with the given per-delivery timeout and
// User-Agent.
func NewDispatcher(timeout time.Duration, userAgent string) *Dispatcher {
	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.NoRedirectPolicy()).
		SetHeader("User-Agent", userAgent).
		SetHeader("Content-Type", "application/json").
		SetDisableWarn(true)

	return &Dispatcher{client: client, timeout: timeout}
}

// Send signs and posts the payload to the destination. It reports success
// only for a 2xx response. The URL passes through the safety gate again at
// delivery time in case the stored value predates the current rules.
func (d *Dispatcher) Send(ctx context.Context, destination string, payload Payload, secret string) bool {
	log := logger.GetLogger()

	if err := IsSafeURL(destination); err != nil && !d.skipSafetyCheck {
		log.Warn().Err(err).Str("event", payload.Event).Msg("webhook destination rejected")
		metrics.RecordWebhookDelivery(false)
		return false
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", payload.Event).Msg("failed to marshal webhook payload")
		metrics.RecordWebhookDelivery(false)
		return false
	}

	req := d.client.R().
		SetContext(ctx).
		SetBody(body)
	if secret != "" {
		req.SetHeader(SignatureHeader, Sign(body, secret))
	}
	resp, err := req.Post(destination)
	if err != nil {
		log.Warn().
			Err(err).
			Str("event", payload.Event).
			Str("form_id", payload.FormID).
			Msg("webhook delivery failed")
		metrics.RecordWebhookDelivery(false)
		return false
	}

	success := resp.StatusCode() >= 200 && resp.StatusCode() < 300
	if !success {
		log.Warn().
			Int("status", resp.StatusCode()).
			Str("event", payload.Event).
			Str("form_id", payload.FormID).
			Msg("webhook endpoint returned non-2xx")
	} else {
		log.Debug().
			Int("status", resp.StatusCode()).
			Str("event", payload.Event).
			Str("form_id", payload.FormID).
			Msg("webhook delivered")
	}
	metrics.RecordWebhookDelivery(success)
	return success
}

// Timeout returns the per-delivery timeout, used by callers that detach
// deliveries onto their own contexts.
func (d *Dispatcher) Timeout() time.Duration {
	return d.timeout
}
