package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Forms-API Metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formgrid",
			Subsystem: "forms_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "formgrid",
			Subsystem: "forms_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	SubmissionsAcceptedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "formgrid",
			Subsystem: "forms_api",
			Name:      "submissions_accepted_total",
			Help:      "Total submissions accepted and persisted",
		},
	)

	SubmissionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formgrid",
			Subsystem: "forms_api",
			Name:      "submissions_rejected_total",
			Help:      "Total submissions rejected, by reason",
		},
		[]string{"reason"},
	)

	WebhookDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formgrid",
			Subsystem: "forms_api",
			Name:      "webhook_deliveries_total",
			Help:      "Total webhook delivery attempts, by outcome",
		},
		[]string{"outcome"},
	)

	AttachmentUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formgrid",
			Subsystem: "forms_api",
			Name:      "attachment_uploads_total",
			Help:      "Total attachment externalization attempts, by outcome",
		},
		[]string{"outcome"},
	)

	FormsAutoClosedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "formgrid",
			Subsystem: "forms_api",
			Name:      "forms_auto_closed_total",
			Help:      "Forms transitioned to CLOSED by the scheduler",
		},
	)
)

// RecordRequest records one completed HTTP request.
func RecordRequest(method, endpoint string, status int, durationSeconds float64) {
	RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordSubmissionRejected counts a rejected submission by eligibility reason.
func RecordSubmissionRejected(reason string) {
	SubmissionsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordWebhookDelivery counts a webhook delivery attempt.
func RecordWebhookDelivery(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	WebhookDeliveriesTotal.WithLabelValues(outcome).Inc()
}

// RecordAttachmentUpload counts an externalization attempt.
func RecordAttachmentUpload(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	AttachmentUploadsTotal.WithLabelValues(outcome).Inc()
}
