package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Event names delivered to owner endpoints.
const (
	EventSubmissionCreated = "form.submission.created"
	EventSubmissionUpdated = "form.submission.updated"
	EventSubmissionDeleted = "form.submission.deleted"
	EventTest              = "form.webhook.test"
)

// SignatureHeader carries the payload signature on every delivery.
const SignatureHeader = "X-Webhook-Signature"

const signaturePrefix = "sha256="

// Payload is the JSON body posted to the owner's endpoint.
type Payload struct {
	Event        string         `json:"event"`
	Timestamp    time.Time      `json:"timestamp"`
	FormID       string         `json:"formId"`
	FormSlug     string         `json:"formSlug,omitempty"`
	SubmissionID string         `json:"submissionId,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

// IsSafeURL rejects webhook destinations that would let a form owner probe
// the service's internal network. Only literal hosts are checked; a hostname
// that resolves to a private address at delivery time is not caught here.
func IsSafeURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("webhook URL is empty")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return errors.New("webhook URL has no host")
	}
	if strings.EqualFold(host, "localhost") {
		return errors.New("webhook URL must not target localhost")
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return fmt.Errorf("webhook URL must not target internal address %s", host)
		}
	}

	return nil
}

// Sign computes the delivery signature over the exact payload bytes.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received signature in constant time. The
// "sha256=" prefix is optional on the received value.
func VerifySignature(payload []byte, signature, secret string) bool {
	received := strings.TrimPrefix(signature, signaturePrefix)
	expected := strings.TrimPrefix(Sign(payload, secret), signaturePrefix)
	return hmac.Equal([]byte(received), []byte(expected))
}
