package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSafeURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "public https", url: "https://hooks.example.com/inbound", wantErr: false},
		{name: "public http", url: "http://example.com/hook", wantErr: false},
		{name: "public ip", url: "http://8.8.8.8/hook", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "ftp scheme", url: "ftp://example.com/hook", wantErr: true},
		{name: "file scheme", url: "file:///etc/passwd", wantErr: true},
		{name: "localhost", url: "http://localhost:8080/hook", wantErr: true},
		{name: "localhost mixed case", url: "http://LOCALHOST/hook", wantErr: true},
		{name: "loopback v4", url: "http://127.0.0.1/hook", wantErr: true},
		{name: "loopback v4 range", url: "http://127.8.4.2/hook", wantErr: true},
		{name: "loopback v6", url: "http://[::1]/hook", wantErr: true},
		{name: "private 10", url: "http://10.0.0.5/hook", wantErr: true},
		{name: "private 172", url: "http://172.16.1.1/hook", wantErr: true},
		{name: "private 192", url: "http://192.168.1.10:9000/hook", wantErr: true},
		{name: "link local", url: "http://169.254.169.254/latest/meta-data", wantErr: true},
		{name: "unspecified", url: "http://0.0.0.0/hook", wantErr: true},
		{name: "internal hostname passes literal check", url: "http://intranet.corp/hook", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := IsSafeURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSignAndVerify(t *testing.T) {
	payload := []byte(`{"event":"form.submission.created","formId":"form_abc"}`)
	secret := "whsec_test_secret"

	sig := Sign(payload, secret)
	assert.Contains(t, sig, "sha256=")

	assert.True(t, VerifySignature(payload, sig, secret))
	assert.True(t, VerifySignature(payload, sig[len("sha256="):], secret), "prefix should be optional")

	assert.False(t, VerifySignature(payload, sig, "wrong_secret"))
	assert.False(t, VerifySignature([]byte(`{"tampered":true}`), sig, secret))
	assert.False(t, VerifySignature(payload, "sha256=deadbeef", secret))
}

func TestSignDeterministic(t *testing.T) {
	payload := []byte(`{"a":1}`)
	assert.Equal(t, Sign(payload, "s"), Sign(payload, "s"))
	assert.NotEqual(t, Sign(payload, "s"), Sign(payload, "other"))
}

func TestDispatcherSend(t *testing.T) {
	secret := "whsec_dispatch"
	var gotSignature string
	var gotUserAgent string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get(SignatureHeader)
		gotUserAgent = r.Header.Get("User-Agent")
		body, _ := io.ReadAll(r.Body)
		gotBody = body
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(5*time.Second, "FormGrid-Webhook/1.0")
	d.skipSafetyCheck = true
	ok := d.Send(context.Background(), server.URL, Payload{
		Event:     EventTest,
		FormID:    "form_abc123",
		Timestamp: time.Now().UTC(),
	}, secret)

	require.True(t, ok)
	assert.Equal(t, "FormGrid-Webhook/1.0", gotUserAgent)
	assert.True(t, VerifySignature(gotBody, gotSignature, secret), "body must verify against the sent signature")
}

func TestDispatcherSendNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	d := NewDispatcher(5*time.Second, "FormGrid-Webhook/1.0")
	d.skipSafetyCheck = true
	ok := d.Send(context.Background(), server.URL, Payload{Event: EventTest, FormID: "form_x"}, "s")
	assert.False(t, ok)
}

func TestDispatcherSendRejectsUnsafeDestination(t *testing.T) {
	d := NewDispatcher(time.Second, "FormGrid-Webhook/1.0")
	ok := d.Send(context.Background(), "http://127.0.0.1:9/hook", Payload{Event: EventTest}, "s")
	assert.False(t, ok)
}
