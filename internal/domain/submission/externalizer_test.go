package submission

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formgrid/forms-api/internal/domain/form"
)

// mockBlobStore is an in-memory BlobStore for testing
type mockBlobStore struct {
	connected bool
	uploads   []FileUpload
	uploadErr error
	folder    string
}

func (m *mockBlobStore) IsConnected(ctx context.Context, formPublicID string) bool {
	return m.connected
}

func (m *mockBlobStore) EnsureResponseFolder(ctx context.Context, formPublicID string) (string, error) {
	if m.folder == "" {
		m.folder = "Response 1"
	}
	return m.folder, nil
}

func (m *mockBlobStore) Upload(ctx context.Context, formPublicID, folder string, file FileUpload) (*StoredFile, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	m.uploads = append(m.uploads, file)
	id := fmt.Sprintf("file_%d", len(m.uploads))
	return &StoredFile{
		FileID:      id,
		WebViewLink: "https://storage.example.com/view/" + id,
		SecureURL:   "https://storage.example.com/secure/" + id,
	}, nil
}

func signaturePNG() string {
	// Payload must be long enough to register as inline.
	blob := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("png-bytes", 64)))
	return "data:image/png;base64," + blob
}

func attachmentForm() (*form.Form, []form.Field) {
	fields := []form.Field{
		{PublicID: "fld_name", Label: "Name", Type: form.FieldTypeText},
		{PublicID: "fld_sig", Label: "Signature", Type: form.FieldTypeSignature},
	}
	f := &form.Form{ID: 1, PublicID: "form_ext", Fields: fields}
	return f, fields
}

func TestExternalizerNotConnected(t *testing.T) {
	f, fields := attachmentForm()
	store := &mockBlobStore{connected: false}
	e := NewExternalizer(store)

	data := map[string]any{"fld_sig": signaturePNG()}
	out := e.Process(context.Background(), f, fields, data)

	assert.Equal(t, data, out, "data passes through untouched without storage")
	assert.Empty(t, store.uploads)
}

func TestExternalizerNilStore(t *testing.T) {
	f, fields := attachmentForm()
	e := NewExternalizer(nil)

	data := map[string]any{"fld_sig": signaturePNG()}
	assert.Equal(t, data, e.Process(context.Background(), f, fields, data))
}

func TestExternalizerReplacesInlinePayload(t *testing.T) {
	f, fields := attachmentForm()
	store := &mockBlobStore{connected: true}
	e := NewExternalizer(store)

	out := e.Process(context.Background(), f, fields, map[string]any{
		"fld_name": "Ada",
		"fld_sig":  signaturePNG(),
	})

	assert.Equal(t, "Ada", out["fld_name"])

	desc, ok := out["fld_sig"].(map[string]any)
	require.True(t, ok, "inline signature must become a descriptor")
	assert.Equal(t, "secure_file", desc["type"])
	assert.Equal(t, "file_1", desc["fileId"])
	assert.Equal(t, "form_ext", desc["formId"])
	assert.NotEmpty(t, desc["webViewLink"])
	assert.NotEmpty(t, desc["secureUrl"])

	require.Len(t, store.uploads, 1)
	assert.Equal(t, "image/png", store.uploads[0].ContentType)
}

func TestExternalizerDescriptorPassthrough(t *testing.T) {
	f, fields := attachmentForm()
	store := &mockBlobStore{connected: true}
	e := NewExternalizer(store)

	existing := map[string]any{"type": "secure_file", "fileId": "file_prev", "formId": "form_ext"}
	out := e.Process(context.Background(), f, fields, map[string]any{"fld_sig": existing})

	assert.Equal(t, existing, out["fld_sig"])
	assert.Empty(t, store.uploads, "already-externalized values are not re-uploaded")
}

func TestExternalizerUploadErrorKeepsOriginal(t *testing.T) {
	f, fields := attachmentForm()
	store := &mockBlobStore{connected: true, uploadErr: errors.New("bucket unavailable")}
	e := NewExternalizer(store)

	inline := signaturePNG()
	out := e.Process(context.Background(), f, fields, map[string]any{
		"fld_name": "Ada",
		"fld_sig":  inline,
	})

	assert.Equal(t, inline, out["fld_sig"], "failed externalization keeps the inline value")
	assert.Equal(t, "Ada", out["fld_name"])
}

func TestExternalizerMultiFileField(t *testing.T) {
	fields := []form.Field{{PublicID: "fld_docs", Label: "Documents", Type: form.FieldTypeFile, MaxFiles: 3}}
	f := &form.Form{ID: 2, PublicID: "form_multi", Fields: fields}
	store := &mockBlobStore{connected: true}
	e := NewExternalizer(store)

	existing := map[string]any{"fileId": "file_old"}
	out := e.Process(context.Background(), f, fields, map[string]any{
		"fld_docs": []any{signaturePNG(), existing},
	})

	items, ok := out["fld_docs"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)

	first, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "file_1", first["fileId"])
	assert.Equal(t, existing, items[1], "descriptor entries pass through")
}

func TestExternalizerRespectsMaxFileSize(t *testing.T) {
	fields := []form.Field{{PublicID: "fld_sig", Label: "Signature", Type: form.FieldTypeSignature, MaxFileSize: 8}}
	f := &form.Form{ID: 3, PublicID: "form_cap", Fields: fields}
	store := &mockBlobStore{connected: true}
	e := NewExternalizer(store)

	inline := signaturePNG()
	out := e.Process(context.Background(), f, fields, map[string]any{"fld_sig": inline})

	assert.Equal(t, inline, out["fld_sig"], "oversize attachment stays inline")
	assert.Empty(t, store.uploads)
}

func TestDecodeInline(t *testing.T) {
	contentType, raw, err := decodeInline("data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("pdf")))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, []byte("pdf"), raw)

	contentType, raw, err = decodeInline(base64.StdEncoding.EncodeToString([]byte("bare")))
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", contentType)
	assert.Equal(t, []byte("bare"), raw)

	_, _, err = decodeInline("data:missing-comma")
	assert.Error(t, err)

	_, _, err = decodeInline("data:text/plain;base64,!!!not-base64!!!")
	assert.Error(t, err)
}
