package submission

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/formgrid/forms-api/internal/domain/form"
	"github.com/formgrid/forms-api/internal/infrastructure/logger"
	"github.com/formgrid/forms-api/internal/infrastructure/metrics"
)

// FileUpload is one decoded attachment ready for the blob store.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// StoredFile is the blob store's reference to an uploaded attachment.
type StoredFile struct {
	FileID      string
	WebViewLink string
	SecureURL   string
}

// BlobStore is the outbound attachment storage port.
type BlobStore interface {
	// IsConnected reports whether external storage is configured for the form.
	IsConnected(ctx context.Context, formPublicID string) bool
	// EnsureResponseFolder claims the next per-submission folder under the
	// form's root. The scan-then-create allocation can race under concurrent
	// submissions to the same form; the winner of the race may share a folder.
	EnsureResponseFolder(ctx context.Context, formPublicID string) (string, error)
	Upload(ctx context.Context, formPublicID, folder string, file FileUpload) (*StoredFile, error)
}

// Externalizer rewrites inline attachment payloads into blob store
// descriptors. Every failure is per-field: the original value stays in the
// submission and the pipeline continues.
type Externalizer struct {
	store BlobStore
}

func NewExternalizer(store BlobStore) *Externalizer {
	return &Externalizer{store: store}
}

// Process returns the submission data with inline FILE/SIGNATURE values
// replaced by descriptors. Only classifier-visible fields are considered.
// When no storage is connected or nothing needs externalizing, the input map
// is returned unchanged.
func (e *Externalizer) Process(ctx context.Context, f *form.Form, visibleFields []form.Field, data map[string]any) map[string]any {
	if e == nil || e.store == nil || !e.store.IsConnected(ctx, f.PublicID) {
		return data
	}

	var pending []form.Field
	for _, field := range visibleFields {
		if !field.Type.IsAttachment() {
			continue
		}
		if hasInlineValue(form.AnswerFor(field, data)) {
			pending = append(pending, field)
		}
	}
	if len(pending) == 0 {
		return data
	}

	log := logger.GetLogger()

	folder, err := e.store.EnsureResponseFolder(ctx, f.PublicID)
	if err != nil {
		log.Warn().Err(err).Str("form_id", f.PublicID).Msg("failed to allocate response folder, submission keeps inline attachments")
		metrics.RecordAttachmentUpload(false)
		return data
	}

	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}

	for _, field := range pending {
		key := answerKey(field, data)
		replaced, err := e.externalizeValue(ctx, f, folder, field, out[key])
		if err != nil {
			log.Warn().
				Err(err).
				Str("form_id", f.PublicID).
				Str("field_id", field.PublicID).
				Msg("attachment externalization failed, keeping inline value")
			metrics.RecordAttachmentUpload(false)
			continue
		}
		out[key] = replaced
		metrics.RecordAttachmentUpload(true)
	}

	return out
}

// answerKey returns the key the client actually used for this field.
func answerKey(field form.Field, data map[string]any) string {
	if _, ok := data[field.PublicID]; ok {
		return field.PublicID
	}
	return field.Label
}

func hasInlineValue(v any) bool {
	if isInlinePayload(v) {
		return true
	}
	if items, ok := v.([]any); ok {
		for _, item := range items {
			if isInlinePayload(item) {
				return true
			}
		}
	}
	return false
}

// externalizeValue handles scalar and multi-file values. Descriptor-shaped
// entries pass through untouched.
func (e *Externalizer) externalizeValue(ctx context.Context, f *form.Form, folder string, field form.Field, value any) (any, error) {
	if items, ok := value.([]any); ok {
		out := make([]any, len(items))
		for i, item := range items {
			if !isInlinePayload(item) || isDescriptorShaped(item) {
				out[i] = item
				continue
			}
			desc, err := e.uploadInline(ctx, f, folder, field, item.(string), i)
			if err != nil {
				return nil, err
			}
			out[i] = desc
		}
		return out, nil
	}

	if isDescriptorShaped(value) {
		return value, nil
	}
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	return e.uploadInline(ctx, f, folder, field, s, 0)
}

func (e *Externalizer) uploadInline(ctx context.Context, f *form.Form, folder string, field form.Field, payload string, index int) (map[string]any, error) {
	contentType, raw, err := decodeInline(payload)
	if err != nil {
		return nil, err
	}

	if field.MaxFileSize > 0 && int64(len(raw)) > field.MaxFileSize {
		return nil, fmt.Errorf("attachment exceeds %d bytes", field.MaxFileSize)
	}

	stored, err := e.store.Upload(ctx, f.PublicID, folder, FileUpload{
		Name:        attachmentName(field, contentType, index),
		ContentType: contentType,
		Data:        raw,
	})
	if err != nil {
		return nil, err
	}

	// Map form keeps the descriptor JSON-stable inside the data column.
	return map[string]any{
		"type":        descriptorType,
		"fileId":      stored.FileID,
		"formId":      f.PublicID,
		"webViewLink": stored.WebViewLink,
		"secureUrl":   stored.SecureURL,
	}, nil
}

// decodeInline parses `data:<mime>;base64,<payload>` or bare base64.
func decodeInline(payload string) (contentType string, raw []byte, err error) {
	contentType = "application/octet-stream"
	encoded := payload

	if strings.HasPrefix(payload, "data:") {
		meta, rest, found := strings.Cut(payload[len("data:"):], ",")
		if !found {
			return "", nil, fmt.Errorf("malformed data URI")
		}
		encoded = rest
		meta = strings.TrimSuffix(meta, ";base64")
		if meta != "" {
			contentType = meta
		}
	}

	raw, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return contentType, raw, nil
}

func attachmentName(field form.Field, contentType string, index int) string {
	ext := "bin"
	switch contentType {
	case "image/png":
		ext = "png"
	case "image/jpeg":
		ext = "jpg"
	case "image/webp":
		ext = "webp"
	case "application/pdf":
		ext = "pdf"
	}
	return fmt.Sprintf("%s_%d_%d.%s", field.PublicID, index, time.Now().UnixNano(), ext)
}
