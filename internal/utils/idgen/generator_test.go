package idgen

import (
	"strings"
	"testing"
)

func TestGenerateSecureID(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		length     int
		wantErr    bool
		wantPrefix string
	}{
		{
			name:       "generate form ID",
			prefix:     "form",
			length:     16,
			wantErr:    false,
			wantPrefix: "form_",
		},
		{
			name:       "generate submission ID",
			prefix:     "sub",
			length:     16,
			wantErr:    false,
			wantPrefix: "sub_",
		},
		{
			name:       "generate short ID",
			prefix:     "fld",
			length:     8,
			wantErr:    false,
			wantPrefix: "fld_",
		},
		{
			name:    "empty prefix",
			prefix:  "",
			length:  16,
			wantErr: true,
		},
		{
			name:    "zero length",
			prefix:  "form",
			length:  0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSecureID(tt.prefix, tt.length)
			if (err != nil) != tt.wantErr {
				t.Errorf("GenerateSecureID() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("GenerateSecureID() = %v, want prefix %v", got, tt.wantPrefix)
			}
			expectedLen := len(tt.prefix) + 1 + tt.length
			if len(got) != expectedLen {
				t.Errorf("GenerateSecureID() length = %v, want %v", len(got), expectedLen)
			}
			suffix := got[len(tt.prefix)+1:]
			for _, char := range suffix {
				if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9')) {
					t.Errorf("GenerateSecureID() contains invalid character: %c", char)
				}
			}
		})
	}
}

func TestGenerateSecureID_Uniqueness(t *testing.T) {
	const iterations = 10000
	seen := make(map[string]bool)

	for i := 0; i < iterations; i++ {
		id, err := GenerateSecureID("sub", 16)
		if err != nil {
			t.Fatalf("GenerateSecureID() error = %v", err)
		}
		if seen[id] {
			t.Errorf("GenerateSecureID() generated duplicate ID: %v", id)
		}
		seen[id] = true
	}
}

func TestValidateIDFormat(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		expectedPrefix string
		want           bool
	}{
		{
			name:           "valid form ID",
			id:             "form_a3f8d2k9p1m4n7q2",
			expectedPrefix: "form",
			want:           true,
		},
		{
			name:           "valid submission ID",
			id:             "sub_x7y2z5w8r3t6u9v1",
			expectedPrefix: "sub",
			want:           true,
		},
		{
			name:           "wrong prefix",
			id:             "form_a3f8d2k9p1m4n7q2",
			expectedPrefix: "sub",
			want:           false,
		},
		{
			name:           "missing underscore",
			id:             "forma3f8d2k9p1m4n7q2",
			expectedPrefix: "form",
			want:           false,
		},
		{
			name:           "empty suffix",
			id:             "form_",
			expectedPrefix: "form",
			want:           false,
		},
		{
			name:           "uppercase suffix",
			id:             "form_A3F8D2K9P1M4N7Q2",
			expectedPrefix: "form",
			want:           false,
		},
		{
			name:           "special characters in suffix",
			id:             "form_a3f8-d2k9-p1m4",
			expectedPrefix: "form",
			want:           false,
		},
		{
			name:           "empty ID",
			id:             "",
			expectedPrefix: "form",
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateIDFormat(tt.id, tt.expectedPrefix); got != tt.want {
				t.Errorf("ValidateIDFormat(%q, %q) = %v, want %v", tt.id, tt.expectedPrefix, got, tt.want)
			}
		})
	}
}

func TestValidateIDFormat_GeneratedIDs(t *testing.T) {
	prefixes := []string{"form", "sub", "fld", "step", "user"}
	for _, prefix := range prefixes {
		id, err := GenerateSecureID(prefix, 16)
		if err != nil {
			t.Fatalf("GenerateSecureID() error = %v", err)
		}
		if !ValidateIDFormat(id, prefix) {
			t.Errorf("Generated ID %q failed validation with prefix %q", id, prefix)
		}
	}
}
