package storage

import (
	"regexp"
	"strings"
	"testing"

	"staffdesk/internal/apperr"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     bool
	}{
		{"pdf", "application/pdf", 1024, false},
		{"jpg alias", "image/jpg", 2048, false},
		{"png with params", "image/png; charset=binary", 10, false},
		{"docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", 100, false},
		{"exactly max", "application/pdf", MaxUploadSize, false},
		{"too large", "application/pdf", MaxUploadSize + 1, true},
		{"empty", "application/pdf", 0, true},
		{"executable", "application/x-msdownload", 100, true},
		{"gif", "image/gif", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.contentType, tt.size)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("kind = %v, want validation", apperr.KindOf(err))
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	re := regexp.MustCompile(`^documents/[0-9a-f-]{36}\.pdf$`)

	if key := ObjectKey("application/pdf"); !re.MatchString(key) {
		t.Errorf("key = %q", key)
	}
	if key := ObjectKey("Application/PDF; charset=binary"); !re.MatchString(key) {
		t.Errorf("key with parameters = %q", key)
	}
	if key := ObjectKey("image/jpeg"); !strings.HasSuffix(key, ".jpg") {
		t.Errorf("jpeg key = %q", key)
	}
	if ObjectKey("application/pdf") == ObjectKey("application/pdf") {
		t.Error("keys should be unique")
	}
}

func TestPublicURL(t *testing.T) {
	if got := publicURL("https://cdn.example.com/", "s3://b", "documents/x.pdf"); got != "https://cdn.example.com/documents/x.pdf" {
		t.Errorf("got %q", got)
	}
	if got := publicURL("", "gs://b", "documents/x.pdf"); got != "gs://b/documents/x.pdf" {
		t.Errorf("got %q", got)
	}
}
