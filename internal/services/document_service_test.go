package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"staffdesk/internal/apperr"
)

type memBlobStore struct {
	objects map[string]string
}

func (m *memBlobStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if m.objects == nil {
		m.objects = map[string]string{}
	}
	m.objects[key] = string(b)
	return "https://files.example.com/" + key, nil
}

func TestUploadDocument(t *testing.T) {
	f := newFixture(t)
	store := &memBlobStore{}
	svc := NewDocumentService(store)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, principal(f.alice), "report.pdf", "application/pdf", 7, strings.NewReader("%PDF-1."))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(doc.Key, "documents/") || !strings.HasSuffix(doc.Key, ".pdf") {
		t.Errorf("key = %s", doc.Key)
	}
	if doc.URL != "https://files.example.com/"+doc.Key || store.objects[doc.Key] != "%PDF-1." {
		t.Errorf("doc = %+v", doc)
	}

	disguised, err := svc.Upload(ctx, principal(f.alice), "x.html", "application/pdf", 7, strings.NewReader("%PDF-1."))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(disguised.Key, ".pdf") || disguised.Name != "x.html" {
		t.Errorf("disguised upload stored as %s (name %s)", disguised.Key, disguised.Name)
	}

	if _, err := svc.Upload(ctx, principal(f.alice), "run.exe", "application/x-msdownload", 10, strings.NewReader("MZ")); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("bad type: err = %v", err)
	}
	if _, err := svc.Upload(ctx, principal(f.alice), "big.pdf", "application/pdf", 11<<20, strings.NewReader("")); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("too large: err = %v", err)
	}
}
