package blob

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/xrpc/com.atproto.sync.getBlob" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("did"); got != "did:plc:alice" {
			t.Errorf("unexpected did: %s", got)
		}
		if got := r.URL.Query().Get("cid"); got != "cid-A" {
			t.Errorf("unexpected cid: %s", got)
		}
		w.Write(pngHeader)
	}))
	defer srv.Close()

	data, err := NewRetriever(testLogger()).Fetch(context.Background(), srv.URL, "did:plc:alice", "cid-A")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(data) != len(pngHeader) {
		t.Errorf("expected %d bytes, got %d", len(pngHeader), len(data))
	}
}

func TestFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewRetriever(testLogger()).Fetch(context.Background(), srv.URL, "did:plc:alice", "cid-A"); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	if _, err := NewRetriever(testLogger()).Fetch(context.Background(), srv.URL, "did:plc:alice", "cid-A"); err == nil {
		t.Fatal("expected an error for an unreachable server")
	}
}

func TestClassifyPNG(t *testing.T) {
	meta, err := Classify("cid-A", pngHeader)
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if meta.MimeType != "image/png" {
		t.Errorf("expected image/png, got %s", meta.MimeType)
	}
	if meta.SizeBytes != uint64(len(pngHeader)) {
		t.Errorf("expected size %d, got %d", len(pngHeader), meta.SizeBytes)
	}
	if meta.CID != "cid-A" {
		t.Errorf("expected cid-A, got %s", meta.CID)
	}
}

func TestClassifyJPEG(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}
	meta, err := Classify("cid-B", jpeg)
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if meta.MimeType != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", meta.MimeType)
	}
}

func TestClassifyEmptyPayload(t *testing.T) {
	if _, err := Classify("cid-A", nil); err == nil {
		t.Fatal("expected an error for an empty payload")
	}
}

func TestClassifyUnrecognizablePayload(t *testing.T) {
	if _, err := Classify("cid-A", []byte{0x00, 0x01, 0x02, 0x03, 0x04}); err == nil {
		t.Fatal("expected an error for unrecognizable bytes")
	}
}
