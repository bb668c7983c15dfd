package download

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func payloadServer(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchWritesFileAndReturnsChecksum(t *testing.T) {
	payload := []byte("not really an msi")
	srv := payloadServer(t, payload)
	dest := filepath.Join(t.TempDir(), "nested", "installer.msi")

	sum, err := NewFetcher().Fetch(srv.URL, dest)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	want := sha256.Sum256(payload)
	if sum != hex.EncodeToString(want[:]) {
		t.Errorf("checksum = %s, want %s", sum, hex.EncodeToString(want[:]))
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("dest content = %q", got)
	}
}

func TestFetchRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "installer.msi")
	if _, err := NewFetcher().Fetch(srv.URL, dest); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("dest file created despite failed download")
	}
}

func TestFetchVerified(t *testing.T) {
	payload := []byte("verified payload")
	srv := payloadServer(t, payload)
	want := sha256.Sum256(payload)

	dest := filepath.Join(t.TempDir(), "installer.msi")
	if err := NewFetcher().FetchVerified(srv.URL, dest, hex.EncodeToString(want[:])); err != nil {
		t.Fatalf("FetchVerified: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("dest missing after verified fetch: %v", err)
	}
}

func TestFetchVerifiedIsCaseInsensitive(t *testing.T) {
	payload := []byte("verified payload")
	srv := payloadServer(t, payload)
	want := sha256.Sum256(payload)

	dest := filepath.Join(t.TempDir(), "installer.msi")
	upper := hex.EncodeToString(want[:])
	if err := NewFetcher().FetchVerified(srv.URL, dest, upper); err != nil {
		t.Fatalf("FetchVerified lower: %v", err)
	}
	if err := NewFetcher().FetchVerified(srv.URL, dest, "ABCDEF"); err == nil {
		t.Error("mismatched checksum accepted")
	}
}

func TestFetchVerifiedRemovesMismatchedFile(t *testing.T) {
	srv := payloadServer(t, []byte("tampered payload"))

	dest := filepath.Join(t.TempDir(), "installer.msi")
	err := NewFetcher().FetchVerified(srv.URL, dest, "deadbeef")
	if err == nil {
		t.Fatal("expected a checksum mismatch error")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("mismatched file left on disk")
	}
}
