package evidence

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestLocalStore_SaveAndSanitize(t *testing.T) {
	store := LocalStore{Dir: t.TempDir()}

	ref, err := store.Save(context.Background(), "../../etc/passwd", strings.NewReader("photo-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(ref, "file://") {
		t.Errorf("expected file:// reference, got %q", ref)
	}
	if strings.Contains(ref, "../") {
		t.Errorf("reference must not contain path traversal: %q", ref)
	}

	path := strings.TrimPrefix(ref, "file://")
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(body) != "photo-bytes" {
		t.Errorf("stored bytes mismatch: %q", body)
	}
}

func TestSanitize_EmptyName(t *testing.T) {
	if got := sanitize(""); got != "evidence" {
		t.Errorf("empty name should fall back to %q, got %q", "evidence", got)
	}
}
