package evidence

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore writes evidence files to a directory. Development use only.
type LocalStore struct {
	Dir string
}

func (l LocalStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create evidence dir: %w", err)
	}

	path := filepath.Join(l.Dir, uuid.NewString()+"-"+sanitize(name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create evidence file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write evidence file: %w", err)
	}
	return "file://" + path, nil
}

// sanitize strips path separators from a client-supplied filename.
func sanitize(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "evidence"
	}
	return name
}
