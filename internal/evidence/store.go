// Package evidence is the boundary to photo-evidence storage. The engine
// only needs "store this file, give me a reference back"; where the bytes
// land (S3 in production, a local directory in development) is swappable.
package evidence

import (
	"context"
	"io"
	"log"
	"os"
)

// Store persists an evidence file and returns an opaque reference that is
// recorded on the task or appeal.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// FromEnv selects the store implementation: S3 when EVIDENCE_BUCKET is set,
// otherwise a local directory under EVIDENCE_DIR (falling back to the
// system temp dir for development).
func FromEnv(ctx context.Context) Store {
	if bucket := os.Getenv("EVIDENCE_BUCKET"); bucket != "" {
		s, err := NewS3Store(ctx, bucket)
		if err != nil {
			log.Printf("[evidence] S3 store unavailable, falling back to local: %v", err)
		} else {
			return s
		}
	}

	dir := os.Getenv("EVIDENCE_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return LocalStore{Dir: dir}
}
