// Package archive keeps copies of raw uploaded files for audit and
// debugging. Archived copies are never read back by the pipeline.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Archiver stores the raw bytes of an uploaded file.
type Archiver interface {
	// Archive stores data under a collision-free name derived from
	// filename and returns the path of the stored copy.
	Archive(filename string, data []byte) (string, error)
}

// LocalArchiver is an Archiver writing into a directory on the local
// filesystem.
type LocalArchiver struct {
	dir string
}

// NewLocalArchiver creates an archiver rooted at dir, creating the
// directory if needed.
func NewLocalArchiver(dir string) (*LocalArchiver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory %q: %w", dir, err)
	}
	return &LocalArchiver{dir: dir}, nil
}

// Archive writes data to a timestamp-and-uuid prefixed file so repeated
// uploads of the same filename never collide.
func (a *LocalArchiver) Archive(filename string, data []byte) (string, error) {
	name := fmt.Sprintf("%s-%s-%s",
		time.Now().UTC().Format("20060102T150405Z"),
		uuid.NewString()[:8],
		sanitizeFilename(filename))

	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("archiving upload %q: %w", filename, err)
	}
	return path, nil
}

// sanitizeFilename strips any path components from a client-supplied
// filename.
func sanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == ".." || base == "/" || base == "" {
		return "upload"
	}
	return base
}
