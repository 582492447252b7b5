package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workdir is the per-run scratch directory. Each run gets a fresh
// uuid-named directory so concurrent runs never collide.
type Workdir struct {
	Root string
}

// NewWorkdir creates a fresh working directory under root.
func NewWorkdir(root string) (*Workdir, error) {
	dir := filepath.Join(root, "scorevid-"+uuid.New().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workdir: %w", err)
	}
	return &Workdir{Root: dir}, nil
}

// Path joins parts onto the working directory.
func (w *Workdir) Path(parts ...string) string {
	return filepath.Join(append([]string{w.Root}, parts...)...)
}

// Subdir creates (if needed) and returns a directory inside the
// working directory.
func (w *Workdir) Subdir(name string) (string, error) {
	dir := w.Path(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

// Remove deletes the working directory and everything in it.
func (w *Workdir) Remove() error {
	return os.RemoveAll(w.Root)
}
