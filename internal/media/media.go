// Package media stores item photos and resolves their public references.
package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists photos and returns a reference that clients can fetch.
type Store interface {
	Save(ctx context.Context, data []byte, mime string) (string, error)
	Delete(ctx context.Context, ref string) error
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Disk stores photos as files in Dir and references them as
// Prefix + "/" + name.
type Disk struct {
	Dir    string
	Prefix string
}

// NewDisk creates the upload directory if needed.
func NewDisk(dir, prefix string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Disk{Dir: dir, Prefix: strings.TrimRight(prefix, "/")}, nil
}

// Save writes data under a fresh random name.
func (d *Disk) Save(ctx context.Context, data []byte, mime string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext, ok := extensions[mime]
	if !ok {
		return "", fmt.Errorf("unsupported media type %q", mime)
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(d.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}

	slog.Info("photo stored", "name", name, "bytes", len(data))
	return d.Prefix + "/" + name, nil
}

// Delete removes the file behind ref. References that do not point into
// this store, and files that are already gone, are ignored.
func (d *Disk) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, ok := d.name(ref)
	if !ok {
		return nil
	}

	err := os.Remove(filepath.Join(d.Dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", name, err)
	}
	return nil
}

// name extracts the bare file name from a reference produced by Save.
func (d *Disk) name(ref string) (string, bool) {
	rest, ok := strings.CutPrefix(ref, d.Prefix+"/")
	if !ok || rest == "" || rest != path.Base(rest) || rest == "." || rest == ".." {
		return "", false
	}
	return rest, true
}
