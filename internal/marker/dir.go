package marker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir keeps markers as empty files in one directory, e.g.
// /var/spool/alarm/disable/Kitchen.
type Dir struct {
	path string
}

// NewDir returns a store rooted at path. The directory is not created; it
// is provisioned alongside the daemon.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

// Path returns the file that represents key.
func (d *Dir) Path(key string) string {
	return filepath.Join(d.path, key)
}

// Exists stats the marker file.
func (d *Dir) Exists(_ context.Context, key string) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	_, err := os.Stat(d.Path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat marker: %w", err)
}

// Create makes an empty read-only marker file.
func (d *Dir) Create(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	f, err := os.OpenFile(d.Path(key), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o444)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create marker: %w", err)
	}
	return f.Close()
}

// Remove unlinks the marker file.
func (d *Dir) Remove(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.Remove(d.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove marker: %w", err)
	}
	return nil
}
