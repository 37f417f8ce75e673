package configure

import (
	"fmt"
	"os"
	"path/filepath"
)

// Apply writes every change in the plan. Each file is written to a
// temporary file in its target directory and renamed into place, so a
// crash mid-apply never leaves a half-written file behind.
func Apply(root string, plan Plan) error {
	for _, change := range plan.Changes {
		target := filepath.Join(root, change.Path)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", change.Path, err)
		}
		if err := writeAtomic(target, change.Content); err != nil {
			return fmt.Errorf("write %s: %w", change.Path, err)
		}
	}
	return nil
}

// writeAtomic writes data via a temp file and rename in the same
// directory. Rename within one filesystem is atomic, so readers see
// either the old or the new content, never a mix.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
