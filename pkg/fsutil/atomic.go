package fsutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the permission mode for newly created files.
const DefaultFileMode os.FileMode = 0644

// BackupSuffix is appended to a document path to name its backup copy.
const BackupSuffix = ".docmodel.bak"

// WriteAtomic writes content to a temp file in the target directory, syncs it
// and renames it over path. If mode is 0, DefaultFileMode is used. On error
// the temp file is removed and path is untouched.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write atomic: %w", err)
	}

	if mode == 0 {
		mode = DefaultFileMode
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}

// SaveOptions controls SaveDocument.
type SaveOptions struct {
	// Backup copies the original to path+BackupSuffix before overwriting.
	// An existing backup is kept so repeated edits preserve the first original.
	Backup bool
}

// SaveResult reports what SaveDocument did.
type SaveResult struct {
	Written    bool
	BackupPath string
}

// SaveDocument writes content back to the file described by info. It fails
// with ErrModified when the file changed since it was read and skips the write
// when content is unchanged.
func SaveDocument(ctx context.Context, info *FileInfo, content []byte, opts SaveOptions) (SaveResult, error) {
	var result SaveResult

	modified, err := CheckModified(ctx, info)
	if err != nil {
		return result, err
	}
	if modified {
		return result, fmt.Errorf("%w: %s", ErrModified, info.Path)
	}

	original, err := os.ReadFile(info.Path)
	if err != nil {
		return result, classify(info.Path, err)
	}
	if bytes.Equal(original, content) {
		return result, nil
	}

	if opts.Backup {
		backupPath := info.Path + BackupSuffix
		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			if err := WriteAtomic(ctx, backupPath, original, info.Mode); err != nil {
				return result, fmt.Errorf("write backup: %w", err)
			}
			result.BackupPath = backupPath
		} else if err != nil {
			return result, fmt.Errorf("stat backup: %w", err)
		}
	}

	if err := WriteAtomic(ctx, info.Path, content, info.Mode); err != nil {
		return result, err
	}
	result.Written = true
	return result, nil
}
