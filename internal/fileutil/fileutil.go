// Package fileutil provides the file move and copy primitives the assembler
// and library integrator are built on.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// CopyFile streams src to dst with default permissions (0o644), creating
// parent directories as needed.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// MoveFile renames src to dst, falling back to copy+remove when the rename
// crosses a filesystem boundary. Parent directories of dst are created.
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := CopyFile(src, dst); err != nil {
			return fmt.Errorf("cross-device copy: %w", err)
		}
		if err := os.Remove(src); err != nil {
			return fmt.Errorf("remove source after copy: %w", err)
		}
		return nil
	}
	return renameErr
}

// MoveDir relocates an entire directory, falling back to a recursive
// copy+remove across filesystem boundaries.
func MoveDir(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(renameErr, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return renameErr
	}
	if err := CopyDir(src, dst); err != nil {
		return fmt.Errorf("cross-device directory copy: %w", err)
	}
	return os.RemoveAll(src)
}

// CopyDir copies the regular files under src into dst, preserving the
// relative layout. Non-regular entries are skipped.
func CopyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		return CopyFile(path, target)
	})
}

// FileSize returns the size of a regular file, or 0 with an error when the
// path is missing or not a regular file.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", path)
	}
	return info.Size(), nil
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
