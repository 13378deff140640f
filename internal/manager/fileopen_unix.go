//go:build !windows

package manager

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/clarity/internal/errors"
)

const noFollow = syscall.O_NOFOLLOW | syscall.O_CLOEXEC

// createBackupTemp creates the temp file an export is staged in. The name is
// random, so O_EXCL fails rather than truncating anything already there.
func createBackupTemp(path string) (*os.File, error) {
	fd, err := syscall.Open(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY|noFollow, 0600)
	switch {
	case err == nil:
		return os.NewFile(uintptr(fd), path), nil
	case stderrors.Is(err, syscall.ELOOP):
		return nil, errors.NewInvalidRequest("backup file path is a symlink")
	default:
		return nil, err
	}
}

// openBackupFile opens a backup bundle for import, refusing a symlinked file.
func openBackupFile(path string) (*os.File, error) {
	fd, err := syscall.Open(path, os.O_RDONLY|noFollow, 0)
	switch {
	case err == nil:
		return os.NewFile(uintptr(fd), path), nil
	case stderrors.Is(err, syscall.ELOOP):
		return nil, errors.NewInvalidRequest("backup file path is a symlink")
	case stderrors.Is(err, syscall.ENOENT):
		return nil, errors.NewFileNotFound(path)
	default:
		return nil, err
	}
}
