//go:build windows

package manager

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/hpungsan/clarity/internal/errors"
)

// createBackupTemp creates the temp file an export is staged in. Symlinks in
// the path were already refused by CheckBackupPath.
func createBackupTemp(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
}

// openBackupFile opens a backup bundle for import.
func openBackupFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.NewFileNotFound(path)
	}
	return f, err
}
