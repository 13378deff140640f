package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/hpungsan/clarity/internal/config"
	"github.com/hpungsan/clarity/internal/errors"
)

// BackupAccess says what is about to happen to a backup file.
type BackupAccess int

const (
	ReadBackup  BackupAccess = iota // import from a bundle file
	WriteBackup                     // export a bundle file
)

// BackupExt is the only extension accepted for written bundle files.
const BackupExt = ".json"

// CheckBackupPath vets a caller-supplied bundle path and returns it absolute.
//
// Written bundles must land directly inside the exports directory or a
// configured allowed_paths entry unless allow_unsafe_paths is set. Read
// bundles may live anywhere under any name; the import parser rejects
// files that are not bundles. A symlinked file is refused in both
// directions.
func CheckBackupPath(path string, access BackupAccess, baseDir string, cfg *config.Config) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.NewInvalidRequest("path is required")
	}
	if hasParentRef(path) {
		return "", errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}
	if access == WriteBackup && !strings.EqualFold(filepath.Ext(path), BackupExt) {
		return "", errors.NewInvalidRequest("backup files must have a .json extension")
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	switch access {
	case WriteBackup:
		if err := checkWriteDir(filepath.Dir(abs), baseDir, cfg); err != nil {
			return "", err
		}
	case ReadBackup:
		if _, err := os.Stat(abs); os.IsNotExist(err) {
			return "", errors.NewFileNotFound(path)
		}
	}

	if isSymlink(abs) {
		return "", errors.NewInvalidRequest("path must not be a symlink")
	}
	return abs, nil
}

// checkWriteDir requires dir to be one of the export directories, not a
// subdirectory of one, so no intermediate component can be swapped later.
func checkWriteDir(dir, baseDir string, cfg *config.Config) error {
	if cfg != nil && cfg.AllowUnsafePaths {
		return nil
	}
	dirs, err := exportDirs(baseDir, cfg)
	if err != nil {
		return err
	}
	if !slices.Contains(dirs, filepath.Clean(dir)) {
		return errors.NewInvalidRequest(fmt.Sprintf(
			"backups can only be written directly into one of %v", dirs))
	}
	if isSymlink(dir) {
		return errors.NewInvalidRequest("parent directory must not be a symlink")
	}
	return nil
}

// ExportsDir returns baseDir/exports.
func ExportsDir(baseDir string) string {
	return filepath.Join(baseDir, "exports")
}

// exportDirs lists the exports directory and the absolute allowed_paths
// entries, each resolved through a symlink if it is one.
func exportDirs(baseDir string, cfg *config.Config) ([]string, error) {
	candidates := []string{ExportsDir(baseDir)}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				candidates = append(candidates, p)
			}
		}
	}

	dirs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		abs, err := filepath.Abs(filepath.Clean(c))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if isSymlink(abs) {
			if abs, err = filepath.EvalSymlinks(abs); err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
		}
		dirs = append(dirs, abs)
	}
	return dirs, nil
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// hasParentRef reports whether any element of path is "..", splitting on
// both separators so user input with forward slashes is caught on Windows.
func hasParentRef(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SanitizeForFilename replaces every character outside [a-zA-Z0-9] with '-'.
// Empty input yields the fallback.
func SanitizeForFilename(s, fallback string) string {
	if s == "" {
		s = fallback
	}
	return nonAlnum.ReplaceAllString(s, "-")
}
