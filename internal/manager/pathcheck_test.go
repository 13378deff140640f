package manager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/clarity/internal/config"
	"github.com/hpungsan/clarity/internal/errors"
)

func TestCheckBackupPath_Rejections(t *testing.T) {
	baseDir := t.TempDir()
	strict := config.DefaultConfig()
	unsafe := config.DefaultConfig()
	unsafe.AllowUnsafePaths = true

	tests := []struct {
		name string
		path string
		cfg  *config.Config
	}{
		{"blank", "   ", unsafe},
		{"parent traversal", "../backup.json", strict},
		{"mid-path traversal", "/tmp/../etc/backup.json", unsafe},
		{"forward slash traversal", "exports/../../backup.json", unsafe},
		{"no extension", "/tmp/backup", unsafe},
		{"jsonl extension", "/tmp/backup.jsonl", unsafe},
		{"outside exports dir", filepath.Join(t.TempDir(), "backup.json"), strict},
		{"nested in exports dir", filepath.Join(ExportsDir(baseDir), "sub", "out.json"), strict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CheckBackupPath(tc.path, WriteBackup, baseDir, tc.cfg)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("CheckBackupPath(%q) = %v, want INVALID_REQUEST", tc.path, err)
			}
		})
	}
}

func TestCheckBackupPath_WriteTargets(t *testing.T) {
	baseDir := t.TempDir()
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed, "relative/ignored"}

	want := filepath.Join(ExportsDir(baseDir), "ok.json")
	got, err := CheckBackupPath(want, WriteBackup, baseDir, cfg)
	if err != nil {
		t.Fatalf("exports dir rejected: %v", err)
	}
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}

	if _, err := CheckBackupPath(filepath.Join(allowed, "Calm-Minds-Backup.JSON"), WriteBackup, baseDir, cfg); err != nil {
		t.Errorf("allowed path rejected: %v", err)
	}
}

func TestCheckBackupPath_ReadFromAnywhere(t *testing.T) {
	cfg := config.DefaultConfig()
	dir := t.TempDir()

	for _, name := range []string{"downloaded.json", "backup.txt", "backup"} {
		file := filepath.Join(dir, name)
		if err := os.WriteFile(file, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := CheckBackupPath(file, ReadBackup, t.TempDir(), cfg); err != nil {
			t.Errorf("read of %s rejected: %v", name, err)
		}
	}

	_, err := CheckBackupPath(filepath.Join(dir, "missing.json"), ReadBackup, t.TempDir(), cfg)
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("missing file: err = %v, want FILE_NOT_FOUND", err)
	}

	_, err = CheckBackupPath("../backup.txt", ReadBackup, t.TempDir(), cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("traversal: err = %v, want INVALID_REQUEST", err)
	}
}

func TestCheckBackupPath_SymlinkRejectedEvenWithUnsafePaths(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	target := filepath.Join(tmpDir, "target.json")
	if err := os.WriteFile(target, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(tmpDir, "link.json")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	for _, access := range []BackupAccess{ReadBackup, WriteBackup} {
		_, err := CheckBackupPath(link, access, tmpDir, cfg)
		if !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("access %d: err = %v, want INVALID_REQUEST", access, err)
		}
	}
}

func TestHasParentRef(t *testing.T) {
	tests := map[string]bool{
		"/home/user/file.json": false,
		"../file.json":         true,
		"/home/../etc/passwd":  true,
		"./file.json":          false,
		"file..name.json":      false,
	}
	for path, want := range tests {
		if got := hasParentRef(path); got != want {
			t.Errorf("hasParentRef(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"CalmMinds", "CalmMinds"},
		{"Calm Minds Therapy", "Calm-Minds-Therapy"},
		{"Dr. Lee's Practice!", "Dr--Lee-s-Practice-"},
		{"path/to\\file", "path-to-file"},
		{"", "Practice"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := SanitizeForFilename(tc.input, "Practice"); got != tc.expected {
				t.Errorf("SanitizeForFilename(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
