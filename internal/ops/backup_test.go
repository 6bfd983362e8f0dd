package ops

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

var storeFixtures = map[string]string{
	"templates.json": `{"users":{"default":{"templates":{"tpl_1":{"name":"Morning run","kind":"daily"}}}}}`,
	"quests.json":    `{"users":{"default":{"quests":{"quest_1":{"name":"Morning run","status":"unreceived"}}}}}`,
	"history.json":   `{"users":{"default":{"records":{"hist_1":{"finalStatus":"cleared","xpEarned":10}}}}}`,
	"progress.json":  `{"users":{"default":{"totalXP":10,"currentStreak":1}}}`,
}

func writeFixtures(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func readTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	got := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		got[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	return got
}

func TestBackupRestoreDataDir_RoundTrip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	writeFixtures(t, src, storeFixtures)

	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	if err := BackupDataDir(src, archive, zerolog.Nop()); err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("archive missing: %v", err)
	}

	restoreDir := filepath.Join(t.TempDir(), "restore")
	if err := RestoreDataDir(archive, restoreDir, zerolog.Nop()); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	got := readTree(t, restoreDir)
	if !reflect.DeepEqual(storeFixtures, got) {
		t.Fatalf("restored files mismatch:\nwant=%v\ngot=%v", storeFixtures, got)
	}
}

func TestBackupDataDir_SkipsNonStoreEntries(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	writeFixtures(t, src, storeFixtures)
	if err := os.WriteFile(filepath.Join(src, "questlog.log"), []byte("noise"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(src, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	if err := BackupDataDir(src, archive, zerolog.Nop()); err != nil {
		t.Fatalf("backup failed: %v", err)
	}

	restoreDir := filepath.Join(t.TempDir(), "restore")
	if err := RestoreDataDir(archive, restoreDir, zerolog.Nop()); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	got := readTree(t, restoreDir)
	if !reflect.DeepEqual(storeFixtures, got) {
		t.Fatalf("expected only store files restored:\nwant=%v\ngot=%v", storeFixtures, got)
	}
}

func TestRestoreDataDir_RejectsMalformedStoreFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	bad := map[string]string{}
	for k, v := range storeFixtures {
		bad[k] = v
	}
	bad["quests.json"] = `{"quests":{"quest_1":{}}}`
	writeFixtures(t, src, bad)

	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	if err := BackupDataDir(src, archive, zerolog.Nop()); err != nil {
		t.Fatalf("backup failed: %v", err)
	}

	target := filepath.Join(t.TempDir(), "out")
	err := RestoreDataDir(archive, target, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected restore to reject store file without users object")
	}
	if !strings.Contains(err.Error(), "quests.json") {
		t.Fatalf("error should name the bad file, got: %v", err)
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Fatalf("target dir should not be created on validation failure")
	}
}

func TestRestoreDataDir_RejectsPathTraversal(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "bad.tar.gz")
	f, err := os.Create(archive)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{
		Name:     "../escape.txt",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len("bad")),
	}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if _, err := tw.Write([]byte("bad")); err != nil {
		t.Fatalf("write body: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	if err := RestoreDataDir(archive, filepath.Join(t.TempDir(), "out"), zerolog.Nop()); err == nil {
		t.Fatalf("expected restore to reject path traversal archive")
	}
}
