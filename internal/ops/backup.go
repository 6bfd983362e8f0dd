// Package ops holds operational helpers for the data directory: the
// tar.gz backup the CLI exposes, and its restore counterpart.
package ops

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// The flat JSON stores that make up a quest-log data directory. Backup
// archives these (plus any other .json file found next to them, so a
// future store is not silently dropped); restore validates them before
// writing.
var storeFiles = map[string]bool{
	"templates.json": true,
	"quests.json":    true,
	"history.json":   true,
	"progress.json":  true,
}

// BackupDataDir archives the data directory's JSON stores into a tar.gz
// at archivePath. Log files, lock files and subdirectories are not part
// of the data set and are skipped.
func BackupDataDir(srcDir, archivePath string, logger zerolog.Logger) error {
	srcDir = filepath.Clean(strings.TrimSpace(srcDir))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if srcDir == "" || archivePath == "" {
		return fmt.Errorf("srcDir and archivePath are required")
	}
	info, err := os.Stat(srcDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("source is not a directory: %s", srcDir)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return err
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	f, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	tw := tar.NewWriter(gz)
	defer tw.Close()

	archived := 0
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasSuffix(name, ".json") {
			logger.Debug().Str("file", name).Msg("skipping non-store entry")
			continue
		}

		fi, err := e.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return err
		}
		hdr.Name = name
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		src, err := os.Open(filepath.Join(srcDir, name))
		if err != nil {
			return err
		}
		n, err := io.Copy(tw, src)
		src.Close()
		if err != nil {
			return err
		}

		logger.Debug().Str("file", name).Int64("bytes", n).
			Bool("known_store", storeFiles[name]).Msg("store file archived")
		archived++
	}

	logger.Info().Int("files", archived).Str("archive", archivePath).Msg("backup written")
	return nil
}

// RestoreDataDir unpacks an archive produced by BackupDataDir. Known
// store files are validated against the per-user JSON layout before
// anything is written, so a corrupt archive cannot clobber a working
// data directory. The server should not be running against targetDir
// while this happens.
func RestoreDataDir(archivePath, targetDir string, logger zerolog.Logger) error {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if archivePath == "" || targetDir == "" {
		return fmt.Errorf("archivePath and targetDir are required")
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	type restoredFile struct {
		name string
		body []byte
	}
	var files []restoredFile

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		rel, err := sanitizeArchiveRelPath(hdr.Name)
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg {
			// The data set is flat JSON files; anything else is noise.
			logger.Debug().Str("file", rel).Msg("skipping non-regular archive entry")
			continue
		}

		b, err := io.ReadAll(tr)
		if err != nil {
			return err
		}
		if storeFiles[rel] {
			if err := validateStore(rel, b); err != nil {
				return err
			}
		}
		files = append(files, restoredFile{name: rel, body: b})
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return err
	}
	for _, rf := range files {
		outPath := filepath.Join(targetDir, rf.name)
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outPath, rf.body, 0o644); err != nil {
			return err
		}
		logger.Debug().Str("file", rf.name).Int("bytes", len(rf.body)).Msg("store file restored")
	}

	logger.Info().Int("files", len(files)).Str("target", targetDir).Msg("restore finished")
	return nil
}

// validateStore checks that a known store file carries the per-user
// layout every repo writes: a top-level "users" object.
func validateStore(name string, b []byte) error {
	var doc struct {
		Users map[string]json.RawMessage `json:"users"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("archive entry %s is not a valid store file: %w", name, err)
	}
	if doc.Users == nil {
		return fmt.Errorf("archive entry %s is missing the users object", name)
	}
	return nil
}

func sanitizeArchiveRelPath(name string) (string, error) {
	name = filepath.Clean(strings.TrimSpace(name))
	if name == "." || name == "" {
		return "", fmt.Errorf("invalid archive entry path")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("invalid absolute archive entry path: %s", name)
	}
	if strings.HasPrefix(name, ".."+string(filepath.Separator)) || name == ".." {
		return "", fmt.Errorf("invalid archive entry path traversal: %s", name)
	}
	return name, nil
}
