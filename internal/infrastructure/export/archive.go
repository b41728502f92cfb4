// Package export packs the application tree into a zip archive for download.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"

	"github.com/schadensbericht/portal/internal/core/domain"
)

var skippedDirs = map[string]struct{}{
	".git":        {},
	"__pycache__": {},
}

// Archiver writes the configured entries below Root into a zip archive.
type Archiver struct {
	root     string
	include  []string
	filename string
	log      zerolog.Logger
}

// NewArchiver returns an Archiver for root. include lists files and
// directories relative to root; an empty list archives the whole tree.
// filename is the archive's own name and is never packed into itself.
func NewArchiver(root string, include []string, filename string, log zerolog.Logger) *Archiver {
	return &Archiver{root: root, include: include, filename: filename, log: log}
}

// Write streams the archive to w. Every failure wraps domain.ErrExportFailed.
func (a *Archiver) Write(ctx context.Context, w io.Writer) error {
	zw := zip.NewWriter(w)

	entries := a.include
	if len(entries) == 0 {
		entries = []string{"."}
	}

	for _, entry := range entries {
		if err := a.addEntry(ctx, zw, entry); err != nil {
			_ = zw.Close()
			return fmt.Errorf("%w: %w", domain.ErrExportFailed, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: finalize archive: %w", domain.ErrExportFailed, err)
	}
	return nil
}

func (a *Archiver) addEntry(ctx context.Context, zw *zip.Writer, entry string) error {
	start := filepath.Join(a.root, filepath.FromSlash(strings.TrimSpace(entry)))
	if rel, err := filepath.Rel(a.root, start); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("entry %q is outside the export root", entry)
	}

	info, err := os.Stat(start)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			a.log.Warn().Str("entry", entry).Msg("export entry not found, skipping")
			return nil
		}
		return err
	}
	if !info.IsDir() {
		if a.skipFile(info.Name()) {
			return nil
		}
		return a.addFile(zw, start)
	}

	return filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if _, skip := skippedDirs[d.Name()]; skip && p != start {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || a.skipFile(d.Name()) {
			return nil
		}
		return a.addFile(zw, p)
	})
}

func (a *Archiver) skipFile(name string) bool {
	return name == a.filename ||
		strings.HasSuffix(name, ".pyc") ||
		strings.HasPrefix(name, ".env")
}

func (a *Archiver) addFile(zw *zip.Writer, p string) error {
	rel, err := filepath.Rel(a.root, p)
	if err != nil {
		return err
	}

	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = path.Clean(filepath.ToSlash(rel))
	hdr.Method = zip.Deflate

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("copy %s: %w", hdr.Name, err)
	}
	return nil
}
