package binary

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/ZebulonRouseFrantzich/wdb/internal/driver"
)

// ErrEmptyExtraction is returned when an archive yields no files, which
// happens for corrupt or license-only archives.
var ErrEmptyExtraction = errors.New("extraction produced no files")

// Extractor unpacks driver archives one entry at a time.
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks archivePath into destDir. Entries whose name contains
// "license" (any case) are skipped and existing files are overwritten.
// destDir must hold at least one regular file afterwards.
func (e *Extractor) Extract(archivePath, destDir string, kind driver.ArchiveKind) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	var err error
	switch kind {
	case driver.Zip:
		err = e.extractZip(archivePath, destDir)
	case driver.TarGz:
		err = e.extractTarGz(archivePath, destDir)
	default:
		return fmt.Errorf("unsupported archive kind %q", kind)
	}
	if err != nil {
		return err
	}

	n, err := countFiles(destDir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", destDir, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyExtraction, destDir)
	}
	return nil
}

func (e *Extractor) extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if skipEntry(f.Name) {
			continue
		}

		target, err := entryTarget(destDir, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		err = writeEntry(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Extractor) extractTarGz(archivePath, destDir string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}
		if skipEntry(header.Name) {
			continue
		}

		target, err := entryTarget(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeEntry(target, tarReader, os.FileMode(header.Mode)); err != nil {
				return err
			}
		default:
			// Links and special files are never part of a driver release
			continue
		}
	}
	return nil
}

func skipEntry(name string) bool {
	return strings.Contains(strings.ToLower(name), "license")
}

// entryTarget joins name onto destDir and rejects path traversal.
func entryTarget(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	root := filepath.Clean(destDir)
	if target == root {
		return target, nil
	}
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal file path: %s", name)
	}
	return target, nil
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}

	if _, err := io.Copy(outFile, r); err != nil {
		outFile.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}
	return outFile.Close()
}

func countFiles(dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			n++
		}
		return nil
	})
	return n, err
}

// SetExecutable adds the owner-execute bit to path.
func SetExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.Chmod(path, info.Mode().Perm()|0100); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}

// copyFile copies src to dst, replacing dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	return writeEntry(dst, in, 0644)
}
