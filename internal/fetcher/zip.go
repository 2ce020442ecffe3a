package fetcher

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FetchZIPEntry downloads the archive at url into memory and extracts the
// entry named entry into destDir. Returns the path of the extracted file.
func FetchZIPEntry(ctx context.Context, f Fetcher, url, entry, destDir string) (string, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return "", eris.Wrapf(err, "zip: read archive from %s", url)
	}

	zap.L().Debug("zip: archive downloaded",
		zap.String("url", url),
		zap.String("size", humanize.Bytes(uint64(len(data)))),
	)

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}

	for _, zf := range r.File {
		if zf.Name == entry {
			return extractZIPEntry(zf, destDir)
		}
	}

	return "", eris.Errorf("zip: file %q not found in archive", entry)
}

// extractZIPEntry writes a single non-directory entry below destDir.
func extractZIPEntry(f *zip.File, destDir string) (string, error) {
	if f.FileInfo().IsDir() {
		return "", eris.Errorf("zip: entry %q is a directory", f.Name)
	}

	// Sanitize against zip slip
	destPath := filepath.Join(destDir, f.Name)
	rel, err := filepath.Rel(filepath.Clean(destDir), filepath.Clean(destPath))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", eris.Errorf("zip: illegal path %q (zip slip attempt)", f.Name)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", eris.Wrap(err, "zip: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: create file")
	}

	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return "", eris.Wrap(err, "zip: write file")
	}
	if err := out.Close(); err != nil {
		return "", eris.Wrap(err, "zip: close file")
	}

	return destPath, nil
}
