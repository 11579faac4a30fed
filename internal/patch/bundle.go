package patch

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// bundleEpoch is stamped on every entry so identical file lists produce
// identical archives.
var bundleEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// BundleContentType is the media type of Bundle output.
const BundleContentType = "application/zip"

// Bundle packs files into a zip archive rooted at the repository root.
func Bundle(files []File) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		name := strings.TrimPrefix(f.Path, "/")
		if name == "" {
			return nil, fmt.Errorf("patch: bundle entry has empty path")
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: bundleEpoch,
		})
		if err != nil {
			return nil, fmt.Errorf("patch: bundle %s: %w", name, err)
		}
		if _, err := w.Write([]byte(f.Content)); err != nil {
			return nil, fmt.Errorf("patch: bundle %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("patch: close bundle: %w", err)
	}
	return buf.Bytes(), nil
}
