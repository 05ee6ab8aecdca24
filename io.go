package shrink

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// inputExtensions lists the extensions FindImages accepts, lower-cased.
var inputExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".bmp":  {},
	".tiff": {},
}

// optimizedSuffix is appended to the input stem to name outputs.
const optimizedSuffix = "_optimized"

// IsImageFile reports whether path has a supported input extension, in any case.
func IsImageFile(path string) bool {
	_, ok := inputExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// FindImages lists the image files directly inside dir, sorted by name.
// Subdirectories are not searched.
func FindImages(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "shrink: list %q", dir)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// OutputPath names the output for input: <stem>_optimized<ext-for-format>,
// placed in outDir, or next to input when outDir is empty.
func OutputPath(input string, format Format, outDir string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	return filepath.Join(outDir, stem+optimizedSuffix+format.Extension())
}

// Open reads and decodes path.
func (o *Optimizer) Open(path string) (Image, int64, error) {
	data, err := afero.ReadFile(o.fs, path)
	if err != nil {
		return Image{}, 0, &DecodeError{Path: path, Err: errors.Wrap(err, "read")}
	}
	img, err := o.codec.Decode(data)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = path
		}
		return Image{}, 0, err
	}
	return img, int64(len(data)), nil
}

// writeFileAtomic writes data to a uniquely named sibling temp file and
// renames it over path, so readers never observe a partial image.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	tmp := path + "." + uuid.New().String() + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %q", tmp)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return errors.Wrapf(err, "rename to %q", path)
	}
	return nil
}

// ensureDir creates dir if absent. Concurrent callers may race safely.
func ensureDir(fs afero.Fs, dir string) error {
	if err := fs.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrapf(err, "shrink: create %q", dir)
	}
	return nil
}
