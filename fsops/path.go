// Package fsops manages processing artifacts on disk: folder archives,
// replica-folder synchronization, and path/file inspection helpers.
package fsops

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cartops/proctools/errors"
)

// FolderFilepaths returns paths of files under folderPath. With topLevelOnly
// subfolders are skipped. A non-empty fileExtensions set filters by extension
// (period included, case-insensitive); use "" to match files without one.
func FolderFilepaths(folderPath string, topLevelOnly bool, fileExtensions []string) ([]string, error) {
	extensions := make(map[string]bool, len(fileExtensions))
	for _, ext := range fileExtensions {
		extensions[strings.ToLower(ext)] = true
	}

	var filepaths []string
	err := filepath.WalkDir(folderPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if topLevelOnly && path != folderPath {
				return filepath.SkipDir
			}
			return nil
		}
		if len(extensions) > 0 && !extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		filepaths = append(filepaths, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk folder %q", folderPath)
	}
	return filepaths, nil
}

// FlattenedPath renders a path as a single name with separators replaced,
// collapsing runs of the replacement and trimming it from the ends.
func FlattenedPath(path, separatorReplacement string) string {
	for _, separator := range []string{"/", "\\", ":"} {
		path = strings.ReplaceAll(path, separator, separatorReplacement)
	}
	doubled := separatorReplacement + separatorReplacement
	for strings.Contains(path, doubled) {
		path = strings.ReplaceAll(path, doubled, separatorReplacement)
	}
	return strings.Trim(path, separatorReplacement)
}

// DateFileModified returns the file's modification time, or nil when the
// path does not name an existing regular file.
func DateFileModified(path string) *time.Time {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	modified := info.ModTime()
	return &modified
}

// SameFile reports whether all given files have identical contents. A path
// that does not name an existing file makes the set differ (false, no error)
// when notExistsOK is set, and is an error otherwise.
func SameFile(notExistsOK bool, filepaths ...string) (bool, error) {
	if len(filepaths) < 2 {
		return true, nil
	}
	for _, path := range filepaths {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			if notExistsOK {
				return false, nil
			}
			return false, errors.Newf("%q not an extant file", path)
		}
	}
	for i := 0; i < len(filepaths)-1; i++ {
		same, err := sameContents(filepaths[i], filepaths[i+1])
		if err != nil {
			return false, err
		}
		if !same {
			return false, nil
		}
	}
	return true, nil
}

func sameContents(pathA, pathB string) (bool, error) {
	infoA, err := os.Stat(pathA)
	if err != nil {
		return false, errors.Wrapf(err, "stat %q", pathA)
	}
	infoB, err := os.Stat(pathB)
	if err != nil {
		return false, errors.Wrapf(err, "stat %q", pathB)
	}
	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	fileA, err := os.Open(pathA)
	if err != nil {
		return false, errors.Wrapf(err, "open %q", pathA)
	}
	defer fileA.Close()
	fileB, err := os.Open(pathB)
	if err != nil {
		return false, errors.Wrapf(err, "open %q", pathB)
	}
	defer fileB.Close()

	bufA := make([]byte, 64*1024)
	bufB := make([]byte, 64*1024)
	for {
		nA, errA := io.ReadFull(fileA, bufA)
		nB, errB := io.ReadFull(fileB, bufB)
		if nA != nB || !bytes.Equal(bufA[:nA], bufB[:nB]) {
			return false, nil
		}
		if errA == io.EOF || errA == io.ErrUnexpectedEOF {
			return true, nil
		}
		if errA != nil {
			return false, errors.Wrapf(errA, "read %q", pathA)
		}
		if errB != nil {
			return false, errors.Wrapf(errB, "read %q", pathB)
		}
	}
}
