package fsops

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/logger"
)

// ArchiveFolder zips the files under folderPath into a new archive at
// archivePath, returning the archive path. File names whose folder-relative
// path contains any exclude pattern (case-insensitive substring match) are
// skipped. With includeBaseFolder the folder's own name heads every archive
// path.
func ArchiveFolder(folderPath, archivePath string, includeBaseFolder bool, excludePatterns []string) (string, error) {
	filepaths, err := FolderFilepaths(folderPath, false, nil)
	if err != nil {
		return "", err
	}

	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return "", errors.Wrapf(err, "create archive %q", archivePath)
	}
	defer archiveFile.Close()
	archive := zip.NewWriter(archiveFile)

	for _, path := range filepaths {
		relative, err := filepath.Rel(folderPath, path)
		if err != nil {
			return "", errors.Wrapf(err, "relativize %q", path)
		}
		if excluded(relative, excludePatterns) {
			continue
		}
		name := filepath.ToSlash(relative)
		if includeBaseFolder {
			name = filepath.Base(folderPath) + "/" + name
		}
		if err := writeArchiveFile(archive, name, path); err != nil {
			return "", err
		}
	}
	if err := archive.Close(); err != nil {
		return "", errors.Wrapf(err, "finalize archive %q", archivePath)
	}
	if err := archiveFile.Close(); err != nil {
		return "", errors.Wrapf(err, "close archive %q", archivePath)
	}
	return archivePath, nil
}

func excluded(relativePath string, patterns []string) bool {
	lowered := strings.ToLower(relativePath)
	for _, pattern := range patterns {
		if strings.Contains(lowered, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func writeArchiveFile(archive *zip.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "stat %q", path)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return errors.Wrapf(err, "header for %q", path)
	}
	header.Name = name
	header.Method = zip.Deflate

	writer, err := archive.CreateHeader(header)
	if err != nil {
		return errors.Wrapf(err, "add %q to archive", name)
	}
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %q", path)
	}
	defer file.Close()
	if _, err := io.Copy(writer, file); err != nil {
		return errors.Wrapf(err, "write %q to archive", name)
	}
	return nil
}

// ExtractArchive extracts a zip archive into extractPath. An invalid archive
// is logged and reported as false, not an error; extraction failures on a
// valid archive are errors.
func ExtractArchive(archivePath, extractPath string) (bool, error) {
	archive, err := zip.OpenReader(archivePath)
	if err != nil {
		logger.Logger.Warnw("Not a valid archive", "path", archivePath)
		return false, nil
	}
	defer archive.Close()

	for _, entry := range archive.File {
		if err := extractArchiveFile(entry, extractPath); err != nil {
			return false, err
		}
	}
	return true, nil
}

func extractArchiveFile(entry *zip.File, extractPath string) error {
	// Reject entries that would land outside the extract folder.
	destination := filepath.Join(extractPath, filepath.FromSlash(entry.Name))
	if !strings.HasPrefix(destination, filepath.Clean(extractPath)+string(os.PathSeparator)) {
		return errors.Newf("archive entry %q escapes extract folder", entry.Name)
	}
	if entry.FileInfo().IsDir() {
		return os.MkdirAll(destination, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return errors.Wrapf(err, "create folder for %q", destination)
	}

	reader, err := entry.Open()
	if err != nil {
		return errors.Wrapf(err, "open archive entry %q", entry.Name)
	}
	defer reader.Close()
	file, err := os.Create(destination)
	if err != nil {
		return errors.Wrapf(err, "create %q", destination)
	}
	defer file.Close()
	if _, err := io.Copy(file, reader); err != nil {
		return errors.Wrapf(err, "extract %q", entry.Name)
	}
	return nil
}
