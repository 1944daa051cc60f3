package fsops

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/logger"
)

// UpdateResult classifies the outcome of a single file update.
type UpdateResult string

const (
	ResultCreated        UpdateResult = "created"
	ResultUpdated        UpdateResult = "updated"
	ResultFailedToCreate UpdateResult = "failed to create"
	ResultFailedToUpdate UpdateResult = "failed to update"
	ResultNoUpdate       UpdateResult = "no update necessary"
)

// UpdateFile copies sourceFilepath over path when their contents differ,
// creating missing parent folders. Copy failures are reported in the result
// state, not as errors; a missing source file is an error.
func UpdateFile(path, sourceFilepath string) (UpdateResult, error) {
	sourceInfo, err := os.Stat(sourceFilepath)
	if err != nil || !sourceInfo.Mode().IsRegular() {
		return "", errors.Newf("source file %q not extant file", sourceFilepath)
	}

	var result UpdateResult
	if _, err := os.Stat(path); err == nil {
		same, err := SameFile(true, path, sourceFilepath)
		if err != nil {
			return "", err
		}
		if same {
			result = ResultNoUpdate
		} else if err := copyFile(sourceFilepath, path); err != nil {
			result = ResultFailedToUpdate
		} else {
			result = ResultUpdated
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", errors.Wrapf(err, "create folder for %q", path)
		}
		if err := copyFile(sourceFilepath, path); err != nil {
			result = ResultFailedToCreate
		} else {
			result = ResultCreated
		}
	}

	switch result {
	case ResultCreated, ResultUpdated:
		logger.Logger.Infow("File "+string(result), "path", path, "source", sourceFilepath)
	case ResultFailedToCreate, ResultFailedToUpdate:
		logger.Logger.Warnw("File "+string(result), "path", path, "source", sourceFilepath)
	default:
		logger.Logger.Debugw("File "+string(result), "path", path, "source", sourceFilepath)
	}
	return result, nil
}

func copyFile(sourcePath, destinationPath string) error {
	// Replica targets may carry read-only permissions from a previous copy.
	if info, err := os.Stat(destinationPath); err == nil {
		_ = os.Chmod(destinationPath, info.Mode()|0o200)
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(destinationPath, data, 0o644); err != nil {
		return err
	}
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return err
	}
	return os.Chtimes(destinationPath, time.Now(), sourceInfo.ModTime())
}

// ReplicaOptions adjusts UpdateReplicaFolder traversal and placement.
type ReplicaOptions struct {
	// TopLevelOnly skips files in subfolders of the source.
	TopLevelOnly bool
	// FlattenTree places every file directly in the replica root regardless
	// of where it sits in the source hierarchy.
	FlattenTree bool
	// FileExtensions filters source files by extension when non-empty.
	FileExtensions []string
}

// UpdateReplicaFolder updates the files of a replica folder from a source
// folder, returning counts per update result state. Both folders must exist.
func UpdateReplicaFolder(folderPath, sourcePath string, opts ReplicaOptions) (map[UpdateResult]int, error) {
	startTime := time.Now()
	for _, repository := range []string{folderPath, sourcePath} {
		if info, err := os.Stat(repository); err != nil || !info.IsDir() {
			return nil, errors.Newf("%q not accessible folder", repository)
		}
	}
	logger.Logger.Infow("Start: Update replica folder",
		"folder", folderPath, "source", sourcePath)

	sourceFilepaths, err := FolderFilepaths(sourcePath, opts.TopLevelOnly, opts.FileExtensions)
	if err != nil {
		return nil, err
	}

	states := make(map[UpdateResult]int)
	for _, sourceFilepath := range sourceFilepaths {
		var destination string
		if opts.FlattenTree {
			destination = filepath.Join(folderPath, filepath.Base(sourceFilepath))
		} else {
			relative, err := filepath.Rel(sourcePath, sourceFilepath)
			if err != nil {
				return nil, errors.Wrapf(err, "relativize %q", sourceFilepath)
			}
			destination = filepath.Join(folderPath, relative)
		}
		result, err := UpdateFile(destination, sourceFilepath)
		if err != nil {
			return nil, err
		}
		states[result]++
	}

	for state, count := range states {
		logger.Logger.Infow("Replica files "+string(state), "count", count)
	}
	logger.Logger.Infow("End: Update replica folder",
		"folder", folderPath, "elapsed", time.Since(startTime).String())
	return states, nil
}
