// Package media orchestrates document conversions performed by external
// tooling, chiefly image-to-PDF conversion for scanned record imagery.
package media

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/fsops"
	"github.com/cartops/proctools/logger"
)

// ImageFileExtensions are the known image file extensions.
var ImageFileExtensions = []string{
	".bmp", ".dcx", ".emf", ".gif", ".jp2", ".jpg", ".jpeg", ".pcd",
	".pcx", ".pic", ".png", ".psd", ".tga", ".tif", ".tiff", ".wmf",
}

// WorldFileExtensions are the known image world file extensions.
var WorldFileExtensions = []string{
	".j2w", ".jgw", ".jpgw", ".pgw", ".pngw", ".tfw", ".tifw", ".wld",
}

// IsImageFile reports whether the path carries a known image extension.
func IsImageFile(path string) bool {
	return hasExtension(path, ImageFileExtensions)
}

// IsWorldFile reports whether the path carries a known world file extension.
func IsWorldFile(path string) bool {
	return hasExtension(path, WorldFileExtensions)
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range extensions {
		if ext == known {
			return true
		}
	}
	return false
}

// DirectoryImageCount counts image files under folderPath, subfolders
// included.
func DirectoryImageCount(folderPath string) (int, error) {
	filepaths, err := fsops.FolderFilepaths(folderPath, false, ImageFileExtensions)
	if err != nil {
		return 0, err
	}
	return len(filepaths), nil
}

// ConversionResult classifies the outcome of a single conversion.
type ConversionResult string

const (
	ResultConverted       ConversionResult = "converted"
	ResultFailedToConvert ConversionResult = "failed to convert"
	ResultNoConversion    ConversionResult = "no conversion necessary"
)

// Converter runs a configured command-line tool to convert image files to
// PDFs. The tool is known to return before its output file is fully written,
// so each conversion polls for the output up to a configured wait.
type Converter struct {
	commandArgs []string
	wait        time.Duration

	runCommand func(ctx context.Context, name string, args ...string) error
}

// NewConverter parses the configured conversion command line. The command
// string carries the tool path and any fixed flags, shell-quoted.
func NewConverter(command string, wait time.Duration) (*Converter, error) {
	commandArgs, err := shellquote.Split(command)
	if err != nil {
		return nil, errors.Wrapf(err, "parse conversion command %q", command)
	}
	if len(commandArgs) == 0 {
		return nil, errors.New("conversion command not configured")
	}
	return &Converter{
		commandArgs: commandArgs,
		wait:        wait,
		runCommand: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}, nil
}

// ConvertImageToPDF converts one image file to a PDF at outputPath. With
// overwriteOlderOnly an output newer than its source is left alone. A
// conversion the tool fails to materialize within the wait window is a
// result state, not an error.
func (c *Converter) ConvertImageToPDF(ctx context.Context, imagePath, outputPath string, overwriteOlderOnly bool) (ConversionResult, error) {
	imageModified := fsops.DateFileModified(imagePath)
	if imageModified == nil {
		return "", errors.Newf("image file %q not extant file", imagePath)
	}
	if overwriteOlderOnly {
		if outputModified := fsops.DateFileModified(outputPath); outputModified != nil &&
			outputModified.After(*imageModified) {
			return ResultNoConversion, nil
		}
	}

	args := append(append([]string(nil), c.commandArgs[1:]...),
		"-i", imagePath, "-o", outputPath, "-g", "overwrite")
	if err := c.runCommand(ctx, c.commandArgs[0], args...); err != nil {
		return "", errors.Wrapf(err, "run conversion for %q", imagePath)
	}

	// The tool exits before the output lands on disk.
	if !c.awaitFile(ctx, outputPath) {
		logger.Logger.Warnw("Conversion produced no output file",
			"image", imagePath, "output", outputPath)
		return ResultFailedToConvert, nil
	}
	return ResultConverted, nil
}

func (c *Converter) awaitFile(ctx context.Context, path string) bool {
	const step = 100 * time.Millisecond
	for waited := time.Duration(0); ; waited += step {
		if _, err := os.Stat(path); err == nil {
			return true
		}
		if waited >= c.wait || ctx.Err() != nil {
			return false
		}
		time.Sleep(step)
	}
}

// ConvertImagesToPDF converts each image file to a PDF alongside it (same
// name, .pdf extension), returning counts per conversion result state.
func (c *Converter) ConvertImagesToPDF(ctx context.Context, imagePaths []string, overwriteOlderOnly bool) (map[ConversionResult]int, error) {
	startTime := time.Now()
	logger.Logger.Infow("Start: Convert images to PDFs", "count", len(imagePaths))

	states := make(map[ConversionResult]int)
	for _, imagePath := range imagePaths {
		outputPath := strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".pdf"
		result, err := c.ConvertImageToPDF(ctx, imagePath, outputPath, overwriteOlderOnly)
		if err != nil {
			return nil, err
		}
		states[result]++
	}

	for state, count := range states {
		logger.Logger.Infow("Images "+string(state), "count", count)
	}
	logger.Logger.Infow("End: Convert", "elapsed", time.Since(startTime).String())
	return states, nil
}
