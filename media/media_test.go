package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("scan.TIF"))
	assert.True(t, IsImageFile(`C:\records\permit_0042.jpg`))
	assert.False(t, IsImageFile("permit_0042.pdf"))
	assert.False(t, IsImageFile("no_extension"))
}

func TestIsWorldFile(t *testing.T) {
	assert.True(t, IsWorldFile("aerial.tfw"))
	assert.False(t, IsWorldFile("aerial.tif"))
}

func TestDirectoryImageCount(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.png", "sub/c.tif", "notes.txt"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	count, err := DirectoryImageCount(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestNewConverter(t *testing.T) {
	converter, err := NewConverter(`C:\apps\image2pdf.exe -r LICENSEKEY`, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{`C:\apps\image2pdf.exe`, "-r", "LICENSEKEY"}, converter.commandArgs)

	_, err = NewConverter("", time.Second)
	assert.Error(t, err)
}

func newTestConverter(t *testing.T, run func(ctx context.Context, name string, args ...string) error) *Converter {
	t.Helper()
	converter, err := NewConverter("image2pdf -r KEY", 300*time.Millisecond)
	require.NoError(t, err)
	converter.runCommand = run
	return converter
}

func TestConvertImageToPDF(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "permit.jpg")
	outputPath := filepath.Join(dir, "permit.pdf")
	require.NoError(t, os.WriteFile(imagePath, []byte("image"), 0o644))

	var gotName string
	var gotArgs []string
	converter := newTestConverter(t, func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return os.WriteFile(outputPath, []byte("pdf"), 0o644)
	})

	result, err := converter.ConvertImageToPDF(context.Background(), imagePath, outputPath, true)
	require.NoError(t, err)
	assert.Equal(t, ResultConverted, result)
	assert.Equal(t, "image2pdf", gotName)
	assert.Equal(t, []string{"-r", "KEY", "-i", imagePath, "-o", outputPath, "-g", "overwrite"}, gotArgs)
}

func TestConvertImageToPDFWaitsForOutput(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "permit.jpg")
	outputPath := filepath.Join(dir, "permit.pdf")
	require.NoError(t, os.WriteFile(imagePath, []byte("image"), 0o644))

	// Output lands after the tool returns, inside the wait window.
	converter := newTestConverter(t, func(context.Context, string, ...string) error {
		go func() {
			time.Sleep(150 * time.Millisecond)
			_ = os.WriteFile(outputPath, []byte("pdf"), 0o644)
		}()
		return nil
	})

	result, err := converter.ConvertImageToPDF(context.Background(), imagePath, outputPath, true)
	require.NoError(t, err)
	assert.Equal(t, ResultConverted, result)
}

func TestConvertImageToPDFNoOutput(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "permit.jpg")
	require.NoError(t, os.WriteFile(imagePath, []byte("image"), 0o644))

	converter := newTestConverter(t, func(context.Context, string, ...string) error {
		return nil
	})

	result, err := converter.ConvertImageToPDF(
		context.Background(), imagePath, filepath.Join(dir, "permit.pdf"), true)
	require.NoError(t, err, "tool silence is a result state, not an error")
	assert.Equal(t, ResultFailedToConvert, result)
}

func TestConvertImageToPDFSkipsNewerOutput(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "permit.jpg")
	outputPath := filepath.Join(dir, "permit.pdf")
	require.NoError(t, os.WriteFile(imagePath, []byte("image"), 0o644))
	require.NoError(t, os.WriteFile(outputPath, []byte("pdf"), 0o644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(imagePath, old, old))

	converter := newTestConverter(t, func(context.Context, string, ...string) error {
		t.Fatal("command must not run when output is current")
		return nil
	})

	result, err := converter.ConvertImageToPDF(context.Background(), imagePath, outputPath, true)
	require.NoError(t, err)
	assert.Equal(t, ResultNoConversion, result)
}

func TestConvertImageToPDFMissingImage(t *testing.T) {
	converter := newTestConverter(t, func(context.Context, string, ...string) error {
		return nil
	})
	_, err := converter.ConvertImageToPDF(
		context.Background(), filepath.Join(t.TempDir(), "missing.jpg"), "out.pdf", true)
	assert.Error(t, err)
}

func TestConvertImagesToPDF(t *testing.T) {
	dir := t.TempDir()
	var imagePaths []string
	for _, name := range []string{"a.jpg", "b.tif"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("image"), 0o644))
		imagePaths = append(imagePaths, path)
	}

	converter := newTestConverter(t, func(_ context.Context, _ string, args ...string) error {
		for i, arg := range args {
			if arg == "-o" {
				return os.WriteFile(args[i+1], []byte("pdf"), 0o644)
			}
		}
		return nil
	})

	states, err := converter.ConvertImagesToPDF(context.Background(), imagePaths, true)
	require.NoError(t, err)
	assert.Equal(t, 2, states[ResultConverted])
	assert.FileExists(t, filepath.Join(dir, "a.pdf"))
	assert.FileExists(t, filepath.Join(dir, "b.pdf"))
}
