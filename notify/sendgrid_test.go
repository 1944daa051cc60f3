package notify

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendgridAttachments(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "Quarterly_Report.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4 report body"), 0o644))
	binPath := filepath.Join(dir, "payload.unknownext")
	require.NoError(t, os.WriteFile(binPath, []byte{0x00, 0x01, 0x02}, 0o644))

	attachments, err := sendgridAttachments([]string{pdfPath, binPath})
	require.NoError(t, err)
	require.Len(t, attachments, 2)

	pdf := attachments[0]
	assert.Equal(t, "Quarterly_Report.pdf", pdf.Filename)
	assert.Equal(t, "application/pdf", pdf.Type)
	assert.Equal(t, "attachment", pdf.Disposition)
	decoded, err := base64.StdEncoding.DecodeString(pdf.Content)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 report body", string(decoded))

	assert.Equal(t, "application/octet-stream", attachments[1].Type)
}

func TestSendgridAttachmentsMissingFile(t *testing.T) {
	_, err := sendgridAttachments([]string{filepath.Join(t.TempDir(), "absent.pdf")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.pdf")
}

func TestSendgridAttachmentsNone(t *testing.T) {
	attachments, err := sendgridAttachments(nil)
	require.NoError(t, err)
	assert.Empty(t, attachments)
}
