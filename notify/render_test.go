package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBatchNotification(t *testing.T) {
	start := time.Date(2026, 8, 1, 2, 0, 0, 0, time.Local)
	end := time.Date(2026, 8, 1, 2, 5, 0, 0, time.Local)

	body, err := RenderBatchNotification(BatchSummary{
		BatchName:         "Nightly",
		StatusDescription: "complete",
		Rows: []RunRow{
			{JobName: "Roads_Update", StatusDescription: "complete", StartTime: &start, EndTime: &end},
			{JobName: "Taxlot_Update", StatusDescription: "incomplete", StartTime: &start},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Processing Batch: Nightly")
	assert.Contains(t, body, "Roads_Update")
	assert.Contains(t, body, "Taxlot_Update")
	assert.Contains(t, body, "complete")
	assert.Contains(t, body, "2026-08-01 02:00:00")
	assert.Contains(t, body, "2026-08-01 02:05:00")
}

func TestRenderEscapesJobNames(t *testing.T) {
	body, err := RenderBatchNotification(BatchSummary{
		BatchName:         "Nightly",
		StatusDescription: "complete",
		Rows:              []RunRow{{JobName: "<script>x</script>", StatusDescription: "complete"}},
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>x</script>")
}

func TestLinksBody(t *testing.T) {
	body := LinksBody([]string{"https://a.example", "https://b.example"}, false, "<p>before</p>", "<p>after</p>")
	assert.Contains(t, body, "<ul>")
	assert.Contains(t, body, `<a href="https://a.example">https://a.example</a>`)
	assert.Contains(t, body, "<p>before</p>")
	assert.Contains(t, body, "<p>after</p>")

	ordered := LinksBody([]string{"https://a.example"}, true, "", "")
	assert.Contains(t, ordered, "<ol>")
}
