package notify

import (
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/cartops/proctools/errors"
)

//go:embed templates/*.html
var templates embed.FS

// BatchSummary is the rendering model for a batch notification: the batch,
// its rollup status description, and its jobs' most recent runs in display
// order.
type BatchSummary struct {
	BatchName         string
	StatusDescription string
	Rows              []RunRow
}

// RunRow is one job's last run in the notification table.
type RunRow struct {
	JobName           string
	StatusDescription string
	StartTime         *time.Time
	EndTime           *time.Time
}

var templateFuncs = template.FuncMap{
	"timestamp": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02 15:04:05")
	},
}

// RenderBatchNotification returns the HTML body for a batch notification
// email.
func RenderBatchNotification(summary BatchSummary) (string, error) {
	tmpl, err := template.New("batch_notification.html").
		Funcs(templateFuncs).
		ParseFS(templates, "templates/batch_notification.html")
	if err != nil {
		return "", errors.Wrap(err, "parse batch notification template")
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, summary); err != nil {
		return "", errors.Wrap(err, "render batch notification")
	}
	return b.String(), nil
}
