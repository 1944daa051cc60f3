package track

import (
	"context"
	"fmt"

	"github.com/cartops/proctools/logger"
	"github.com/cartops/proctools/notify"
)

// Batch is a view over a named group of jobs sharing scheduling and
// reporting. The group itself pre-exists in the store; this object computes
// rollup status and notification content from the jobs' latest runs.
type Batch struct {
	name    string
	batchID int64
	store   *RunStore
}

// NewBatch constructs a batch view over its Batch-table row. Returns
// ErrNotFound when the name is not registered in the store.
func NewBatch(store *RunStore, name string) (*Batch, error) {
	batchID, err := store.BatchIDByName(name)
	if err != nil {
		return nil, err
	}
	return &Batch{name: name, batchID: batchID, store: store}, nil
}

// Name returns the batch name.
func (b *Batch) Name() string { return b.name }

// BatchID returns the store-assigned batch ID.
func (b *Batch) BatchID() int64 { return b.batchID }

// JobNames returns the names of jobs in the batch.
func (b *Batch) JobNames() ([]string, error) {
	return b.store.JobNames(b.batchID)
}

// LastRunRecords returns the most recent run per job in the batch, most
// recent first.
func (b *Batch) LastRunRecords() ([]RunRecord, error) {
	return b.store.LastJobRuns(b.batchID)
}

// Status returns the batch rollup: complete when every job's latest run is
// complete, incomplete otherwise. The rollup does not distinguish a failed
// member from a still-running one.
func (b *Batch) Status() (Status, error) {
	records, err := b.store.LastJobRuns(b.batchID)
	if err != nil {
		return 0, err
	}
	for _, record := range records {
		if record.Status != StatusComplete {
			return StatusIncomplete, nil
		}
	}
	return StatusComplete, nil
}

// StatusDescription returns the description of the batch rollup status.
func (b *Batch) StatusDescription() (string, error) {
	status, err := b.Status()
	if err != nil {
		return "", err
	}
	return status.Description(), nil
}

// NotificationAddresses returns the batch's configured recipient lists.
func (b *Batch) NotificationAddresses() (Addresses, error) {
	return b.store.NotificationAddresses(b.name)
}

// SendNotification renders the batch's last-run summary and emails it.
// When to, copy, and blind-copy are all empty the send is skipped entirely
// (logged, no mailer call), regardless of reply-to.
func (b *Batch) SendNotification(ctx context.Context, mailer notify.Mailer, fromAddress string) error {
	addresses, err := b.NotificationAddresses()
	if err != nil {
		return err
	}
	if len(addresses.To)+len(addresses.Copy)+len(addresses.BlindCopy) == 0 {
		logger.Logger.Infow("No recipients for notification; not sending", "batch", b.name)
		return nil
	}

	records, err := b.LastRunRecords()
	if err != nil {
		return err
	}
	statusDescription, err := b.StatusDescription()
	if err != nil {
		return err
	}

	rows := make([]notify.RunRow, len(records))
	for i, record := range records {
		rows[i] = notify.RunRow{
			JobName:           record.JobName,
			StatusDescription: record.Status.Description(),
			StartTime:         record.StartTime,
			EndTime:           record.EndTime,
		}
	}
	body, err := notify.RenderBatchNotification(notify.BatchSummary{
		BatchName:         b.name,
		StatusDescription: statusDescription,
		Rows:              rows,
	})
	if err != nil {
		return err
	}

	return mailer.Send(ctx, notify.Message{
		From:      fromAddress,
		To:        addresses.To,
		Copy:      addresses.Copy,
		BlindCopy: addresses.BlindCopy,
		ReplyTo:   addresses.ReplyTo,
		Subject:   fmt.Sprintf("Processing Batch: %s (%s)", b.name, statusDescription),
		Body:      body,
		HTML:      true,
	})
}
