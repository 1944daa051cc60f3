package track

import (
	"database/sql"
	"sort"
	"time"

	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/notify"
	"github.com/cartops/proctools/value"
)

// RunStore reads and writes the run-results database: batch/job identity
// lookups and the append-mostly Job_Run history.
type RunStore struct {
	db *sql.DB
}

// NewRunStore wraps an open run-results database.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// RunRecord is one row of a job's run history, with timestamps coerced from
// their stored text. A timestamp that cannot be parsed is nil, not an error.
type RunRecord struct {
	ID        int64
	JobID     int64
	JobName   string
	BatchID   int64
	Status    Status
	StartTime *time.Time
	EndTime   *time.Time
}

// Addresses holds a batch's notification recipients by role.
type Addresses struct {
	To        []string
	Copy      []string
	BlindCopy []string
	ReplyTo   []string
}

// BatchIDByName looks up a batch's store-assigned ID. Returns ErrNotFound
// when the name is absent from the Batch table.
func (s *RunStore) BatchIDByName(name string) (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM Batch WHERE name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errors.NewNotFound("batch %q not in Batch table", name)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "look up batch %q", name)
	}
	return id, nil
}

// JobIDByName looks up a job's store-assigned ID. Returns ErrNotFound when
// the name is absent from the Job table.
func (s *RunStore) JobIDByName(name string) (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM Job WHERE name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errors.NewNotFound("job %q not in Job table", name)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "look up job %q", name)
	}
	return id, nil
}

// InsertJobRun creates a job's run row and returns its ID. The start time is
// stored as text and is immutable for the life of the row; end_time stays
// null until a terminal status write.
func (s *RunStore) InsertJobRun(jobID int64, status Status, startTime time.Time) (int64, error) {
	if !status.Valid() {
		return 0, errors.Wrapf(errors.ErrInvalidStatus, "%d", status)
	}
	result, err := s.db.Exec(
		"INSERT INTO Job_Run (job_id, status, start_time) VALUES (?, ?, ?)",
		jobID, int(status), value.FormatTimestamp(startTime),
	)
	if err != nil {
		return 0, errors.Wrapf(err, "insert run for job %d", jobID)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "read inserted run id")
	}
	return runID, nil
}

// UpdateJobRun rewrites an existing run row's status, setting end_time when
// terminal and clearing it otherwise.
func (s *RunStore) UpdateJobRun(runID int64, status Status, endTime time.Time) error {
	if !status.Valid() {
		return errors.Wrapf(errors.ErrInvalidStatus, "%d", status)
	}
	var endText any
	if status.Terminal() {
		endText = value.FormatTimestamp(endTime)
	}
	if _, err := s.db.Exec(
		"UPDATE Job_Run SET status = ?, end_time = ? WHERE id = ?",
		int(status), endText, runID,
	); err != nil {
		return errors.Wrapf(err, "update run %d", runID)
	}
	return nil
}

// JobRunStatus reads the stored status of one run row.
func (s *RunStore) JobRunStatus(runID int64) (Status, error) {
	var status int
	err := s.db.QueryRow("SELECT status FROM Job_Run WHERE id = ?", runID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errors.NewNotFound("run %d not in Job_Run table", runID)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "read status of run %d", runID)
	}
	return Status(status), nil
}

// JobNames returns the names of jobs in a batch.
func (s *RunStore) JobNames(batchID int64) ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM Job WHERE batch_id = ? ORDER BY name", batchID)
	if err != nil {
		return nil, errors.Wrapf(err, "list jobs of batch %d", batchID)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scan job name")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LastJobRuns returns the most recent run per job in a batch, ordered most
// recent first by (start_time, end_time).
func (s *RunStore) LastJobRuns(batchID int64) ([]RunRecord, error) {
	rows, err := s.db.Query(
		"SELECT id, job_id, job_name, batch_id, status, start_time, end_time FROM Last_Job_Run WHERE batch_id = ?",
		batchID,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "list last runs of batch %d", batchID)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		var status int
		var startText string
		var endText sql.NullString
		if err := rows.Scan(
			&record.ID, &record.JobID, &record.JobName, &record.BatchID,
			&status, &startText, &endText,
		); err != nil {
			return nil, errors.Wrap(err, "scan last run record")
		}
		record.Status = Status(status)
		record.StartTime = value.ParseDatetime(startText)
		if endText.Valid {
			record.EndTime = value.ParseDatetime(endText.String)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return recordAfter(records[i], records[j])
	})
	return records, nil
}

// recordAfter orders run records most recent first by (start, end), with
// missing timestamps sorting last.
func recordAfter(a, b RunRecord) bool {
	if cmp := compareTimeDesc(a.StartTime, b.StartTime); cmp != 0 {
		return cmp < 0
	}
	return compareTimeDesc(a.EndTime, b.EndTime) < 0
}

func compareTimeDesc(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.After(*b):
		return -1
	case b.After(*a):
		return 1
	}
	return 0
}

// NotificationAddresses returns the notification recipient lists configured
// for a batch. A missing batch name is a configuration error (ErrBatchConfig);
// a present batch with no recipients is a valid empty state.
func (s *RunStore) NotificationAddresses(batchName string) (Addresses, error) {
	var to, copyAddrs, blindCopy, replyTo sql.NullString
	err := s.db.QueryRow(`
		SELECT
			notification_to_addresses,
			notification_copy_addresses,
			notification_blind_copy_addresses,
			notification_reply_to_addresses
		FROM Batch
		WHERE name = ?
		LIMIT 1`, batchName,
	).Scan(&to, &copyAddrs, &blindCopy, &replyTo)
	if errors.Is(err, sql.ErrNoRows) {
		return Addresses{}, errors.Wrapf(errors.ErrBatchConfig, "batch %q", batchName)
	}
	if err != nil {
		return Addresses{}, errors.Wrapf(err, "read notification addresses for batch %q", batchName)
	}
	return Addresses{
		To:        notify.ExtractEmailAddresses(to.String),
		Copy:      notify.ExtractEmailAddresses(copyAddrs.String),
		BlindCopy: notify.ExtractEmailAddresses(blindCopy.String),
		ReplyTo:   notify.ExtractEmailAddresses(replyTo.String),
	}, nil
}
