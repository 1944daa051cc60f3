package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/value"
)

func TestBatchIDByName(t *testing.T) {
	store, db := newTestStore(t)
	batchID := seedBatch(t, db, "Nightly")

	got, err := store.BatchIDByName("Nightly")
	require.NoError(t, err)
	assert.Equal(t, batchID, got)

	_, err = store.BatchIDByName("No_Such_Batch")
	assert.True(t, errors.IsNotFound(err))
}

func TestJobIDByName(t *testing.T) {
	store, db := newTestStore(t)
	seedBatch(t, db, "Nightly", "Roads_Update")

	got, err := store.JobIDByName("Roads_Update")
	require.NoError(t, err)
	assert.Positive(t, got)

	_, err = store.JobIDByName("No_Such_Job")
	assert.True(t, errors.IsNotFound(err))
}

func TestInsertJobRun(t *testing.T) {
	store, db := newTestStore(t)
	seedBatch(t, db, "Nightly", "Roads_Update")
	jobID, err := store.JobIDByName("Roads_Update")
	require.NoError(t, err)

	started := time.Now()
	runID, err := store.InsertJobRun(jobID, StatusIncomplete, started)
	require.NoError(t, err)
	require.Positive(t, runID)

	var status int
	var startText string
	var endText *string
	require.NoError(t, db.QueryRow(
		"SELECT status, start_time, end_time FROM Job_Run WHERE id = ?", runID,
	).Scan(&status, &startText, &endText))
	assert.Equal(t, -1, status)
	assert.Nil(t, endText, "end_time stays null while incomplete")

	// Writer output must be exactly parseable by the reader.
	parsed := value.ParseDatetime(startText)
	require.NotNil(t, parsed)
	assert.True(t, started.Equal(*parsed))
}

func TestUpdateJobRunTerminalSetsEndTime(t *testing.T) {
	store, db := newTestStore(t)
	seedBatch(t, db, "Nightly", "Roads_Update")
	jobID, _ := store.JobIDByName("Roads_Update")
	runID, err := store.InsertJobRun(jobID, StatusIncomplete, time.Now())
	require.NoError(t, err)

	require.NoError(t, store.UpdateJobRun(runID, StatusComplete, time.Now()))

	var status int
	var endText *string
	require.NoError(t, db.QueryRow(
		"SELECT status, end_time FROM Job_Run WHERE id = ?", runID,
	).Scan(&status, &endText))
	assert.Equal(t, 1, status)
	require.NotNil(t, endText)
	assert.NotNil(t, value.ParseDatetime(*endText))
}

func TestUpdateJobRunIncompleteClearsEndTime(t *testing.T) {
	store, db := newTestStore(t)
	seedBatch(t, db, "Nightly", "Roads_Update")
	jobID, _ := store.JobIDByName("Roads_Update")
	runID, err := store.InsertJobRun(jobID, StatusIncomplete, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.UpdateJobRun(runID, StatusComplete, time.Now()))

	require.NoError(t, store.UpdateJobRun(runID, StatusIncomplete, time.Now()))

	var endText *string
	require.NoError(t, db.QueryRow("SELECT end_time FROM Job_Run WHERE id = ?", runID).Scan(&endText))
	assert.Nil(t, endText)
}

func TestStoreRejectsInvalidStatus(t *testing.T) {
	store, db := newTestStore(t)
	seedBatch(t, db, "Nightly", "Roads_Update")
	jobID, _ := store.JobIDByName("Roads_Update")

	_, err := store.InsertJobRun(jobID, Status(5), time.Now())
	assert.True(t, errors.Is(err, errors.ErrInvalidStatus))

	runID, err := store.InsertJobRun(jobID, StatusIncomplete, time.Now())
	require.NoError(t, err)
	err = store.UpdateJobRun(runID, Status(-3), time.Now())
	assert.True(t, errors.Is(err, errors.ErrInvalidStatus))

	// Only the valid insert reached the store.
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM Job_Run").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestLastJobRunsOrderingAndParsing(t *testing.T) {
	store, db := newTestStore(t)
	batchID := seedBatch(t, db, "Nightly", "First_Job", "Second_Job")

	firstID, _ := store.JobIDByName("First_Job")
	secondID, _ := store.JobIDByName("Second_Job")

	early := time.Date(2026, 8, 1, 2, 0, 0, 0, time.Local)
	late := time.Date(2026, 8, 2, 2, 0, 0, 0, time.Local)

	// First_Job has an older superseded run plus its latest.
	_, err := store.InsertJobRun(firstID, StatusComplete, early.Add(-24*time.Hour))
	require.NoError(t, err)
	firstRun, err := store.InsertJobRun(firstID, StatusComplete, late)
	require.NoError(t, err)
	require.NoError(t, store.UpdateJobRun(firstRun, StatusComplete, late.Add(5*time.Minute)))
	_, err = store.InsertJobRun(secondID, StatusIncomplete, early)
	require.NoError(t, err)

	records, err := store.LastJobRuns(batchID)
	require.NoError(t, err)
	require.Len(t, records, 2, "one record per job")

	// Most recent start first.
	assert.Equal(t, "First_Job", records[0].JobName)
	assert.Equal(t, StatusComplete, records[0].Status)
	require.NotNil(t, records[0].StartTime)
	assert.True(t, late.Equal(*records[0].StartTime))
	require.NotNil(t, records[0].EndTime)

	assert.Equal(t, "Second_Job", records[1].JobName)
	assert.Equal(t, StatusIncomplete, records[1].Status)
	assert.Nil(t, records[1].EndTime)
}

func TestLastJobRunsToleratesBadTimestamp(t *testing.T) {
	store, db := newTestStore(t)
	batchID := seedBatch(t, db, "Nightly", "Roads_Update")
	jobID, _ := store.JobIDByName("Roads_Update")
	_, err := db.Exec(
		"INSERT INTO Job_Run (job_id, status, start_time) VALUES (?, 1, 'garbage stamp')", jobID)
	require.NoError(t, err)

	records, err := store.LastJobRuns(batchID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].StartTime, "unparseable timestamp coerces to nil, not error")
}

func TestNotificationAddresses(t *testing.T) {
	store, db := newTestStore(t)
	_, err := db.Exec(`
		INSERT INTO Batch (
			name, notification_to_addresses, notification_copy_addresses,
			notification_blind_copy_addresses, notification_reply_to_addresses
		) VALUES ('Nightly', 'gis@example.com, ops@example.com', '', NULL, 'noreply@example.com')`)
	require.NoError(t, err)

	addresses, err := store.NotificationAddresses("Nightly")
	require.NoError(t, err)
	assert.Equal(t, []string{"gis@example.com", "ops@example.com"}, addresses.To)
	assert.Empty(t, addresses.Copy)
	assert.Empty(t, addresses.BlindCopy)
	assert.Equal(t, []string{"noreply@example.com"}, addresses.ReplyTo)
}

func TestNotificationAddressesMissingBatch(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.NotificationAddresses("No_Such_Batch")
	assert.True(t, errors.Is(err, errors.ErrBatchConfig),
		"missing batch is a configuration error, distinct from empty recipients")
}
