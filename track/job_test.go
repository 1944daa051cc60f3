package track

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartops/proctools/errors"
)

func TestNewJobUnknownName(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := NewJob(store, "No_Such_Job")
	assert.True(t, errors.IsNotFound(err))
}

func TestJobRunStatusBeforeFirstWrite(t *testing.T) {
	store, db := newTestStore(t)
	seedBatch(t, db, "Nightly", "Roads_Update")
	job, err := NewJob(store, "Roads_Update")
	require.NoError(t, err)

	_, initiated, err := job.RunStatus()
	require.NoError(t, err)
	assert.False(t, initiated)
	assert.Zero(t, job.RunID())
}

func TestJobRunIDStableAcrossWrites(t *testing.T) {
	store, db := newTestStore(t)
	seedBatch(t, db, "Nightly", "Roads_Update")
	job, err := NewJob(store, "Roads_Update")
	require.NoError(t, err)

	require.NoError(t, job.SetRunStatus(StatusIncomplete))
	runID := job.RunID()
	require.Positive(t, runID)

	require.NoError(t, job.SetRunStatus(StatusComplete))
	assert.Equal(t, runID, job.RunID(), "later writes update the same row")

	status, initiated, err := job.RunStatus()
	require.NoError(t, err)
	assert.True(t, initiated)
	assert.Equal(t, StatusComplete, status)

	// Exactly one run row for the whole lifecycle.
	var count int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM Job_Run WHERE job_id = ?", job.JobID()).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestJobInvalidStatusLeavesStateUntouched(t *testing.T) {
	store, db := newTestStore(t)
	seedBatch(t, db, "Nightly", "Roads_Update")
	job, err := NewJob(store, "Roads_Update")
	require.NoError(t, err)

	err = job.SetRunStatus(Status(7))
	assert.True(t, errors.Is(err, errors.ErrInvalidStatus))
	assert.Zero(t, job.RunID(), "failed write must not initiate the run")

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM Job_Run").Scan(&count))
	assert.Zero(t, count)
}

// The invalid-status guard runs before any store access; a mock database
// with zero expectations proves no SQL is issued.
func TestJobInvalidStatusIssuesNoSQL(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	job := &Job{name: "Roads_Update", store: NewRunStore(mockDB), jobID: 1}
	err = job.SetRunStatus(Status(99))
	assert.True(t, errors.Is(err, errors.ErrInvalidStatus))
	assert.NoError(t, mock.ExpectationsWereMet())
}
