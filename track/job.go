package track

import (
	"time"

	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/logger"
)

// Job is a named, ordered sequence of procedures tracked as one unit of
// run history.
//
// Its run state machine: NOT_STARTED (no run row) → RUNNING (status -1, row
// inserted, end_time null) → COMPLETE (1) or FAILED (0), both with end_time
// set. The first status write creates the run row and fixes the run ID for
// the life of the Job object; every later write targets that same row.
type Job struct {
	name       string
	procedures []ProcedureFunc
	store      *RunStore
	jobID      int64
	runID      int64
}

// NewJob constructs a job view over its Job-table row. Returns ErrNotFound
// when the name is not registered in the store.
func NewJob(store *RunStore, name string, procedures ...ProcedureFunc) (*Job, error) {
	jobID, err := store.JobIDByName(name)
	if err != nil {
		return nil, err
	}
	logger.Logger.Infow("Initialized job instance", "job", name)
	return &Job{
		name:       name,
		procedures: procedures,
		store:      store,
		jobID:      jobID,
	}, nil
}

// Name returns the job name.
func (j *Job) Name() string { return j.name }

// JobID returns the store-assigned job ID.
func (j *Job) JobID() int64 { return j.jobID }

// RunID returns the store-assigned ID of the current run, or 0 before the
// first status write.
func (j *Job) RunID() int64 { return j.runID }

// RunStatus reads the current run's stored status. The boolean is false when
// the run has not been initiated.
func (j *Job) RunStatus() (Status, bool, error) {
	if j.runID == 0 {
		return 0, false, nil
	}
	status, err := j.store.JobRunStatus(j.runID)
	if err != nil {
		return 0, false, err
	}
	return status, true, nil
}

// SetRunStatus transitions the job's run state. An invalid status code fails
// fast without touching the store. The first valid write inserts the run row
// (fixing start_time and run ID); later writes update it in place, setting
// end_time only for terminal statuses.
func (j *Job) SetRunStatus(status Status) error {
	if !status.Valid() {
		return errors.Wrapf(errors.ErrInvalidStatus, "%d", status)
	}
	if j.runID == 0 {
		runID, err := j.store.InsertJobRun(j.jobID, status, time.Now())
		if err != nil {
			return err
		}
		j.runID = runID
		return nil
	}
	return j.store.UpdateJobRun(j.runID, status, time.Now())
}

func (j *Job) steps() []ProcedureFunc { return j.procedures }
func (j *Job) kind() string           { return "job" }

func (j *Job) markRunning() error {
	return j.SetRunStatus(StatusIncomplete)
}

func (j *Job) markTerminal(status Status) error {
	return j.SetRunStatus(status)
}
