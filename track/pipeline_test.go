package track

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartops/proctools/errors"
)

func noop(context.Context) error { return nil }

func TestPipelineExecutesMembersInOrder(t *testing.T) {
	store, db := newTestStore(t)
	seedBatch(t, db, "Nightly", "First_Job", "Second_Job")

	var order []string
	record := func(name string) ProcedureFunc {
		return func(context.Context) error {
			order = append(order, name)
			return nil
		}
	}

	first, err := NewJob(store, "First_Job", record("first"))
	require.NoError(t, err)
	second, err := NewJob(store, "Second_Job", record("second"))
	require.NoError(t, err)
	bare := NewProcedure("Cleanup", record("cleanup"))

	pipeline := NewPipeline(t.TempDir(), first, second, bare)
	require.NoError(t, pipeline.Execute(context.Background()))

	assert.Equal(t, []string{"first", "second", "cleanup"}, order)

	for _, job := range []*Job{first, second} {
		status, initiated, err := job.RunStatus()
		require.NoError(t, err)
		require.True(t, initiated)
		assert.Equal(t, StatusComplete, status)
	}
}

func TestPipelineAbortsOnFailure(t *testing.T) {
	store, db := newTestStore(t)
	seedBatch(t, db, "Nightly", "First_Job", "Second_Job", "Third_Job")

	boom := errors.New("dataset locked")
	var thirdRan bool

	first, err := NewJob(store, "First_Job", noop)
	require.NoError(t, err)
	second, err := NewJob(store, "Second_Job", func(context.Context) error { return boom })
	require.NoError(t, err)
	third, err := NewJob(store, "Third_Job", func(context.Context) error {
		thirdRan = true
		return nil
	})
	require.NoError(t, err)

	pipeline := NewPipeline(t.TempDir(), first, second, third)
	err = pipeline.Execute(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, thirdRan, "members after the failure never run")

	status, _, err := first.RunStatus()
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, status)

	status, _, err = second.RunStatus()
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, status)

	var endText *string
	require.NoError(t, db.QueryRow(
		"SELECT end_time FROM Job_Run WHERE id = ?", second.RunID()).Scan(&endText))
	assert.NotNil(t, endText, "failed run records its end time")

	_, initiated, err := third.RunStatus()
	require.NoError(t, err)
	assert.False(t, initiated, "unreached member has no run row")
}

func TestPipelineRecoversProcedurePanic(t *testing.T) {
	store, db := newTestStore(t)
	seedBatch(t, db, "Nightly", "Roads_Update")

	job, err := NewJob(store, "Roads_Update", func(context.Context) error {
		panic("index out of range")
	})
	require.NoError(t, err)

	pipeline := NewPipeline(t.TempDir(), job)
	err = pipeline.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index out of range")

	status, _, err := job.RunStatus()
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, status)
}

func TestPipelineRejectsNilMember(t *testing.T) {
	store, db := newTestStore(t)
	seedBatch(t, db, "Nightly", "Roads_Update")
	job, err := NewJob(store, "Roads_Update", noop)
	require.NoError(t, err)

	pipeline := NewPipeline(t.TempDir(), job, nil)
	err = pipeline.Execute(context.Background())
	assert.True(t, errors.Is(err, errors.ErrInvalidMember))

	_, initiated, err := job.RunStatus()
	require.NoError(t, err)
	assert.False(t, initiated, "validation happens before any member runs")
}

func TestPipelineBareProcedure(t *testing.T) {
	var ran bool
	bare := NewProcedure("", func(context.Context) error {
		ran = true
		return nil
	})
	assert.Equal(t, "Unnamed Procedure", bare.Name())

	pipeline := NewPipeline(t.TempDir(), bare)
	require.NoError(t, pipeline.Execute(context.Background()))
	assert.True(t, ran)
}
