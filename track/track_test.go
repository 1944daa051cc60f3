package track

import (
	"database/sql"
	"testing"

	proctest "github.com/cartops/proctools/internal/testing"
	"github.com/stretchr/testify/require"
)

// seedBatch inserts a batch and its jobs, returning the batch ID.
func seedBatch(t *testing.T, db *sql.DB, batchName string, jobNames ...string) int64 {
	t.Helper()
	result, err := db.Exec("INSERT INTO Batch (name) VALUES (?)", batchName)
	require.NoError(t, err)
	batchID, err := result.LastInsertId()
	require.NoError(t, err)
	for _, jobName := range jobNames {
		_, err := db.Exec("INSERT INTO Job (name, batch_id) VALUES (?, ?)", jobName, batchID)
		require.NoError(t, err)
	}
	return batchID
}

func newTestStore(t *testing.T) (*RunStore, *sql.DB) {
	t.Helper()
	db := proctest.CreateTestDB(t)
	return NewRunStore(db), db
}
