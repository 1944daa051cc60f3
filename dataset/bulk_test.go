package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartops/proctools/errors"
)

type fakeUpdater struct {
	datasetPath string
	fieldNames  []string
	transform   func(string) string
	err         error
}

func (u *fakeUpdater) UpdateFieldValues(_ context.Context, datasetPath string, fieldNames []string, transform func(string) string) (map[string]int, error) {
	u.datasetPath = datasetPath
	u.fieldNames = fieldNames
	u.transform = transform
	if u.err != nil {
		return nil, u.err
	}
	return map[string]int{"altered": len(fieldNames)}, nil
}

func TestCleanWhitespaceProcedure(t *testing.T) {
	updater := &fakeUpdater{}
	procedure := CleanWhitespaceProcedure(updater, "gis.parcels", []string{"owner_name"})

	require.NoError(t, procedure(context.Background()))
	assert.Equal(t, "gis.parcels", updater.datasetPath)
	assert.Equal(t, []string{"owner_name"}, updater.fieldNames)
	assert.Equal(t, "A B", updater.transform("  A \t B  "))
}

func TestEnforceYNProcedure(t *testing.T) {
	updater := &fakeUpdater{}
	procedure := EnforceYNProcedure(updater, "gis.parcels", []string{"is_exempt"}, "N")

	require.NoError(t, procedure(context.Background()))
	assert.Equal(t, "Y", updater.transform("Y"))
	assert.Equal(t, "N", updater.transform("maybe"))
}

func TestCaseProcedures(t *testing.T) {
	updater := &fakeUpdater{}
	require.NoError(t, UppercaseProcedure(updater, "gis.parcels", []string{"city"})(context.Background()))
	assert.Equal(t, "EUGENE", updater.transform("Eugene"))

	require.NoError(t, LowercaseProcedure(updater, "gis.parcels", []string{"email"})(context.Background()))
	assert.Equal(t, "gis@example.com", updater.transform("GIS@Example.COM"))
}

func TestBulkProcedurePropagatesError(t *testing.T) {
	boom := errors.New("dataset locked")
	procedure := CleanWhitespaceProcedure(&fakeUpdater{err: boom}, "gis.parcels", []string{"owner_name"})

	assert.True(t, errors.Is(procedure(context.Background()), boom))
}

func TestCleanAllWhitespaceProcedure(t *testing.T) {
	d, err := NewDataset(parcelFields(), "polygon", "gis.parcels")
	require.NoError(t, err)

	updater := &fakeUpdater{}
	require.NoError(t, CleanAllWhitespaceProcedure(updater, d, "")(context.Background()))
	assert.Equal(t, "gis.parcels", updater.datasetPath)
	assert.Equal(t, []string{"maptaxlot", "owner_name", "is_exempt"}, updater.fieldNames)

	missingTag := CleanAllWhitespaceProcedure(updater, d, "published")
	assert.Error(t, missingTag(context.Background()))
}
