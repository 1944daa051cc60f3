package dataset

import (
	"context"
	"strings"

	"github.com/cartops/proctools/logger"
	"github.com/cartops/proctools/track"
	"github.com/cartops/proctools/value"
)

// FieldUpdater applies a value transform to named fields of a dataset. The
// geospatial transform library provides the implementation; counts are per
// update state ("altered", "unchanged", ...).
type FieldUpdater interface {
	UpdateFieldValues(ctx context.Context, datasetPath string, fieldNames []string, transform func(string) string) (map[string]int, error)
}

// bulkProcedure binds one field transform over a dataset into a pipeline
// procedure.
func bulkProcedure(updater FieldUpdater, datasetPath string, fieldNames []string, label string, transform func(string) string) track.ProcedureFunc {
	return func(ctx context.Context) error {
		states, err := updater.UpdateFieldValues(ctx, datasetPath, fieldNames, transform)
		if err != nil {
			return err
		}
		for state, count := range states {
			logger.Logger.Infow("Attributes "+state,
				"dataset", datasetPath, "operation", label, "count", count)
		}
		return nil
	}
}

// CleanWhitespaceProcedure builds a procedure that collapses whitespace in
// the given field values.
func CleanWhitespaceProcedure(updater FieldUpdater, datasetPath string, fieldNames []string) track.ProcedureFunc {
	return bulkProcedure(updater, datasetPath, fieldNames, "clean whitespace",
		value.CleanWhitespace)
}

// EnforceYNProcedure builds a procedure that forces the given field values
// to "Y" or "N", substituting defaultValue elsewhere.
func EnforceYNProcedure(updater FieldUpdater, datasetPath string, fieldNames []string, defaultValue string) track.ProcedureFunc {
	return bulkProcedure(updater, datasetPath, fieldNames, "enforce Y/N",
		func(v string) string { return value.EnforceYN(v, defaultValue) })
}

// UppercaseProcedure builds a procedure that uppercases the given field
// values.
func UppercaseProcedure(updater FieldUpdater, datasetPath string, fieldNames []string) track.ProcedureFunc {
	return bulkProcedure(updater, datasetPath, fieldNames, "uppercase",
		strings.ToUpper)
}

// LowercaseProcedure builds a procedure that lowercases the given field
// values.
func LowercaseProcedure(updater FieldUpdater, datasetPath string, fieldNames []string) track.ProcedureFunc {
	return bulkProcedure(updater, datasetPath, fieldNames, "lowercase",
		strings.ToLower)
}

// CleanAllWhitespaceProcedure builds a procedure that collapses whitespace
// in every text field of the dataset.
func CleanAllWhitespaceProcedure(updater FieldUpdater, d *Dataset, pathTag string) track.ProcedureFunc {
	return func(ctx context.Context) error {
		datasetPath, err := d.Path(pathTag)
		if err != nil {
			return err
		}
		return CleanWhitespaceProcedure(updater, datasetPath, d.TextFieldNames())(ctx)
	}
}
