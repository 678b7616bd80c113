package transformer

import "errors"

// Failure classes shared by all stages. Stages wrap them with context, so
// callers match with errors.Is.
var (
	// ErrSchemaViolation: a declared column is absent or a value does not
	// parse as its declared type.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrSchemaMismatch: tables being merged disagree on columns or types.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrUnmappedLabel: a label has no coarse mapping.
	ErrUnmappedLabel = errors.New("unmapped label")

	// ErrUnknownLabel: a test label is absent from the train-derived encoding.
	ErrUnknownLabel = errors.New("unknown label")

	// ErrEmptyResult: a stage produced zero rows or zero columns.
	ErrEmptyResult = errors.New("empty result")
)
