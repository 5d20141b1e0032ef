package legacy

import (
	"fmt"
)

// ConnectionError means the source store could not be reached or refused the credentials.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to legacy database at %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ExtractionError means a table query failed; no partial dataset is produced.
type ExtractionError struct {
	Table string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract table %s: %v", e.Table, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// NormalizationError means a row held a field encoding that could not be interpreted.
type NormalizationError struct {
	Table string
	RowID string
	Field string
	Err   error
}

func (e *NormalizationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("normalize %s row %s: %v", e.Table, e.RowID, e.Err)
	}
	return fmt.Sprintf("normalize %s row %s field %s: %v", e.Table, e.RowID, e.Field, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// SerializationError means the snapshot could not be rendered losslessly.
type SerializationError struct {
	Format Format
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize snapshot as %s: %v", e.Format, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
