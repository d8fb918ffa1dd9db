package earnings

import "errors"

var (
	ErrMonthRequired = errors.New("month is required")
	ErrExportFailed  = errors.New("failed to build earnings export")
)
