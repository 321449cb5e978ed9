package catalog

import "errors"

// Domain errors for catalog operations.
var (
	ErrNotApproved  = errors.New("only approved items can be submitted to the catalog")
	ErrInvalidTable = errors.New("invalid catalog table reference")
)
