package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNilSnapshot  = errors.New("nil snapshot")
	ErrEmptyDataset = errors.New("snapshot without dataset name")
)
