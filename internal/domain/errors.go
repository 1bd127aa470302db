package domain

import "errors"

var (
	ErrNotEditing   = errors.New("not editing")
	ErrSaveInFlight = errors.New("save already in flight")
)
