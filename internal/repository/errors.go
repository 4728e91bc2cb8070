package repository

import "errors"

var (
	ErrNotFound     = errors.New("task not found")
	ErrDuplicateID  = errors.New("task id already exists")
	ErrInvalidOrder = errors.New("order is not a permutation of stored task ids")
)
