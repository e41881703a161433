package repository

import "errors"

var (
	// ErrUnknownElement is returned when a reference names an element the graph does not hold.
	ErrUnknownElement = errors.New("unknown element")

	// ErrDuplicateElement is returned when two elements share an ID.
	ErrDuplicateElement = errors.New("duplicate element")

	// ErrEmptyID is returned when an element has no ID.
	ErrEmptyID = errors.New("element without id")

	// ErrEmptyType is returned when an element has no type.
	ErrEmptyType = errors.New("element without type")

	// ErrSnapshotNotFound is returned when the snapshot file does not exist.
	ErrSnapshotNotFound = errors.New("snapshot file not found")
)
