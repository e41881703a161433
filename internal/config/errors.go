package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers check them with errors.Is.
var (
	// ErrNoSource is returned when no model snapshot is specified.
	ErrNoSource = errors.New("no model snapshot specified: provide one or more snapshot files")

	// ErrNoRelease is returned when the release tag is empty.
	ErrNoRelease = errors.New("no release specified: set --release or release in the config file")

	// ErrInvalidLanguage is returned when the language is not a valid BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid language: must be a BCP 47 tag such as en or de-DE")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when more than one of
	// --json, --markdown and --html is specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: use only one of --json, --markdown and --html")

	// ErrMissingAttribute is returned when an attribute type key is empty.
	ErrMissingAttribute = errors.New("attribute type key is empty")
)
