package config

import "errors"

// Validation errors for the runtime configuration and source files.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at each validation site. This allows
// callers to use errors.Is() for programmatic handling while still
// providing human-readable messages.
var (
	// ErrNoSourceFile is returned when no source configuration file was given.
	ErrNoSourceFile = errors.New("no source specified: provide a source configuration file")

	// ErrInvalidMaxConcurrent is returned when the concurrency bound is not positive.
	ErrInvalidMaxConcurrent = errors.New("invalid max concurrency: must be positive")

	// ErrInvalidDelay is returned when the inter-batch delay is negative.
	// Use 0 for no delay between batches.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidMaxDepth is returned when the depth limit is negative.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidCheckpointInterval is returned when the checkpoint interval
	// is negative. Use 0 to disable periodic checkpoints.
	ErrInvalidCheckpointInterval = errors.New("invalid checkpoint interval: must be non-negative")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to apply the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrMissingSourceName is returned when a source file has no name.
	ErrMissingSourceName = errors.New("source: name is required")

	// ErrMissingBaseURL is returned when a source file has no base URL.
	ErrMissingBaseURL = errors.New("source: baseUrl is required")

	// ErrMissingIndexURL is returned when a source file has no index URL.
	// The crawl cannot be seeded without one.
	ErrMissingIndexURL = errors.New("source: indexUrl is required")

	// ErrMissingContentLinks is returned when a source file has no
	// contentLinks selector. Without it no entries can be extracted.
	ErrMissingContentLinks = errors.New("source: selectors.contentLinks is required")

	// ErrNoTypePatterns is returned when none of the type-classification
	// patterns is configured. Every anchor would be silently skipped.
	ErrNoTypePatterns = errors.New("source: at least one type pattern (isClass, isMethod, isFunction, isModule, isProperty) is required")

	// ErrEmptyDescriptorSelector is returned when an example or parameter
	// descriptor has an empty selector.
	ErrEmptyDescriptorSelector = errors.New("descriptor selector must not be empty")

	// ErrIncompleteMemberSelectors is returned when a methods/properties
	// block lacks its container or name selector.
	ErrIncompleteMemberSelectors = errors.New("member selectors require container and name")
)
