package domain

import "errors"

// Sentinel errors for artwork resolution
var (
	// ErrNotFound indicates no audio file, image file or embedded art was located
	ErrNotFound = errors.New("artwork not found")

	// ErrNoEmbeddedArt indicates the extractor ran but produced no readable picture
	ErrNoEmbeddedArt = errors.New("no embedded art")

	// ErrExtractorFailed indicates the extraction process could not be spawned,
	// timed out or terminated abnormally
	ErrExtractorFailed = errors.New("extraction process failed")

	// ErrRootUnreadable indicates the root of a directory search could not be opened
	ErrRootUnreadable = errors.New("search root unreadable")
)

// Classify maps an error onto the resolution error taxonomy for log attributes
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrExtractorFailed):
		return "external_process_failure"
	case errors.Is(err, ErrRootUnreadable):
		return "filesystem_access"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoEmbeddedArt):
		return "not_found"
	default:
		return "unknown"
	}
}
