package cvs

import "errors"

var (
	ErrNotFound          = errors.New("cv not found")
	ErrNoStoredFile      = errors.New("cv has no stored file reference")
	ErrNotClaimable      = errors.New("cv is not pending")
	ErrNotFailed         = errors.New("cv is not in a failed state")
	ErrExtractedNotFound = errors.New("extracted data not found")
)
