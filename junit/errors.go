package junit

import "github.com/pkg/errors"

// Errors returned by Open and RemoveLog. They are wrapped with the offending
// path, so match them with errors.Is.
var (
	ErrFileNotFound = errors.New("junit log file not found")
	ErrEmptyLog     = errors.New("junit log file is empty")
	ErrMalformedLog = errors.New("junit log is not well-formed XML")
	ErrFilesystem   = errors.New("junit log file could not be removed")
)
