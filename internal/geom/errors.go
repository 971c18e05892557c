package geom

import "fmt"

// UnreadableFileError is returned when a format decoder cannot parse an upload.
type UnreadableFileError struct {
	Format Format
	Err    error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("unreadable %s file: %v", e.Format, e.Err)
}

func (e *UnreadableFileError) Unwrap() error { return e.Err }

// UnsupportedFormatError is returned for extensions with no enabled driver.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return "unsupported file: missing extension"
	}
	return "unsupported file: ." + e.Ext
}
