package geonames

import "fmt"

// MalformedRowError reports a cities dump line that does not fit the
// 19-column schema.
type MalformedRowError struct {
	Line   int // 1-based; 0 when parsed outside a file
	Fields int
	Reason string
}

func (e *MalformedRowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("geonames: line %d: %s (%d fields)", e.Line, e.Reason, e.Fields)
	}
	return fmt.Sprintf("geonames: %s (%d fields)", e.Reason, e.Fields)
}

// MalformedReferenceError reports a subdivision reference row that cannot be
// used. It is fatal to a build.
type MalformedReferenceError struct {
	Row    int // 1-based
	Reason string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("geonames: admin1 row %d: %s", e.Row, e.Reason)
}
