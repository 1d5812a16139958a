package record

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord is wrapped by every MalformedRecordError.
	ErrMalformedRecord = errors.New("record: malformed record")

	// ErrUnknownRecordType is wrapped by every UnknownRecordTypeError.
	ErrUnknownRecordType = errors.New("record: unknown record type")
)

// MalformedRecordError reports a row whose fields do not fit its tag.
type MalformedRecordError struct {
	Row    int
	Tag    Tag
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("row %d: %v: %s", e.Row, ErrMalformedRecord, e.Reason)
	}
	return fmt.Sprintf("row %d (%s): %v: %s", e.Row, e.Tag, ErrMalformedRecord, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// UnknownRecordTypeError reports a tag with no handler.
type UnknownRecordTypeError struct {
	Row int
	Tag Tag
}

func (e *UnknownRecordTypeError) Error() string {
	return fmt.Sprintf("row %d: %v %q", e.Row, ErrUnknownRecordType, string(e.Tag))
}

func (e *UnknownRecordTypeError) Unwrap() error { return ErrUnknownRecordType }

func malformed(raw Raw, format string, args ...any) error {
	return &MalformedRecordError{Row: raw.Row, Tag: raw.Tag, Reason: fmt.Sprintf(format, args...)}
}
