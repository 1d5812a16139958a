package record

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Raw is one log row split into time, tag and the unparsed payload.
type Raw struct {
	Row    int      // zero-based row index in the log
	Time   int64    // absolute time, field 0
	Tag    Tag      // field 1
	Fields []string // fields 2..n
}

// Decoder reads raw rows from a delimited log.
type Decoder struct {
	r   *csv.Reader
	row int
}

// NewDecoder returns a decoder over r using the given field delimiter.
func NewDecoder(r io.Reader, delimiter rune) *Decoder {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1 // payload length depends on the tag
	return &Decoder{r: cr}
}

// Next returns the next row, or io.EOF when the log is exhausted.
func (d *Decoder) Next() (Raw, error) {
	fields, err := d.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Raw{}, io.EOF
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			row := d.row
			d.row++
			return Raw{}, &MalformedRecordError{Row: row, Reason: pe.Err.Error()}
		}
		return Raw{}, err
	}
	row := d.row
	d.row++
	return Split(row, fields)
}

// Split turns one row of text fields into a Raw record.
func Split(row int, fields []string) (Raw, error) {
	if len(fields) < 2 {
		return Raw{}, &MalformedRecordError{Row: row, Reason: "expected at least time and type fields"}
	}
	tag := strings.TrimSpace(fields[1])
	if len(tag) != 1 {
		return Raw{}, &MalformedRecordError{Row: row, Reason: "type tag must be one character, got " + strconv.Quote(tag)}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return Raw{}, &MalformedRecordError{Row: row, Tag: Tag(tag), Reason: "invalid time " + strconv.Quote(fields[0])}
	}
	return Raw{
		Row:    row,
		Time:   ts,
		Tag:    Tag(tag),
		Fields: fields[2:],
	}, nil
}
