package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Timestamp decodes the datetimes the backend emits. Naive values (no zone)
// are read as UTC. A value in no known format decodes as the zero time and
// is kept in Raw.
type Timestamp struct {
	time.Time
	Raw string `json:"-"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	t.Time, t.Raw = time.Time{}, ""
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		t.Raw = string(b)
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Raw = s
	return nil
}

// Unparsed reports whether the backend sent a value that could not be read.
func (t *Timestamp) Unparsed() bool { return t != nil && t.Raw != "" }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}
