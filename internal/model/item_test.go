package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDraftBlankTreatsWhitespaceAsEmpty(t *testing.T) {
	cases := map[string]bool{
		"":         true,
		"   ":      true,
		"\t\n ":    true,
		"Milk":     false,
		"  Milk  ": false,
	}
	for title, want := range cases {
		if got := (Draft{Title: title}).Blank(); got != want {
			t.Fatalf("Draft{Title: %q}.Blank() = %v, want %v", title, got, want)
		}
	}
}

func TestTimestampAcceptsBackendFormats(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{`"2025-03-14T09:26:53Z"`, time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)},
		{`"2025-03-14T09:26:53.5+02:00"`, time.Date(2025, 3, 14, 7, 26, 53, 5e8, time.UTC)},
		{`"2025-03-14T09:26:53.123456"`, time.Date(2025, 3, 14, 9, 26, 53, 123456000, time.UTC)},
		{`"2025-03-14 09:26:53"`, time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)},
	}
	for _, tc := range cases {
		var ts Timestamp
		if err := json.Unmarshal([]byte(tc.in), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if !ts.Equal(tc.want) {
			t.Fatalf("unmarshal %s = %v, want %v", tc.in, ts.Time, tc.want)
		}
	}
}

func TestTimestampNullAndGarbage(t *testing.T) {
	var it Item
	if err := json.Unmarshal([]byte(`{"id": 1, "title": "a", "created_at": null}`), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !it.Created().IsZero() {
		t.Fatalf("expected zero created time, got %v", it.Created())
	}

	for _, raw := range []string{`"yesterday"`, `12345`} {
		var ts Timestamp
		if err := json.Unmarshal([]byte(raw), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if !ts.IsZero() || !ts.Unparsed() {
			t.Fatalf("unmarshal %s = %v (raw %q), want zero and unparsed", raw, ts.Time, ts.Raw)
		}
	}
}

func TestListWithOneBadTimestampStillDecodes(t *testing.T) {
	body := `[{"id": 1, "title": "a", "created_at": "2025-03-14T09:26:53"},
	          {"id": 2, "title": "b", "created_at": "someday"}]`
	var items []Item
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Created().IsZero() || items[0].CreatedAt.Unparsed() {
		t.Fatalf("first item lost its timestamp: %+v", items[0].CreatedAt)
	}
	if !items[1].Created().IsZero() || items[1].CreatedAt.Raw != "someday" {
		t.Fatalf("second item = %+v, want zero time with raw value", items[1].CreatedAt)
	}
}

func TestIndexOf(t *testing.T) {
	items := []Item{{ID: 3}, {ID: 1}, {ID: 2}}
	if got := IndexOf(items, 1); got != 1 {
		t.Fatalf("IndexOf(1) = %d, want 1", got)
	}
	if got := IndexOf(items, 9); got != -1 {
		t.Fatalf("IndexOf(9) = %d, want -1", got)
	}
}
