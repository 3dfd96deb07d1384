package mysql

import (
	"testing"
	"time"
)

func TestHelpers(t *testing.T) {
	t.Parallel()
	if got := stringOrDash("  "); got != "-" {
		t.Fatalf("stringOrDash: got=%q want=%q", got, "-")
	}
	if got := stringOrDash("watercolor"); got != "watercolor" {
		t.Fatalf("stringOrDash: got=%q", got)
	}
	if ns := nullString(""); ns.Valid {
		t.Fatalf("nullString(\"\") should be NULL")
	}
	if ns := nullString("http://x"); !ns.Valid || ns.String != "http://x" {
		t.Fatalf("nullString: got=%+v", ns)
	}
	if got := string(jsonOrEmpty(nil)); got != "{}" {
		t.Fatalf("jsonOrEmpty: got=%q", got)
	}
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	if got := createdOrNow(ts); got.Location() != time.UTC || !got.Equal(ts) {
		t.Fatalf("createdOrNow: got=%v", got)
	}
	if createdOrNow(time.Time{}).IsZero() {
		t.Fatalf("zero time should become now")
	}
}
