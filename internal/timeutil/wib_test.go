package timeutil

import (
	"testing"
	"time"
)

func TestRangeEndExtendsBareDate(t *testing.T) {
	end, err := RangeEnd("2024-03-31")
	if err != nil {
		t.Fatal(err)
	}
	w := end.In(WIB)
	if w.Day() != 31 || w.Hour() != 23 || w.Minute() != 59 {
		t.Errorf("end = %v", w)
	}
}

func TestRangeEndKeepsTimestamp(t *testing.T) {
	end, err := RangeEnd("2024-03-31T10:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if !end.Equal(time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}
}

func TestRangeStartBareDateIsMidnightWIB(t *testing.T) {
	start, err := RangeStart("2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	// midnight WIB is 17:00 UTC on the previous day
	if !start.Equal(time.Date(2024, 2, 29, 17, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start.UTC())
	}
}

func TestParseDateOrTimeRejectsGarbage(t *testing.T) {
	if _, _, err := ParseDateOrTime("31/03/2024"); err != ErrBadDate {
		t.Errorf("err = %v", err)
	}
}
