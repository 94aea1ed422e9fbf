package services

import (
	"testing"
	"time"

	"airbnb-etl/models"
)

func TestCalendarDateDecomposition(t *testing.T) {
	c := NewCalendarCleaner(newTestLogger())

	raw := mkTable(
		[]string{"listing_id", "date", "available"},
		models.Row{"listing_id": 1, "date": "2024-03-15", "available": "t"},
		models.Row{"listing_id": 1, "date": time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), "available": "f"},
		models.Row{"listing_id": 1, "date": "not a date", "available": "t"},
	)

	out := c.Clean(raw)
	if out.Len() != 3 {
		t.Fatalf("Clean() kept %d rows; want 3 (unparsable dates retain the row)", out.Len())
	}

	rows := out.Rows()
	if rows[0]["year"] != 2024 || rows[0]["month"] != 3 || rows[0]["day"] != 15 {
		t.Errorf("row 0 date parts = %v/%v/%v; want 2024/3/15", rows[0]["year"], rows[0]["month"], rows[0]["day"])
	}
	if rows[1]["year"] != 2024 || rows[1]["month"] != 12 || rows[1]["day"] != 1 {
		t.Errorf("row 1 date parts = %v/%v/%v; want 2024/12/1", rows[1]["year"], rows[1]["month"], rows[1]["day"])
	}
	if rows[2]["year"] != nil || rows[2]["date"] != nil {
		t.Errorf("row 2 should have null date parts, got date=%v year=%v", rows[2]["date"], rows[2]["year"])
	}
}

func TestCalendarAvailabilityNormalization(t *testing.T) {
	c := NewCalendarCleaner(newTestLogger())

	tf := c.Clean(mkTable(
		[]string{"listing_id", "available"},
		models.Row{"listing_id": 1, "available": "t"},
		models.Row{"listing_id": 1, "available": "f"},
	))
	if tf.Row(0)["available"] != 1 || tf.Row(1)["available"] != 0 {
		t.Errorf("t/f column = %v/%v; want 1/0", tf.Row(0)["available"], tf.Row(1)["available"])
	}

	boolean := c.Clean(mkTable(
		[]string{"listing_id", "available"},
		models.Row{"listing_id": 1, "available": true},
		models.Row{"listing_id": 1, "available": false},
	))
	if boolean.Row(0)["available"] != 1 || boolean.Row(1)["available"] != 0 {
		t.Errorf("bool column = %v/%v; want 1/0", boolean.Row(0)["available"], boolean.Row(1)["available"])
	}

	// A string domain beyond {"t","f"} is left untouched.
	mixed := c.Clean(mkTable(
		[]string{"listing_id", "available"},
		models.Row{"listing_id": 1, "available": "yes"},
		models.Row{"listing_id": 1, "available": "t"},
	))
	if mixed.Row(0)["available"] != "yes" || mixed.Row(1)["available"] != "t" {
		t.Errorf("mixed column = %v/%v; want untouched strings", mixed.Row(0)["available"], mixed.Row(1)["available"])
	}
}

func TestCalendarDropsNightBounds(t *testing.T) {
	c := NewCalendarCleaner(newTestLogger())

	out := c.Clean(mkTable(
		[]string{"listing_id", "available", "minimum_nights", "maximum_nights"},
		models.Row{"listing_id": 1, "available": "t", "minimum_nights": 1, "maximum_nights": 30},
	))
	if out.Has("minimum_nights") || out.Has("maximum_nights") {
		t.Errorf("night bound columns should be dropped, got %v", out.Columns())
	}

	// Absent columns are not an error.
	out = c.Clean(mkTable(
		[]string{"listing_id", "available"},
		models.Row{"listing_id": 1, "available": "t"},
	))
	if out.Len() != 1 {
		t.Errorf("Clean() on table without night bounds kept %d rows; want 1", out.Len())
	}
}
