package services

import (
	"time"

	"airbnb-etl/models"
	"airbnb-etl/utils"
)

// CalendarCleaner normalizes raw calendar availability records.
type CalendarCleaner struct {
	logger *utils.Logger
}

// NewCalendarCleaner creates a CalendarCleaner with the given logger.
func NewCalendarCleaner(logger *utils.Logger) *CalendarCleaner {
	return &CalendarCleaner{logger: logger}
}

// Clean parses dates into year/month/day columns, coerces availability to
// {0,1} and drops the stay-length bound columns.
func (c *CalendarCleaner) Clean(raw *models.Table) *models.Table {
	df := raw.Copy()

	if df.Has("date") {
		df.AddColumn("year")
		df.AddColumn("month")
		df.AddColumn("day")
		for _, r := range df.Rows() {
			parsed := parseDate(r["date"])
			r["date"] = parsed
			if t, ok := parsed.(time.Time); ok {
				r["year"] = t.Year()
				r["month"] = int(t.Month())
				r["day"] = t.Day()
			} else {
				r["year"], r["month"], r["day"] = nil, nil, nil
			}
		}
	}

	c.normalizeAvailable(df)
	df.Drop("minimum_nights", "maximum_nights")

	c.logger.Info("[calendar] cleaned %d rows", df.Len())
	return df
}

// normalizeAvailable converts a boolean column directly, and a string column
// only when its non-null domain is exactly {"t","f"}. Any other encoding is
// left untouched.
func (c *CalendarCleaner) normalizeAvailable(df *models.Table) {
	if !df.Has("available") {
		return
	}
	rows := df.Rows()

	allBool := true
	allTF := true
	anyValue := false
	for _, r := range rows {
		v := r["available"]
		if models.IsNull(v) {
			allBool = false
			continue
		}
		anyValue = true
		if _, ok := v.(bool); !ok {
			allBool = false
		}
		if s, ok := models.Str(v); !ok || (s != "t" && s != "f") {
			allTF = false
		}
	}
	if !anyValue {
		return
	}

	switch {
	case allBool:
		for _, r := range rows {
			if r["available"].(bool) {
				r["available"] = 1
			} else {
				r["available"] = 0
			}
		}
	case allTF:
		// Nulls fall to 0 alongside "f".
		for _, r := range rows {
			if s, _ := models.Str(r["available"]); s == "t" {
				r["available"] = 1
			} else {
				r["available"] = 0
			}
		}
	default:
		c.logger.Warn("[calendar] unrecognized availability encoding, column left as-is")
	}
}
