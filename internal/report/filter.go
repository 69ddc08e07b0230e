// Package report selects the income or expense records that belong in a user's report.
package report

import (
	"time"

	"github.com/Veraticus/finfacil/internal/model"
	"github.com/Veraticus/finfacil/internal/textnorm"
)

// Record is anything with a stored date and category.
type Record interface {
	RecordDate() string
	RecordCategory() string
}

// Criteria narrows a report. Category is model.AllCategories or a normalized category
// name; nil bounds are open.
type Criteria struct {
	Start    *time.Time
	End      *time.Time
	Category string
}

// HasDateBounds reports whether either bound is set.
func (c Criteria) HasDateBounds() bool {
	return c.Start != nil || c.End != nil
}

// Filter returns the records matching c in their original order. A record whose date does
// not parse is kept only while no date bound is active.
func Filter[T Record](records []T, c Criteria) []T {
	out := make([]T, 0, len(records))
	all := c.Category == "" || textnorm.Normalize(c.Category) == model.AllCategories
	want := textnorm.Normalize(c.Category)

	for _, rec := range records {
		if !all && textnorm.Normalize(rec.RecordCategory()) != want {
			continue
		}
		if c.HasDateBounds() && !inRange(rec.RecordDate(), c.Start, c.End) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func inRange(raw string, start, end *time.Time) bool {
	date, err := model.ParseDate(raw)
	if err != nil {
		return false
	}
	if start != nil && date.Before(model.Day(*start)) {
		return false
	}
	if end != nil && date.After(model.Day(*end)) {
		return false
	}
	return true
}
