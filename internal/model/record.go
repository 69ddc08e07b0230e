package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is how record dates are stored and displayed (dd/mm/yyyy).
const DateLayout = "02/01/2006"

// inputDateLayout also accepts single-digit days and months.
const inputDateLayout = "2/1/2006"

// ParseDate parses a user or stored date in day/month/year order. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(inputDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t with DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Day truncates t to its calendar date at midnight UTC so it compares with ParseDate results.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IncomeRecord is a balance top-up. Category keeps the exact stored display string.
type IncomeRecord struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Note     string          `json:"note"`
	ID       int             `json:"id"`
}

// ExpenseRecord is money spent. Category is stored normalized; Attachment is an opaque
// photo reference from the transport, empty when the user sent none.
type ExpenseRecord struct {
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category"`
	Date       string          `json:"date"`
	Attachment string          `json:"attachment"`
	Note       string          `json:"note"`
	ID         int             `json:"id"`
}

// RecordDate returns the stored date text.
func (r IncomeRecord) RecordDate() string { return r.Date }

// RecordCategory returns the stored category.
func (r IncomeRecord) RecordCategory() string { return r.Category }

// RecordDate returns the stored date text.
func (r ExpenseRecord) RecordDate() string { return r.Date }

// RecordCategory returns the stored category.
func (r ExpenseRecord) RecordCategory() string { return r.Category }

// HasAttachment reports whether a receipt photo was attached.
func (r ExpenseRecord) HasAttachment() bool { return r.Attachment != "" }
