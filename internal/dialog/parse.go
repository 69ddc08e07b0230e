package dialog

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finfacil/internal/model"
	"github.com/Veraticus/finfacil/internal/textnorm"
)

var (
	errAmountSyntax   = errors.New("amount is not a number")
	errAmountNotPos   = errors.New("amount must be greater than zero")
	errDateSyntax     = errors.New("date is not dd/mm/yyyy")
	errDateInFuture   = errors.New("date is in the future")
	errAnswerNotKnown = errors.New("answer not recognized")
)

const (
	tokenNothing   = "NADA"
	tokenNoFilters = "SEM FILTROS"
)

// parseAmount accepts "300", "300,50" or "300.50".
func parseAmount(s string) (decimal.Decimal, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if raw == "" {
		return decimal.Zero, errAmountSyntax
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errAmountSyntax
	}
	if !amount.IsPositive() {
		return decimal.Zero, errAmountNotPos
	}
	return amount, nil
}

// parsePastDate parses d/m/yyyy and rejects dates after today's calendar date.
func parsePastDate(s string, now time.Time) (time.Time, error) {
	date, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, errDateSyntax
	}
	if date.After(model.Day(now)) {
		return time.Time{}, errDateInFuture
	}
	return date, nil
}

// parseNote maps the skip token to an empty note.
func parseNote(s string) string {
	note := strings.TrimSpace(s)
	if textnorm.Normalize(note) == tokenNothing {
		return ""
	}
	return note
}

// parseYesNo accepts SIM or NAO/NÃO. When short is set the single letters S and N are
// accepted too.
func parseYesNo(s string, short bool) (bool, error) {
	switch textnorm.Normalize(strings.TrimSpace(s)) {
	case "SIM":
		return true, nil
	case "NAO":
		return false, nil
	case "S":
		if short {
			return true, nil
		}
	case "N":
		if short {
			return false, nil
		}
	}
	return false, errAnswerNotKnown
}

func isNoFilters(s string) bool {
	return textnorm.Normalize(strings.TrimSpace(s)) == tokenNoFilters
}
