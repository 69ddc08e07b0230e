package dialog

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Veraticus/finfacil/internal/model"
	"github.com/Veraticus/finfacil/internal/report"
	"github.com/Veraticus/finfacil/internal/textnorm"
)

func (e *Engine) startExpenseReport(ctx context.Context, s *Session, _ input) (outcome, error) {
	return e.promptReportCategory(ctx, s, model.CategoryTypeExpense)
}

func (e *Engine) startIncomeReport(ctx context.Context, s *Session, _ input) (outcome, error) {
	return e.promptReportCategory(ctx, s, model.CategoryTypeIncome)
}

func (e *Engine) promptReportCategory(ctx context.Context, s *Session, ns model.CategoryType) (outcome, error) {
	list, err := e.categories.ViewCategories(ctx, s.UserID, ns)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to load %s categories: %w", ns, err)
	}
	s.Step = StepAskReportCategory
	return next(reportCategoryPrompt(ns, list)), nil
}

func (e *Engine) expenseReportCategory(ctx context.Context, s *Session, in input) (outcome, error) {
	return e.reportCategory(ctx, s, in, model.CategoryTypeExpense)
}

func (e *Engine) incomeReportCategory(ctx context.Context, s *Session, in input) (outcome, error) {
	return e.reportCategory(ctx, s, in, model.CategoryTypeIncome)
}

// reportCategory accepts an existing category or the all-categories sentinel.
func (e *Engine) reportCategory(ctx context.Context, s *Session, in input, ns model.CategoryType) (outcome, error) {
	category := textnorm.Normalize(in.text)
	if category != model.AllCategories {
		list, err := e.categories.ViewCategories(ctx, s.UserID, ns)
		if err != nil {
			return outcome{}, fmt.Errorf("failed to load %s categories: %w", ns, err)
		}
		if textnorm.IndexOf(list, in.text) < 0 {
			return next(reportCategoryInvalid(list)), nil
		}
	}

	s.ReportCategory = category
	s.Step = StepAskStartDate
	return next(withKeyboard(msgAskStartDate, noFilterKeyboard)), nil
}

// reportStartDate takes the lower bound. Skipping it skips the upper bound too.
func (e *Engine) reportStartDate(ctx context.Context, s *Session, in input) (outcome, error) {
	if isNoFilters(in.text) {
		s.ReportStart = nil
		s.ReportEnd = nil
		return e.generateReport(ctx, s)
	}

	date, err := parsePastDate(in.text, e.now())
	if err != nil {
		return next(dateError(err)), nil
	}

	s.ReportStart = &date
	s.Step = StepAskEndDate
	return next(withKeyboard(msgAskEndDate, noFilterKeyboard)), nil
}

// reportEndDate takes the upper bound. An end before the start is accepted and simply
// matches nothing.
func (e *Engine) reportEndDate(ctx context.Context, s *Session, in input) (outcome, error) {
	if isNoFilters(in.text) {
		s.ReportEnd = nil
		return e.generateReport(ctx, s)
	}

	date, err := parsePastDate(in.text, e.now())
	if err != nil {
		return next(dateError(err)), nil
	}

	s.ReportEnd = &date
	return e.generateReport(ctx, s)
}

func (e *Engine) generateReport(ctx context.Context, s *Session) (outcome, error) {
	if s.ReportCategory == "" {
		return outcome{}, missing("report category")
	}
	criteria := report.Criteria{
		Category: s.ReportCategory,
		Start:    s.ReportStart,
		End:      s.ReportEnd,
	}

	if s.Flow == FlowIncomeReport {
		records, err := e.ledger.FilterIncome(ctx, s.UserID, criteria)
		if err != nil {
			return outcome{}, fmt.Errorf("failed to filter income: %w", err)
		}
		if len(records) == 0 {
			return finish(clearKeyboard(msgNoIncomeFound)), nil
		}
		return finish(incomeReport(records), text(msgReportDone)), nil
	}

	records, err := e.ledger.FilterExpenses(ctx, s.UserID, criteria)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to filter expenses: %w", err)
	}
	if len(records) == 0 {
		return finish(clearKeyboard(msgNoExpenseFound)), nil
	}

	var withReceipt []int
	for _, r := range records {
		if r.HasAttachment() {
			withReceipt = append(withReceipt, r.ID)
		}
	}
	if len(withReceipt) == 0 {
		return finish(expenseReport(records), text(msgNoAttachments), text(msgReportDone)), nil
	}

	s.PendingAttachments = withReceipt
	s.Step = StepBrowseAttachments
	return next(expenseReport(records), withKeyboard(msgBrowseFirst, browseKeyboard(withReceipt))), nil
}

// browseAttachments shows the receipts for the requested ids and keeps asking until the
// user declines or every receipt in the report has been shown.
func (e *Engine) browseAttachments(ctx context.Context, s *Session, in input) (outcome, error) {
	if yes, err := parseYesNo(in.text, false); err == nil && !yes {
		return finish(clearKeyboard(msgReportDone)), nil
	}
	if len(s.PendingAttachments) == 0 {
		return outcome{}, missing("pending attachments")
	}

	var (
		replies   []Reply
		invalid   []string
		displayed bool
	)
	for _, token := range strings.Split(in.text, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := strconv.Atoi(token)
		if err != nil || !slices.Contains(s.PendingAttachments, id) {
			invalid = append(invalid, token)
			continue
		}

		rec, found, err := e.ledger.ExpenseByID(ctx, s.UserID, id)
		if err != nil {
			return outcome{}, fmt.Errorf("failed to load expense %d: %w", id, err)
		}
		if !found || !rec.HasAttachment() {
			invalid = append(invalid, token)
			continue
		}

		replies = append(replies, Reply{Text: attachmentCaption(id), Photo: rec.Attachment})
		s.PendingAttachments = slices.DeleteFunc(s.PendingAttachments, func(p int) bool { return p == id })
		displayed = true
	}

	if len(invalid) > 0 {
		replies = append(replies, unknownAttachmentIDs(invalid))
	}
	if len(s.PendingAttachments) == 0 {
		return finish(append(replies, clearKeyboard(msgBrowseExhausted))...), nil
	}

	prompt := msgBrowseRetry
	if displayed || len(invalid) > 0 {
		prompt = msgBrowseAgain
	}
	return next(append(replies, withKeyboard(prompt, browseKeyboard(s.PendingAttachments)))...), nil
}
