// Package dialog implements the conversation state machine: multi-step flows for recording
// income and expenses, managing categories and producing reports.
package dialog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FlowKind identifies a multi-step dialog.
type FlowKind int

// Flows.
const (
	FlowNone FlowKind = iota
	FlowAddIncome
	FlowAddExpense
	FlowAddExpenseCategory
	FlowRemoveExpenseCategory
	FlowAddIncomeCategory
	FlowRemoveIncomeCategory
	FlowExpenseReport
	FlowIncomeReport
)

var flowNames = map[FlowKind]string{
	FlowNone:                  "none",
	FlowAddIncome:             "add_income",
	FlowAddExpense:            "add_expense",
	FlowAddExpenseCategory:    "add_expense_category",
	FlowRemoveExpenseCategory: "remove_expense_category",
	FlowAddIncomeCategory:     "add_income_category",
	FlowRemoveIncomeCategory:  "remove_income_category",
	FlowExpenseReport:         "expense_report",
	FlowIncomeReport:          "income_report",
}

func (f FlowKind) String() string {
	if name, ok := flowNames[f]; ok {
		return name
	}
	return "unknown"
}

// Step is the point inside a flow the user is expected to answer next.
type Step int

// Steps. Each flow uses a subset.
const (
	StepNone Step = iota
	StepAskAmount
	StepAskCategory
	StepAskNote
	StepAskDate
	StepAskAttachmentChoice
	StepWaitPhoto
	StepAskName
	StepConfirmRemoval
	StepAskReportCategory
	StepAskStartDate
	StepAskEndDate
	StepBrowseAttachments
)

var stepNames = map[Step]string{
	StepNone:                "none",
	StepAskAmount:           "ask_amount",
	StepAskCategory:         "ask_category",
	StepAskNote:             "ask_note",
	StepAskDate:             "ask_date",
	StepAskAttachmentChoice: "ask_attachment_choice",
	StepWaitPhoto:           "wait_photo",
	StepAskName:             "ask_name",
	StepConfirmRemoval:      "confirm_removal",
	StepAskReportCategory:   "ask_report_category",
	StepAskStartDate:        "ask_start_date",
	StepAskEndDate:          "ask_end_date",
	StepBrowseAttachments:   "browse_attachments",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Session is the scratchpad of one dialog instance. It lives only in memory and is dropped
// when the flow ends.
type Session struct {
	StartedAt time.Time
	UpdatedAt time.Time

	ReportStart *time.Time
	ReportEnd   *time.Time

	Amount decimal.Decimal

	UserID     string
	Category   string
	Note       string
	Date       string
	Attachment string

	// PendingRemoval is the category awaiting confirmation, normalized for expenses and
	// as stored for income.
	PendingRemoval string
	ReportCategory string

	// PendingAttachments holds the report's expense ids whose receipts were not shown yet.
	PendingAttachments []int

	Flow FlowKind
	Step Step
	ID   uuid.UUID

	// CommittedID is the record a commit step already appended. It is set only while the
	// balance update for that record is pending a retry.
	CommittedID int

	// NoteSet distinguishes an empty note the user chose from one never asked.
	NoteSet bool
}

func (s *Session) clone() *Session {
	c := *s
	if s.PendingAttachments != nil {
		c.PendingAttachments = append([]int(nil), s.PendingAttachments...)
	}
	if s.ReportStart != nil {
		start := *s.ReportStart
		c.ReportStart = &start
	}
	if s.ReportEnd != nil {
		end := *s.ReportEnd
		c.ReportEnd = &end
	}
	return &c
}
