package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// input is what a step handler sees of an event.
type input struct {
	text  string
	photo string
}

// outcome is a handler's result: the replies to send and whether the dialog ended.
type outcome struct {
	replies []Reply
	done    bool
}

func next(replies ...Reply) outcome {
	return outcome{replies: replies}
}

func finish(replies ...Reply) outcome {
	return outcome{replies: replies, done: true}
}

type stateKey struct {
	flow FlowKind
	step Step
}

type stepFunc func(ctx context.Context, s *Session, in input) (outcome, error)

type statelessFunc func(ctx context.Context, userID string) ([]Reply, error)

// command is a slash command. Exactly one of flow and run is set for everything except
// cancel and back, which the engine handles itself.
type command struct {
	run  statelessFunc
	flow FlowKind
}

const (
	cmdCancel = "cancelar"
	cmdBack   = "voltar"
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, which decides what "today" is for date validation.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithSessionRegistry shares a registry instead of creating a private one.
func WithSessionRegistry(r *SessionRegistry) Option {
	return func(e *Engine) {
		e.sessions = r
	}
}

// Engine routes events to the handler for the user's current flow and step.
type Engine struct {
	categories Categories
	ledger     Ledger
	sessions   *SessionRegistry
	now        func() time.Time
	commands   map[string]command
	starters   map[FlowKind]stepFunc
	handlers   map[stateKey]stepFunc
}

// NewEngine creates an engine over the given stores.
func NewEngine(categories Categories, ledger Ledger, opts ...Option) *Engine {
	e := &Engine{
		categories: categories,
		ledger:     ledger,
		sessions:   NewSessionRegistry(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.commands = map[string]command{
		"start":                  {run: e.cmdStart},
		"ajuda":                  {run: e.cmdHelp},
		"entradas":               {run: e.cmdIncomeMenu},
		"despesas":               {run: e.cmdExpenseMenu},
		"relatorios":             {run: e.cmdReportMenu},
		"consultar_saldo":        {run: e.cmdBalance},
		"listar_cat_entrada":     {run: e.cmdListIncomeCategories},
		"listar_cat_despesas":    {run: e.cmdListExpenseCategories},
		"adicionar_saldo":        {flow: FlowAddIncome},
		"adicionar_despesas":     {flow: FlowAddExpense},
		"adicionar_cat_despesas": {flow: FlowAddExpenseCategory},
		"remover_cat_despesas":   {flow: FlowRemoveExpenseCategory},
		"adicionar_cat_entrada":  {flow: FlowAddIncomeCategory},
		"remover_cat_entrada":    {flow: FlowRemoveIncomeCategory},
		"relatorio_despesas":     {flow: FlowExpenseReport},
		"relatorio_entradas":     {flow: FlowIncomeReport},
		cmdCancel:                {},
		cmdBack:                  {},
	}

	e.starters = map[FlowKind]stepFunc{
		FlowAddIncome:             e.startAddIncome,
		FlowAddExpense:            e.startAddExpense,
		FlowAddExpenseCategory:    e.startAddExpenseCategory,
		FlowRemoveExpenseCategory: e.startRemoveExpenseCategory,
		FlowAddIncomeCategory:     e.startAddIncomeCategory,
		FlowRemoveIncomeCategory:  e.startRemoveIncomeCategory,
		FlowExpenseReport:         e.startExpenseReport,
		FlowIncomeReport:          e.startIncomeReport,
	}

	e.handlers = map[stateKey]stepFunc{
		{FlowAddIncome, StepAskAmount}:   e.incomeAmount,
		{FlowAddIncome, StepAskCategory}: e.incomeCategory,
		{FlowAddIncome, StepAskNote}:     e.incomeNote,
		{FlowAddIncome, StepAskDate}:     e.incomeDate,

		{FlowAddExpense, StepAskAmount}:           e.expenseAmount,
		{FlowAddExpense, StepAskAttachmentChoice}: e.expenseAttachmentChoice,
		{FlowAddExpense, StepWaitPhoto}:           e.expensePhoto,
		{FlowAddExpense, StepAskCategory}:         e.expenseCategory,
		{FlowAddExpense, StepAskDate}:             e.expenseDate,
		{FlowAddExpense, StepAskNote}:             e.expenseNote,

		{FlowAddExpenseCategory, StepAskName}:           e.addExpenseCategoryName,
		{FlowRemoveExpenseCategory, StepAskName}:        e.removeExpenseCategoryName,
		{FlowRemoveExpenseCategory, StepConfirmRemoval}: e.confirmExpenseCategoryRemoval,
		{FlowAddIncomeCategory, StepAskName}:            e.addIncomeCategoryName,
		{FlowRemoveIncomeCategory, StepAskName}:         e.removeIncomeCategoryName,
		{FlowRemoveIncomeCategory, StepConfirmRemoval}:  e.confirmIncomeCategoryRemoval,

		{FlowExpenseReport, StepAskReportCategory}: e.expenseReportCategory,
		{FlowExpenseReport, StepAskStartDate}:      e.reportStartDate,
		{FlowExpenseReport, StepAskEndDate}:        e.reportEndDate,
		{FlowExpenseReport, StepBrowseAttachments}: e.browseAttachments,
		{FlowIncomeReport, StepAskReportCategory}:  e.incomeReportCategory,
		{FlowIncomeReport, StepAskStartDate}:       e.reportStartDate,
		{FlowIncomeReport, StepAskEndDate}:         e.reportEndDate,
	}

	return e
}

// Session returns a copy of the user's active dialog, if any.
func (e *Engine) Session(userID string) (*Session, bool) {
	return e.sessions.Get(userID)
}

// Handle processes one event to completion and returns the replies to send. Storage
// failures are returned as errors with the session left at its current step.
func (e *Engine) Handle(ctx context.Context, ev Event) ([]Reply, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if strings.TrimSpace(ev.UserID) == "" {
		return nil, ErrEmptyUserID
	}

	msg := strings.TrimSpace(ev.Text)
	session, active := e.sessions.Get(ev.UserID)

	if !ev.IsPhoto() {
		if name, ok := e.parseCommand(msg, active); ok {
			return e.runCommand(ctx, ev.UserID, name, session)
		}
	}

	if !active {
		return []Reply{{Text: msgNoActiveDialog}}, nil
	}
	return e.advance(ctx, session, input{text: msg, photo: ev.Photo})
}

// parseCommand recognizes "/name", "/name@bot" and, when no dialog is active, the bare
// name. Any slash-prefixed text counts as a command, known or not.
func (e *Engine) parseCommand(msg string, active bool) (string, bool) {
	if strings.HasPrefix(msg, "/") {
		fields := strings.Fields(msg)
		name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
		if i := strings.IndexByte(name, '@'); i >= 0 {
			name = name[:i]
		}
		return name, true
	}
	if active {
		return "", false
	}
	name := strings.ToLower(msg)
	if _, ok := e.commands[name]; ok {
		return name, true
	}
	return "", false
}

func (e *Engine) runCommand(ctx context.Context, userID, name string, current *Session) ([]Reply, error) {
	cmd, ok := e.commands[name]
	switch {
	case !ok:
		return []Reply{{Text: msgUnknownCommand}}, nil

	case name == cmdCancel:
		if prev, had := e.sessions.Delete(userID); had {
			slog.Info("dialog cancelled",
				"user_id", userID,
				"session_id", prev.ID,
				"flow", prev.Flow,
				"step", prev.Step)
		}
		return []Reply{clearKeyboard(msgCancelled), helpReply()}, nil

	case name == cmdBack:
		if prev, had := e.sessions.Delete(userID); had {
			slog.Info("dialog abandoned",
				"user_id", userID,
				"session_id", prev.ID,
				"flow", prev.Flow)
		}
		return []Reply{helpReply()}, nil

	case cmd.run != nil:
		return cmd.run(ctx, userID)

	default:
		return e.startFlow(ctx, userID, cmd.flow, current)
	}
}

func (e *Engine) startFlow(ctx context.Context, userID string, flow FlowKind, current *Session) ([]Reply, error) {
	now := e.now()
	s := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Flow:      flow,
		StartedAt: now,
		UpdatedAt: now,
	}

	out, err := e.starters[flow](ctx, s, input{})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", flow, err)
	}

	var replies []Reply
	if current != nil {
		replies = append(replies, Reply{Text: msgFlowDiscarded})
	}
	replies = append(replies, out.replies...)

	if evicted, had := e.sessions.Put(s); had {
		slog.Info("dialog evicted by new flow",
			"user_id", userID,
			"session_id", evicted.ID,
			"flow", evicted.Flow,
			"step", evicted.Step,
			"new_flow", flow)
	}
	slog.Debug("dialog started", "user_id", userID, "session_id", s.ID, "flow", flow, "step", s.Step)
	return replies, nil
}

func (e *Engine) advance(ctx context.Context, s *Session, in input) ([]Reply, error) {
	logger := slog.With("user_id", s.UserID, "session_id", s.ID, "flow", s.Flow, "step", s.Step)

	handler, ok := e.handlers[stateKey{s.Flow, s.Step}]
	if !ok {
		logger.Error("no handler for dialog state")
		e.sessions.Delete(s.UserID)
		return []Reply{ErrorReply()}, nil
	}

	if s.Step == StepWaitPhoto && in.photo == "" {
		return []Reply{{Text: msgExpectPhoto}}, nil
	}
	if s.Step != StepWaitPhoto && in.photo != "" {
		return []Reply{{Text: msgExpectText}}, nil
	}

	committed := s.CommittedID
	out, err := handler(ctx, s, in)
	if errors.Is(err, ErrMissingSessionValue) {
		logger.Error("dialog state incomplete", "error", err)
		e.sessions.Delete(s.UserID)
		return []Reply{ErrorReply()}, nil
	}
	if err != nil {
		if s.CommittedID != committed {
			logger.Warn("record stored but balance not updated", "record_id", s.CommittedID, "error", err)
			s.UpdatedAt = e.now()
			e.sessions.Put(s)
		}
		return nil, fmt.Errorf("%s/%s: %w", s.Flow, s.Step, err)
	}

	if out.done {
		e.sessions.Delete(s.UserID)
		logger.Debug("dialog finished")
		return out.replies, nil
	}

	s.UpdatedAt = e.now()
	e.sessions.Put(s)
	return out.replies, nil
}

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingSessionValue, field)
}
