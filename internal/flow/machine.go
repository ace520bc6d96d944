package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/avdeeva/spendbot/internal/ledger"
)

const dateLayout = "02.01.2006"

var (
	confirmChoices = []Action{ActionConfirm, ActionCorrect, ActionCancel}
	correctChoices = []Action{
		ActionFixName, ActionFixCategory, ActionFixCost,
		ActionFixAmount, ActionFixDate, ActionFixComment,
	}
)

// Machine drives the transaction-entry flow. It owns no session memory
// itself: every event loads, mutates and stores the session through the
// SessionStore, which also serializes events for the same user.
type Machine struct {
	sessions SessionStore
	ledger   Ledger
	prompter Prompter
	i18n     Localizer
	now      func() time.Time
	log      zerolog.Logger
}

func NewMachine(sessions SessionStore, ledger Ledger, prompter Prompter, i18n Localizer, log zerolog.Logger) *Machine {
	return &Machine{
		sessions: sessions,
		ledger:   ledger,
		prompter: prompter,
		i18n:     i18n,
		now:      time.Now,
		log:      log,
	}
}

// SetNow overrides the clock, used by tests.
func (m *Machine) SetNow(now func() time.Time) {
	m.now = now
}

// HandleStart greets the user. Registration happens at the transport boundary
// before the event reaches the flow.
func (m *Machine) HandleStart(ctx context.Context, ev Event) error {
	m.sendText(ctx, ev, "start")
	return nil
}

// HandleAdd enters the transaction-entry flow. Mid-flow the command is just
// text for the current state.
func (m *Machine) HandleAdd(ctx context.Context, ev Event) error {
	return m.update(ctx, ev, func(sess *Session) error {
		if sess.State != StateIdle {
			return m.handleText(ctx, ev, sess)
		}
		sess.State = StateFilling
		m.log.Info().Int64("user_id", ev.UserID).Msg("entered transaction entry flow")
		m.sendText(ctx, ev, "transaction_pattern")
		return nil
	})
}

// HandleCancel is the top-level cancel command: it aborts the active flow by
// clearing the draft and resetting the state in one atomic update.
func (m *Machine) HandleCancel(ctx context.Context, ev Event) error {
	return m.update(ctx, ev, func(sess *Session) error {
		if sess.State == StateIdle {
			m.sendText(ctx, ev, "cancel_disapprove")
			return nil
		}
		m.log.Info().Int64("user_id", ev.UserID).Stringer("state", sess.State).Msg("flow canceled by command")
		sess.Draft = nil
		sess.State = StateIdle
		m.sendText(ctx, ev, "cancel_approve")
		return nil
	})
}

// HandleText processes a plain message in whatever state the session is in.
func (m *Machine) HandleText(ctx context.Context, ev Event) error {
	return m.update(ctx, ev, func(sess *Session) error {
		return m.handleText(ctx, ev, sess)
	})
}

// HandleAction processes a button press already mapped to an action tag (or,
// for category keyboards, to a category name payload).
func (m *Machine) HandleAction(ctx context.Context, ev Event) error {
	return m.update(ctx, ev, func(sess *Session) error {
		return m.handleAction(ctx, ev, sess)
	})
}

// update runs fn under the per-user session lock, guarding against corrupted
// persisted state first. A failed fn leaves the stored session untouched, so
// retrying the same event is safe.
func (m *Machine) update(ctx context.Context, ev Event, fn func(*Session) error) error {
	return m.sessions.Update(ev.UserID, func(sess *Session) error {
		if !sess.State.valid() {
			m.log.Error().Int64("user_id", ev.UserID).Int("state", int(sess.State)).Msg("unrecognized session state, resetting")
			sess.Draft = nil
			sess.State = StateIdle
			m.sendText(ctx, ev, "session_reset")
			return nil
		}
		return fn(sess)
	})
}

func (m *Machine) handleText(ctx context.Context, ev Event, sess *Session) error {
	switch sess.State {
	case StateIdle:
		m.sendText(ctx, ev, "incorrect_message")
		return nil

	case StateFilling:
		return m.fillTransaction(ctx, ev, sess)

	case StateNewCategory:
		return m.addNewCategory(ctx, ev, sess)

	case StateChoosingCategory, StateConfirming, StateCorrecting:
		// These states are driven by buttons; free text gets the same
		// "press one of the offered buttons" reply.
		m.log.Info().Int64("user_id", ev.UserID).Stringer("state", sess.State).Msg("text instead of button reply")
		m.sendText(ctx, ev, "transaction_confirm_error")
		return nil

	case StateCorrectingName:
		name, ok := ParseName(ev.Text)
		if !ok {
			m.sendText(ctx, ev, "transaction_incorrect_expense_name")
			return nil
		}
		// The old expense row no longer matches the corrected name, so the
		// ids are re-resolved at confirm time.
		sess.Draft.ExpenseName = name
		sess.Draft.ExpenseID = 0
		sess.Draft.CategoryID = 0
		return m.backToConfirm(ctx, ev, sess, "expense name")

	case StateCorrectingCost:
		cost, ok := ParseCost(ev.Text)
		if !ok {
			m.sendText(ctx, ev, "transaction_incorrect_cost")
			return nil
		}
		sess.Draft.Cost = cost
		return m.backToConfirm(ctx, ev, sess, "cost")

	case StateCorrectingAmount:
		amount, ok := ParseAmount(ev.Text)
		if !ok {
			m.sendText(ctx, ev, "transaction_incorrect_amount")
			return nil
		}
		sess.Draft.Amount = amount
		return m.backToConfirm(ctx, ev, sess, "amount")

	case StateCorrectingDate:
		date, ok := ParseDate(ev.Text)
		if !ok {
			m.sendText(ctx, ev, "transaction_incorrect_created_date")
			return nil
		}
		sess.Draft.CreatedDate = date
		return m.backToConfirm(ctx, ev, sess, "created date")

	case StateCorrectingComment:
		comment, ok := ParseComment(ev.Text)
		if !ok {
			m.sendText(ctx, ev, "transaction_incorrect_comment")
			return nil
		}
		sess.Draft.Comment = comment
		return m.backToConfirm(ctx, ev, sess, "comment")
	}
	return nil
}

func (m *Machine) handleAction(ctx context.Context, ev Event, sess *Session) error {
	switch sess.State {
	case StateChoosingCategory:
		if ev.Action == ActionNewCategory {
			sess.State = StateNewCategory
			m.log.Info().Int64("user_id", ev.UserID).Msg("user chose to add a new category")
			m.sendText(ctx, ev, "transaction_add_new_category")
			return nil
		}
		if ev.Category != "" {
			return m.attachToCategory(ctx, ev, sess, ev.Category)
		}

	case StateConfirming:
		switch ev.Action {
		case ActionConfirm:
			return m.confirm(ctx, ev, sess)
		case ActionCorrect:
			sess.State = StateCorrecting
			m.log.Info().Int64("user_id", ev.UserID).Msg("user asked to correct the transaction")
			m.send(ctx, ev, Prompt{
				Text:    m.lookup(ev, "transaction_correct"),
				Choices: correctChoices,
			})
			return nil
		case ActionCancel:
			sess.Draft = nil
			sess.State = StateFilling
			m.log.Info().Int64("user_id", ev.UserID).Msg("transaction canceled")
			m.sendText(ctx, ev, "transaction_canceled", "transaction_pattern")
			return nil
		}

	case StateCorrecting:
		if target, ok := correctionTargets[ev.Action]; ok {
			sess.State = target
			m.log.Info().Int64("user_id", ev.UserID).Stringer("state", target).Msg("entering field correction")
			m.sendText(ctx, ev, correctionPromptKey(target))
			return nil
		}
		if ev.Action == ActionFixCategory {
			return m.reofferCategories(ctx, ev, sess)
		}
	}

	// A button press that makes no sense in the current state.
	m.log.Info().Int64("user_id", ev.UserID).Stringer("state", sess.State).Str("action", ev.Action.Tag()).Msg("unexpected action")
	m.sendText(ctx, ev, "transaction_confirm_error")
	return nil
}

// fillTransaction handles the initial "<expense name> <cost>" line: it
// allocates the draft with defaults and resolves the expense name.
func (m *Machine) fillTransaction(ctx context.Context, ev Event, sess *Session) error {
	expenseName, cost, ok := ParseTransactionLine(ev.Text)
	if !ok {
		m.log.Info().Int64("user_id", ev.UserID).Msg("transaction line in incorrect format")
		m.sendText(ctx, ev, "transaction_incorrect_format", "transaction_pattern")
		return nil
	}

	now := m.now()
	sess.Draft = &Draft{
		ExpenseName: expenseName,
		Cost:        cost,
		CreatedDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Amount:      1,
		Comment:     NoComment,
	}

	expenseID, categoryID, categoryName, err := m.ledger.Resolve(ctx, ev.UserID, expenseName)
	switch {
	case err == nil:
		sess.Draft.ExpenseID = expenseID
		sess.Draft.CategoryID = categoryID
		sess.Draft.CategoryName = categoryName
		sess.State = StateConfirming
		m.log.Info().Int64("user_id", ev.UserID).Str("expense", expenseName).Msg("expense found")
		m.send(ctx, ev, Prompt{
			Text:    m.summary(ev, sess.Draft),
			Choices: confirmChoices,
		})
		return nil
	case isNotFound(err):
		sess.State = StateChoosingCategory
		m.log.Info().Int64("user_id", ev.UserID).Str("expense", expenseName).Msg("expense not found, asking for category")
		return m.offerCategories(ctx, ev, "transaction_no_expense")
	default:
		return fmt.Errorf("resolve expense: %w", err)
	}
}

// attachToCategory binds the draft's expense to a chosen category, creating
// the expense row right away.
func (m *Machine) attachToCategory(ctx context.Context, ev Event, sess *Session, categoryName string) error {
	categoryID, err := m.ledger.CreateCategoryIfAbsent(ctx, ev.UserID, categoryName)
	if err != nil {
		return fmt.Errorf("resolve category %q: %w", categoryName, err)
	}
	expenseID, err := m.ledger.CreateExpense(ctx, sess.Draft.ExpenseName, categoryID)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}

	sess.Draft.CategoryName = categoryName
	sess.Draft.CategoryID = categoryID
	sess.Draft.ExpenseID = expenseID
	sess.State = StateConfirming
	m.log.Info().Int64("user_id", ev.UserID).Str("expense", sess.Draft.ExpenseName).Str("category", categoryName).Msg("expense added to category")
	m.send(ctx, ev, Prompt{
		Text: m.lookup(ev, "transaction_expense_added", sess.Draft.ExpenseName, categoryName) +
			m.summary(ev, sess.Draft),
		Choices: confirmChoices,
	})
	return nil
}

// addNewCategory handles the typed name of a category to create. A name the
// user already has is rejected with a re-prompt rather than silently reused.
func (m *Machine) addNewCategory(ctx context.Context, ev Event, sess *Session) error {
	categoryName, ok := ParseName(ev.Text)
	if !ok {
		m.sendText(ctx, ev, "transaction_incorrect_category_name", "transaction_add_new_category")
		return nil
	}

	existing, err := m.ledger.ListCategories(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, name := range existing {
		if name == categoryName {
			m.log.Info().Int64("user_id", ev.UserID).Str("category", categoryName).Msg("category already exists")
			m.sendText(ctx, ev, "transaction_existed_category", "transaction_add_new_category")
			return nil
		}
	}

	categoryID, err := m.ledger.CreateCategoryIfAbsent(ctx, ev.UserID, categoryName)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	expenseID, err := m.ledger.CreateExpense(ctx, sess.Draft.ExpenseName, categoryID)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}

	sess.Draft.CategoryName = categoryName
	sess.Draft.CategoryID = categoryID
	sess.Draft.ExpenseID = expenseID
	sess.State = StateConfirming
	m.log.Info().Int64("user_id", ev.UserID).Str("category", categoryName).Msg("new category created")
	m.send(ctx, ev, Prompt{
		Text: m.lookup(ev, "transaction_category_added", categoryName) +
			m.lookup(ev, "transaction_expense_added", sess.Draft.ExpenseName, categoryName) +
			m.summary(ev, sess.Draft),
		Choices: confirmChoices,
	})
	return nil
}

// confirm persists the transaction. A draft can reach confirmation without
// resolved ids after the correction sub-flow changed the expense name; those
// are resolved here before the row is written.
func (m *Machine) confirm(ctx context.Context, ev Event, sess *Session) error {
	d := sess.Draft
	if d.ExpenseID == 0 {
		if d.CategoryID == 0 {
			categoryID, err := m.ledger.CreateCategoryIfAbsent(ctx, ev.UserID, d.CategoryName)
			if err != nil {
				return fmt.Errorf("create category: %w", err)
			}
			d.CategoryID = categoryID
		}
		expenseID, err := m.ledger.CreateExpense(ctx, d.ExpenseName, d.CategoryID)
		if err != nil {
			return fmt.Errorf("create expense: %w", err)
		}
		d.ExpenseID = expenseID
	}

	if err := m.ledger.CreateTransaction(ctx, d.ExpenseID, d.Cost, d.CreatedDate, d.Amount, d.Comment); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	sess.Draft = nil
	sess.State = StateFilling
	m.log.Info().Int64("user_id", ev.UserID).Msg("transaction recorded")
	m.sendText(ctx, ev, "transaction_added", "transaction_pattern")
	return nil
}

// backToConfirm returns a correction sub-flow to the confirmation state with
// the updated summary.
func (m *Machine) backToConfirm(ctx context.Context, ev Event, sess *Session, field string) error {
	sess.State = StateConfirming
	m.log.Info().Int64("user_id", ev.UserID).Str("field", field).Msg("draft field corrected")
	m.send(ctx, ev, Prompt{
		Text:    m.summary(ev, sess.Draft),
		Choices: confirmChoices,
	})
	return nil
}

func (m *Machine) offerCategories(ctx context.Context, ev Event, textKey string) error {
	categories, err := m.ledger.ListCategories(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	m.send(ctx, ev, Prompt{
		Text:       m.lookup(ev, textKey),
		Categories: categories,
		ShowAddNew: true,
	})
	return nil
}

// reofferCategories re-runs category resolution from the correction menu.
func (m *Machine) reofferCategories(ctx context.Context, ev Event, sess *Session) error {
	if err := m.offerCategories(ctx, ev, "transaction_change_category"); err != nil {
		return err
	}
	sess.State = StateChoosingCategory
	m.log.Info().Int64("user_id", ev.UserID).Msg("re-entering category choice")
	return nil
}

func correctionPromptKey(target State) string {
	switch target {
	case StateCorrectingName:
		return "transaction_change_expense_name"
	case StateCorrectingCost:
		return "transaction_change_cost"
	case StateCorrectingAmount:
		return "transaction_change_amount"
	case StateCorrectingDate:
		return "transaction_change_created_date"
	case StateCorrectingComment:
		return "transaction_change_comment"
	}
	return "transaction_correct"
}

// summary renders the full transaction overview shown before confirmation.
func (m *Machine) summary(ev Event, d *Draft) string {
	return m.lookup(ev, "transaction_info",
		d.ExpenseName,
		d.CategoryName,
		formatCost(d.Cost),
		d.Amount,
		d.CreatedDate.Format(dateLayout),
		d.Comment,
	)
}

func (m *Machine) lookup(ev Event, key string, args ...any) string {
	return m.i18n.Lookup(ev.Locale, key, args...)
}

// sendText sends the concatenation of the given lookup keys as plain text.
func (m *Machine) sendText(ctx context.Context, ev Event, keys ...string) {
	var text string
	for _, key := range keys {
		text += m.lookup(ev, key)
	}
	m.send(ctx, ev, Prompt{Text: text})
}

func (m *Machine) send(ctx context.Context, ev Event, p Prompt) {
	p.Locale = ev.Locale
	m.prompter.SendPrompt(ctx, ev.ChatID, p)
}

func formatCost(cost float64) string {
	return strconv.FormatFloat(cost, 'f', -1, 64)
}

func isNotFound(err error) bool {
	return errors.Is(err, ledger.ErrExpenseNotFound)
}
