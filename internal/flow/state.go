package flow

import (
	"context"
	"time"
)

// State is the position of a session inside the transaction-entry flow.
type State int

const (
	// StateIdle means no transaction entry is in progress.
	StateIdle State = iota
	// StateFilling waits for a "<expense name> <cost>" line.
	StateFilling
	// StateChoosingCategory waits for a category button press for a new expense.
	StateChoosingCategory
	// StateNewCategory waits for the name of a category to create.
	StateNewCategory
	// StateConfirming waits for the confirm / correct / cancel choice.
	StateConfirming
	// StateCorrecting waits for the choice of which field to fix.
	StateCorrecting
	// Single-field re-entry states. Each one returns to StateConfirming.
	StateCorrectingName
	StateCorrectingCost
	StateCorrectingAmount
	StateCorrectingDate
	StateCorrectingComment
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFilling:
		return "filling"
	case StateChoosingCategory:
		return "choosing_category"
	case StateNewCategory:
		return "new_category"
	case StateConfirming:
		return "confirming"
	case StateCorrecting:
		return "correcting"
	case StateCorrectingName:
		return "correcting_name"
	case StateCorrectingCost:
		return "correcting_cost"
	case StateCorrectingAmount:
		return "correcting_amount"
	case StateCorrectingDate:
		return "correcting_date"
	case StateCorrectingComment:
		return "correcting_comment"
	}
	return "unknown"
}

// valid reports whether s is one of the recognized states. A session loaded
// with anything else is treated as corrupted and reset.
func (s State) valid() bool {
	return s >= StateIdle && s <= StateCorrectingComment
}

// Action is a semantic button tag. The transport maps button presses to
// actions at its boundary; the flow never compares localized display text.
type Action int

const (
	ActionNone Action = iota
	ActionConfirm
	ActionCorrect
	ActionCancel
	ActionNewCategory
	ActionFixName
	ActionFixCategory
	ActionFixCost
	ActionFixAmount
	ActionFixDate
	ActionFixComment
)

var actionTags = map[Action]string{
	ActionConfirm:     "confirm",
	ActionCorrect:     "correct",
	ActionCancel:      "cancel",
	ActionNewCategory: "new_category",
	ActionFixName:     "fix_name",
	ActionFixCategory: "fix_category",
	ActionFixCost:     "fix_cost",
	ActionFixAmount:   "fix_amount",
	ActionFixDate:     "fix_date",
	ActionFixComment:  "fix_comment",
}

// Tag returns the stable wire identifier for the action.
func (a Action) Tag() string {
	if tag, ok := actionTags[a]; ok {
		return tag
	}
	return "none"
}

// ActionFromTag is the inverse of Tag. Unknown tags map to ActionNone.
func ActionFromTag(tag string) Action {
	for a, t := range actionTags {
		if t == tag {
			return a
		}
	}
	return ActionNone
}

// correctionTargets routes the field-fix choices to their re-entry states.
// ActionFixCategory is absent on purpose: it re-enters StateChoosingCategory
// through the category keyboard instead of a dedicated correcting state.
var correctionTargets = map[Action]State{
	ActionFixName:    StateCorrectingName,
	ActionFixCost:    StateCorrectingCost,
	ActionFixAmount:  StateCorrectingAmount,
	ActionFixDate:    StateCorrectingDate,
	ActionFixComment: StateCorrectingComment,
}

// NoComment is the draft comment sentinel meaning "none".
const NoComment = "-"

// Draft holds the fields collected so far for one transaction.
// ExpenseID/CategoryID are zero until the expense is resolved or created, and
// are always set (or cleared) together with each other.
type Draft struct {
	ExpenseName  string
	Cost         float64
	CategoryName string
	CategoryID   int64
	ExpenseID    int64
	CreatedDate  time.Time
	Amount       int
	Comment      string
}

// Session is the per-user conversational context.
type Session struct {
	State State
	Draft *Draft
}

// Clone returns a deep copy, so a failed event can be discarded without
// touching the stored session.
func (s Session) Clone() Session {
	out := s
	if s.Draft != nil {
		draft := *s.Draft
		out.Draft = &draft
	}
	return out
}

// Event is one inbound chat update, already mapped to the flow's vocabulary
// by the transport.
type Event struct {
	UserID   int64
	ChatID   string
	Locale   string
	Text     string
	Action   Action
	Category string
}

// SessionStore owns the sessions. Update must serialize events for the same
// user and must discard the mutation when fn returns an error.
type SessionStore interface {
	Update(userID int64, fn func(*Session) error) error
}

// Ledger is the storage collaborator for categories, expenses and
// transactions.
type Ledger interface {
	Resolve(ctx context.Context, userID int64, expenseName string) (expenseID, categoryID int64, categoryName string, err error)
	CreateCategoryIfAbsent(ctx context.Context, userID int64, categoryName string) (int64, error)
	CreateExpense(ctx context.Context, expenseName string, categoryID int64) (int64, error)
	ListCategories(ctx context.Context, userID int64) ([]string, error)
	CreateTransaction(ctx context.Context, expenseID int64, cost float64, createdDate time.Time, amount int, comment string) error
}

// Prompt is one outbound message. Categories and Choices are mutually
// exclusive; both empty means plain text.
type Prompt struct {
	Locale string
	Text   string
	// Categories renders one button per name plus the fixed "add new" button.
	Categories []string
	ShowAddNew bool
	// Choices renders fixed buttons for the listed actions.
	Choices []Action
}

// Prompter delivers prompts. Delivery is fire-and-forget: failures are logged
// by the implementation, not surfaced to the flow.
type Prompter interface {
	SendPrompt(ctx context.Context, chatID string, p Prompt)
}

// Localizer renders prompt texts from lookup keys.
type Localizer interface {
	Lookup(locale, key string, args ...any) string
}
