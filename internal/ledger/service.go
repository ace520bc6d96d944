package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avdeeva/spendbot/internal/db"
)

var (
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// uniqueViolation is the Postgres error code for a unique constraint conflict.
const uniqueViolation = "23505"

// Service resolves expense names against a user's categories and expenses and
// records confirmed transactions.
type Service struct {
	db *db.DB
}

func NewService(database *db.DB) *Service {
	return &Service{db: database}
}

// Resolve looks up an expense with the given name for the user. When several
// expense rows share the name (the name was re-bound to a new category at some
// point) the most recently created row wins.
func (s *Service) Resolve(ctx context.Context, userID int64, expenseName string) (expenseID, categoryID int64, categoryName string, err error) {
	query := `
		SELECT e.expense_id, c.category_id, c.category_name
		FROM expenses e
		JOIN categories c ON c.category_id = e.category_id
		WHERE e.expense_name = $1 AND c.user_id = $2
		ORDER BY e.expense_id DESC
		LIMIT 1
	`
	err = s.db.Pool().QueryRow(ctx, query, expenseName, userID).Scan(&expenseID, &categoryID, &categoryName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, "", ErrExpenseNotFound
		}
		return 0, 0, "", err
	}
	return expenseID, categoryID, categoryName, nil
}

// CreateCategoryIfAbsent inserts a category for the user and returns its id.
// If the category already exists the existing id is returned; a concurrent
// insert racing the check is absorbed by the unique constraint.
func (s *Service) CreateCategoryIfAbsent(ctx context.Context, userID int64, categoryName string) (int64, error) {
	var categoryID int64
	err := s.db.Pool().QueryRow(ctx,
		"INSERT INTO categories (user_id, category_name) VALUES ($1, $2) RETURNING category_id",
		userID, categoryName,
	).Scan(&categoryID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return s.FindCategory(ctx, userID, categoryName)
		}
		return 0, err
	}
	return categoryID, nil
}

// FindCategory returns the id of the user's category with the given name.
func (s *Service) FindCategory(ctx context.Context, userID int64, categoryName string) (int64, error) {
	var categoryID int64
	err := s.db.Pool().QueryRow(ctx,
		"SELECT category_id FROM categories WHERE user_id = $1 AND category_name = $2",
		userID, categoryName,
	).Scan(&categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrCategoryNotFound
		}
		return 0, err
	}
	return categoryID, nil
}

// CreateExpense always inserts a new expense row, even when an expense with
// the same name already exists under another category. Re-binding an expense
// name to a new category is done by adding a row, never by updating one.
func (s *Service) CreateExpense(ctx context.Context, expenseName string, categoryID int64) (int64, error) {
	var expenseID int64
	err := s.db.Pool().QueryRow(ctx,
		"INSERT INTO expenses (category_id, expense_name) VALUES ($1, $2) RETURNING expense_id",
		categoryID, expenseName,
	).Scan(&expenseID)
	if err != nil {
		return 0, err
	}
	return expenseID, nil
}

// ListCategories returns the user's category names ordered by creation.
// An empty slice is a valid result for new users.
func (s *Service) ListCategories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.Pool().Query(ctx,
		"SELECT category_name FROM categories WHERE user_id = $1 ORDER BY category_id",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		categories = append(categories, name)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

// CreateTransaction persists a confirmed transaction. Rows are immutable once
// written.
func (s *Service) CreateTransaction(ctx context.Context, expenseID int64, cost float64, createdDate time.Time, amount int, comment string) error {
	_, err := s.db.Pool().Exec(ctx,
		"INSERT INTO transactions (expense_id, cost, created_date, amount, comment) VALUES ($1, $2, $3, $4, $5)",
		expenseID, cost, createdDate, amount, comment,
	)
	return err
}

type Transaction struct {
	TransactionID int64     `json:"transaction_id"`
	ExpenseName   string    `json:"expense_name"`
	CategoryName  string    `json:"category_name"`
	Cost          float64   `json:"cost"`
	CreatedDate   time.Time `json:"created_date"`
	Amount        int       `json:"amount"`
	Comment       string    `json:"comment"`
}

// ListTransactions returns the user's recorded transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID int64) ([]Transaction, error) {
	query := `
		SELECT t.transaction_id, e.expense_name, c.category_name, t.cost, t.created_date, t.amount, t.comment
		FROM transactions t
		JOIN expenses e ON e.expense_id = t.expense_id
		JOIN categories c ON c.category_id = e.category_id
		WHERE c.user_id = $1
		ORDER BY t.transaction_id DESC
	`
	rows, err := s.db.Pool().Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.TransactionID, &t.ExpenseName, &t.CategoryName, &t.Cost, &t.CreatedDate, &t.Amount, &t.Comment); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}
