package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"go.uber.org/zap"
)

const loanColumns = "id, book_id, user_id, status, loan_date, due_date, return_date, renewal_count, created_ts, updated_ts"

func (s *Store) GetLoan(ctx context.Context, find *model.FindLoan) (*model.Loan, error) {
	return getLoan(ctx, s.db, find)
}

func (t *Tx) GetLoan(ctx context.Context, find *model.FindLoan) (*model.Loan, error) {
	return getLoan(ctx, t.tx, find)
}

func getLoan(ctx context.Context, q querier, find *model.FindLoan) (*model.Loan, error) {
	list, err := listLoans(ctx, q, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListLoans(ctx context.Context, find *model.FindLoan) ([]*model.Loan, error) {
	return listLoans(ctx, s.db, find)
}

func loanFilter(find *model.FindLoan) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.BookID; v != nil {
		where, args = append(where, "book_id = ?"), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}
	if find.OnlyOverdue {
		where, args = append(where, "status = 'ACTIVE' AND due_date < ?"), append(args, find.Now)
	}
	if v := find.DueBefore; v != nil {
		where, args = append(where, "status = 'ACTIVE' AND due_date >= ? AND due_date < ?"), append(args, find.Now, *v)
	}

	return where, args
}

func listLoans(ctx context.Context, q querier, find *model.FindLoan) ([]*model.Loan, error) {
	where, args := loanFilter(find)

	query := "SELECT " + loanColumns + " FROM loans WHERE " + strings.Join(where, " AND ") + " ORDER BY created_ts DESC, id DESC"
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
		if o := find.Offset; o != nil {
			query += fmt.Sprintf(" OFFSET %d", *o)
		}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Debug("Error querying loans", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Loan, 0)
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, loan)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (*model.Loan, error) {
	var loan model.Loan
	if err := row.Scan(
		&loan.ID,
		&loan.BookID,
		&loan.UserID,
		&loan.Status,
		&loan.LoanDate,
		&loan.DueDate,
		&loan.ReturnDate,
		&loan.RenewalCount,
		&loan.CreatedTs,
		&loan.UpdatedTs,
	); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (s *Store) CountLoans(ctx context.Context, find *model.FindLoan) (int64, error) {
	return countLoans(ctx, s.db, find)
}

func (t *Tx) CountLoans(ctx context.Context, find *model.FindLoan) (int64, error) {
	return countLoans(ctx, t.tx, find)
}

func countLoans(ctx context.Context, q querier, find *model.FindLoan) (int64, error) {
	where, args := loanFilter(find)
	var count int64
	query := "SELECT COUNT(*) FROM loans WHERE " + strings.Join(where, " AND ")
	if err := q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountLiveLoans counts a user's non-terminal loans (PENDING or ACTIVE).
func (t *Tx) CountLiveLoans(ctx context.Context, userID int64) (int64, error) {
	var count int64
	query := "SELECT COUNT(*) FROM loans WHERE user_id = ? AND status IN ('PENDING', 'ACTIVE')"
	if err := t.tx.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// HasLiveLoanForBook reports whether the user already has a PENDING or ACTIVE
// loan on the book.
func (t *Tx) HasLiveLoanForBook(ctx context.Context, userID, bookID int64) (bool, error) {
	var count int64
	query := "SELECT COUNT(*) FROM loans WHERE user_id = ? AND book_id = ? AND status IN ('PENDING', 'ACTIVE')"
	if err := t.tx.QueryRowContext(ctx, query, userID, bookID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasLiveLoansForBook reports whether any non-terminal loan references the
// book. Used to block book deletion.
func (t *Tx) HasLiveLoansForBook(ctx context.Context, bookID int64) (bool, error) {
	var count int64
	query := "SELECT COUNT(*) FROM loans WHERE book_id = ? AND status IN ('PENDING', 'ACTIVE')"
	if err := t.tx.QueryRowContext(ctx, query, bookID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// EarliestActiveDueDate returns the soonest due date among the book's active
// loans, or 0 when it has none.
func (s *Store) EarliestActiveDueDate(ctx context.Context, bookID int64) (int64, error) {
	var due int64
	query := "SELECT COALESCE(MIN(due_date), 0) FROM loans WHERE book_id = ? AND status = 'ACTIVE'"
	if err := s.db.QueryRowContext(ctx, query, bookID).Scan(&due); err != nil {
		return 0, err
	}
	return due, nil
}

func (t *Tx) CreateLoan(ctx context.Context, create *model.Loan) (*model.Loan, error) {
	stmt := `
		INSERT INTO loans (book_id, user_id, status, loan_date, due_date, return_date, renewal_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + loanColumns
	return scanLoan(t.tx.QueryRowContext(ctx, stmt,
		create.BookID,
		create.UserID,
		create.Status,
		create.LoanDate,
		create.DueDate,
		create.ReturnDate,
		create.RenewalCount,
	))
}

type UpdateLoan struct {
	ID int64
	// FromStatus guards the transition: the update only applies while the
	// loan still has this status.
	FromStatus model.LoanStatus

	Status       *model.LoanStatus
	LoanDate     *int64
	DueDate      *int64
	ReturnDate   *int64
	RenewalCount *int
}

// UpdateLoan applies a guarded transition and returns the updated row. Fails
// with StateViolation when the loan is no longer in FromStatus.
func (t *Tx) UpdateLoan(ctx context.Context, update *UpdateLoan) (*model.Loan, error) {
	set, args := []string{"updated_ts = strftime('%s', 'now')"}, []any{}

	if v := update.Status; v != nil {
		set, args = append(set, "status = ?"), append(args, *v)
	}
	if v := update.LoanDate; v != nil {
		set, args = append(set, "loan_date = ?"), append(args, *v)
	}
	if v := update.DueDate; v != nil {
		set, args = append(set, "due_date = ?"), append(args, *v)
	}
	if v := update.ReturnDate; v != nil {
		set, args = append(set, "return_date = ?"), append(args, *v)
	}
	if v := update.RenewalCount; v != nil {
		set, args = append(set, "renewal_count = ?"), append(args, *v)
	}
	args = append(args, update.ID, update.FromStatus)

	stmt := "UPDATE loans SET " + strings.Join(set, ", ") + " WHERE id = ? AND status = ? RETURNING " + loanColumns
	loan, err := scanLoan(t.tx.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, model.NewDomainError(model.ErrStateViolation, "loan %d is not %s", update.ID, update.FromStatus)
		}
		return nil, err
	}
	return loan, nil
}
