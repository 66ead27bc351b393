package engine

import (
	"context"
	"fmt"

	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/store"
	"go.uber.org/zap"
)

// RequestLoan creates a PENDING loan. No copy is consumed yet; that happens
// on approval, which models the librarian-approval workflow.
func (e *Engine) RequestLoan(ctx context.Context, actor model.Actor, req *model.LoanCreateRequest) (*model.Loan, error) {
	if err := requireOwnerOrStaff(actor, req.UserID); err != nil {
		return nil, err
	}

	now := e.now()
	if req.DueDate <= now.Unix() {
		return nil, model.NewDomainError(model.ErrValidation, "due date must be in the future")
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := getUserTx(ctx, tx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user.Status != model.UserActive {
		return nil, model.NewDomainError(model.ErrPermissionDenied, "user account is %s", user.Status)
	}
	if _, err := getBookTx(ctx, tx, req.BookID); err != nil {
		return nil, err
	}

	hasLoan, err := tx.HasLiveLoanForBook(ctx, req.UserID, req.BookID)
	if err != nil {
		return nil, err
	}
	if hasLoan {
		return nil, model.NewDomainError(model.ErrConflict, "user already has a loan on this book")
	}

	liveLoans, err := tx.CountLiveLoans(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if liveLoans >= int64(e.Policy().MaxActiveLoans) {
		return nil, model.NewDomainError(model.ErrUserAtLoanLimit, "user has reached the maximum of %d loans", e.Policy().MaxActiveLoans)
	}

	loan, err := tx.CreateLoan(ctx, &model.Loan{
		BookID:  req.BookID,
		UserID:  req.UserID,
		Status:  model.LoanPending,
		DueDate: req.DueDate,
	})
	if err != nil {
		return nil, err
	}

	if err := e.audit(ctx, tx, actor, "loan.request", "loan", loan.ID, fmt.Sprintf("book=%d user=%d", req.BookID, req.UserID)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("Loan requested", zap.Int64("loan_id", loan.ID), zap.Int64("book_id", loan.BookID), zap.Int64("user_id", loan.UserID))
	return loan, nil
}

// ApproveLoan transitions a PENDING loan to ACTIVE and consumes one copy.
// When no copy is free the transaction rolls back and the loan stays PENDING.
func (e *Engine) ApproveLoan(ctx context.Context, actor model.Actor, loanID int64) (*model.Loan, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	loan, err := e.getLoanTx(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != model.LoanPending {
		return nil, model.NewDomainError(model.ErrStateViolation, "loan %d is %s, expected PENDING", loanID, loan.Status)
	}

	if err := tx.ReserveCopy(ctx, loan.BookID); err != nil {
		return nil, err
	}

	now := e.now().Unix()
	dueDate := loan.DueDate
	if dueDate <= now {
		// The requested due date lapsed while pending; grant a full period.
		dueDate = now + int64(e.Policy().LoanPeriod.Seconds())
	}
	active := model.LoanActive
	loan, err = tx.UpdateLoan(ctx, &store.UpdateLoan{
		ID:         loanID,
		FromStatus: model.LoanPending,
		Status:     &active,
		LoanDate:   &now,
		DueDate:    &dueDate,
	})
	if err != nil {
		return nil, err
	}

	if err := e.audit(ctx, tx, actor, "loan.approve", "loan", loanID, ""); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("Loan approved", zap.Int64("loan_id", loanID), zap.Int64("book_id", loan.BookID))
	return loan, nil
}

// RejectLoan transitions a PENDING loan to REJECTED. No copy is touched.
func (e *Engine) RejectLoan(ctx context.Context, actor model.Actor, loanID int64) (*model.Loan, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	loan, err := e.getLoanTx(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != model.LoanPending {
		return nil, model.NewDomainError(model.ErrStateViolation, "loan %d is %s, expected PENDING", loanID, loan.Status)
	}

	rejected := model.LoanRejected
	loan, err = tx.UpdateLoan(ctx, &store.UpdateLoan{
		ID:         loanID,
		FromStatus: model.LoanPending,
		Status:     &rejected,
	})
	if err != nil {
		return nil, err
	}

	if err := e.audit(ctx, tx, actor, "loan.reject", "loan", loanID, ""); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return loan, nil
}

// ReturnLoan transitions an ACTIVE loan to RETURNED, releases its copy and
// promotes the head of the book's reservation queue when one is waiting.
func (e *Engine) ReturnLoan(ctx context.Context, actor model.Actor, loanID int64) (*model.Loan, error) {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	loan, err := e.getLoanTx(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() {
		if !e.Policy().SelfReturn {
			return nil, model.NewDomainError(model.ErrPermissionDenied, "returns are handled by a librarian")
		}
		if err := requireOwnerOrStaff(actor, loan.UserID); err != nil {
			return nil, err
		}
	}
	if loan.Status != model.LoanActive {
		return nil, model.NewDomainError(model.ErrStateViolation, "loan %d is %s, expected ACTIVE", loanID, loan.Status)
	}

	now := e.now().Unix()
	returned := model.LoanReturned
	loan, err = tx.UpdateLoan(ctx, &store.UpdateLoan{
		ID:         loanID,
		FromStatus: model.LoanActive,
		Status:     &returned,
		ReturnDate: &now,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.ReleaseCopy(ctx, loan.BookID); err != nil {
		return nil, err
	}

	// At most one promotion per return: the freed copy either goes back on
	// the shelf or is held for the head of the queue.
	if _, err := e.promoteHead(ctx, tx, actor, loan.BookID); err != nil {
		return nil, err
	}

	if err := e.audit(ctx, tx, actor, "loan.return", "loan", loanID, ""); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("Loan returned", zap.Int64("loan_id", loanID), zap.Int64("book_id", loan.BookID))
	return loan, nil
}

// RenewLoan extends an ACTIVE loan's due date by the configured loan period.
// Overdue loans cannot be renewed so late fees keep accruing.
func (e *Engine) RenewLoan(ctx context.Context, actor model.Actor, loanID int64) (*model.Loan, error) {
	if !e.Policy().AllowRenewal {
		return nil, model.NewDomainError(model.ErrRenewalNotAllowed, "renewals are disabled")
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	loan, err := e.getLoanTx(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() {
		if !e.Policy().SelfRenew {
			return nil, model.NewDomainError(model.ErrPermissionDenied, "renewals are handled by a librarian")
		}
		if err := requireOwnerOrStaff(actor, loan.UserID); err != nil {
			return nil, err
		}
	}
	if loan.Status != model.LoanActive {
		return nil, model.NewDomainError(model.ErrStateViolation, "loan %d is %s, expected ACTIVE", loanID, loan.Status)
	}

	now := e.now()
	if loan.IsOverdue(now) {
		return nil, model.NewDomainError(model.ErrAlreadyOverdue, "loan %d is overdue and cannot be renewed", loanID)
	}
	if loan.RenewalCount >= e.Policy().MaxRenewals {
		return nil, model.NewDomainError(model.ErrRenewalLimitExceeded, "loan %d has reached the maximum of %d renewals", loanID, e.Policy().MaxRenewals)
	}

	dueDate := loan.DueDate + int64(e.Policy().LoanPeriod.Seconds())
	renewals := loan.RenewalCount + 1
	loan, err = tx.UpdateLoan(ctx, &store.UpdateLoan{
		ID:           loanID,
		FromStatus:   model.LoanActive,
		DueDate:      &dueDate,
		RenewalCount: &renewals,
	})
	if err != nil {
		return nil, err
	}

	if err := e.audit(ctx, tx, actor, "loan.renew", "loan", loanID, fmt.Sprintf("renewal=%d", renewals)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return loan, nil
}

func (e *Engine) getLoanTx(ctx context.Context, tx *store.Tx, loanID int64) (*model.Loan, error) {
	loan, err := tx.GetLoan(ctx, &model.FindLoan{ID: &loanID})
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, model.NewDomainError(model.ErrNotFound, "loan %d not found", loanID)
	}
	return loan, nil
}
