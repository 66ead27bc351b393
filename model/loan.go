package model

import "time"

// LoanStatus is the stored status of a loan. OVERDUE is never stored; it is
// derived from the due date at read time.
type LoanStatus string

const (
	LoanPending  LoanStatus = "PENDING"
	LoanActive   LoanStatus = "ACTIVE"
	LoanReturned LoanStatus = "RETURNED"
	LoanRejected LoanStatus = "REJECTED"
	// LoanOverdue only appears in responses, computed from ACTIVE + due date.
	LoanOverdue LoanStatus = "OVERDUE"
)

// IsTerminal reports whether no further transition is defined from s.
func (s LoanStatus) IsTerminal() bool {
	return s == LoanReturned || s == LoanRejected
}

type Loan struct {
	ID     int64 `json:"id"`
	BookID int64 `json:"book_id"`
	UserID int64 `json:"user_id"`

	Status LoanStatus `json:"status"`
	// LoanDate is set on approval, not on request.
	LoanDate     int64 `json:"loan_date,omitempty"`
	DueDate      int64 `json:"due_date"`
	ReturnDate   int64 `json:"return_date,omitempty"`
	RenewalCount int   `json:"renewal_count"`

	CreatedTs int64 `json:"created_ts"`
	UpdatedTs int64 `json:"updated_ts"`
}

// IsOverdue reports whether the loan is ACTIVE with a due date in the past.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanActive && l.DueDate < now.Unix()
}

// EffectiveStatus is the status as reported to clients, with OVERDUE derived.
func (l *Loan) EffectiveStatus(now time.Time) LoanStatus {
	if l.IsOverdue(now) {
		return LoanOverdue
	}
	return l.Status
}

type FindLoan struct {
	ID     *int64
	BookID *int64
	UserID *int64
	Status *LoanStatus

	// OnlyOverdue restricts to ACTIVE loans with due date before Now.
	OnlyOverdue bool
	// DueBefore restricts to ACTIVE loans due before the given timestamp.
	DueBefore *int64
	// Now is the reference time for OnlyOverdue, unix seconds.
	Now int64

	Limit  *int
	Offset *int
}

type LoanCreateRequest struct {
	BookID  int64 `json:"book_id" validate:"required,gt=0"`
	UserID  int64 `json:"user_id" validate:"required,gt=0"`
	DueDate int64 `json:"due_date" validate:"required,gt=0"`
}

type LoanReturnRequest struct {
	LoanID int64 `json:"loan_id" validate:"required,gt=0"`
}
