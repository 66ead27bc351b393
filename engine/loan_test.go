package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/store"
)

func TestLoanApprovalConsumesCopy(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	member := createTestUser(t, s, model.RoleMember)
	book := createTestBook(t, s, 2)

	dueDate := testClock.Add(14 * 24 * time.Hour).Unix()
	loan, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{
		BookID:  book.ID,
		UserID:  member.ID,
		DueDate: dueDate,
	})
	require.NoError(t, err)
	assert.Equal(t, model.LoanPending, loan.Status)
	assert.Zero(t, loan.LoanDate)
	// Requesting does not touch the copy count.
	assert.Equal(t, 2, getBook(t, s, book.ID).AvailableCopies)

	loan, err = e.ApproveLoan(ctx, staffActor(librarian), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanActive, loan.Status)
	assert.Equal(t, testClock.Unix(), loan.LoanDate)
	assert.Equal(t, dueDate, loan.DueDate)
	assert.Equal(t, 1, getBook(t, s, book.ID).AvailableCopies)
}

func TestApproveWithoutFreeCopyLeavesLoanPending(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	first := createTestUser(t, s, model.RoleMember)
	second := createTestUser(t, s, model.RoleMember)
	book := createTestBook(t, s, 1)

	dueDate := testClock.Add(7 * 24 * time.Hour).Unix()
	firstLoan, err := e.RequestLoan(ctx, memberActor(first), &model.LoanCreateRequest{BookID: book.ID, UserID: first.ID, DueDate: dueDate})
	require.NoError(t, err)
	secondLoan, err := e.RequestLoan(ctx, memberActor(second), &model.LoanCreateRequest{BookID: book.ID, UserID: second.ID, DueDate: dueDate})
	require.NoError(t, err)

	_, err = e.ApproveLoan(ctx, staffActor(librarian), firstLoan.ID)
	require.NoError(t, err)

	_, err = e.ApproveLoan(ctx, staffActor(librarian), secondLoan.ID)
	require.Error(t, err)
	assert.Equal(t, model.ErrOutOfStock, model.KindOf(err))
	// The whole transaction rolled back: still PENDING, count untouched.
	assert.Equal(t, model.LoanPending, getLoan(t, s, secondLoan.ID).Status)
	assert.Equal(t, 0, getBook(t, s, book.ID).AvailableCopies)
}

func TestRejectLoanLeavesCopiesUntouched(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	member := createTestUser(t, s, model.RoleMember)
	book := createTestBook(t, s, 1)

	loan, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{
		BookID: book.ID, UserID: member.ID, DueDate: testClock.Add(24 * time.Hour).Unix(),
	})
	require.NoError(t, err)

	loan, err = e.RejectLoan(ctx, staffActor(librarian), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanRejected, loan.Status)
	assert.Equal(t, 1, getBook(t, s, book.ID).AvailableCopies)

	// REJECTED is terminal.
	_, err = e.ApproveLoan(ctx, staffActor(librarian), loan.ID)
	assert.Equal(t, model.ErrStateViolation, model.KindOf(err))
}

func TestDuplicateLoanOnSameBookRejected(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	member := createTestUser(t, s, model.RoleMember)
	book := createTestBook(t, s, 3)
	dueDate := testClock.Add(24 * time.Hour).Unix()

	_, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{BookID: book.ID, UserID: member.ID, DueDate: dueDate})
	require.NoError(t, err)

	_, err = e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{BookID: book.ID, UserID: member.ID, DueDate: dueDate})
	require.Error(t, err)
	assert.Equal(t, model.ErrConflict, model.KindOf(err))
}

func TestLoanLimitCountsPendingAndActive(t *testing.T) {
	policy := testPolicy()
	policy.MaxActiveLoans = 2
	e, s := newTestEngine(t, policy)
	ctx := context.Background()

	member := createTestUser(t, s, model.RoleMember)
	dueDate := testClock.Add(24 * time.Hour).Unix()

	for i := 0; i < 2; i++ {
		book := createTestBook(t, s, 1)
		_, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{BookID: book.ID, UserID: member.ID, DueDate: dueDate})
		require.NoError(t, err)
	}

	book := createTestBook(t, s, 1)
	_, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{BookID: book.ID, UserID: member.ID, DueDate: dueDate})
	require.Error(t, err)
	assert.Equal(t, model.ErrUserAtLoanLimit, model.KindOf(err))
}

func TestRequestLoanRequiresFutureDueDate(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())

	member := createTestUser(t, s, model.RoleMember)
	book := createTestBook(t, s, 1)

	_, err := e.RequestLoan(context.Background(), memberActor(member), &model.LoanCreateRequest{
		BookID: book.ID, UserID: member.ID, DueDate: testClock.Add(-time.Hour).Unix(),
	})
	require.Error(t, err)
	assert.Equal(t, model.ErrValidation, model.KindOf(err))
}

func TestMemberCannotApproveLoans(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	member := createTestUser(t, s, model.RoleMember)
	book := createTestBook(t, s, 1)

	loan, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{
		BookID: book.ID, UserID: member.ID, DueDate: testClock.Add(24 * time.Hour).Unix(),
	})
	require.NoError(t, err)

	_, err = e.ApproveLoan(ctx, memberActor(member), loan.ID)
	assert.Equal(t, model.ErrPermissionDenied, model.KindOf(err))
}

func TestMemberCannotRequestLoanForSomeoneElse(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())

	member := createTestUser(t, s, model.RoleMember)
	other := createTestUser(t, s, model.RoleMember)
	book := createTestBook(t, s, 1)

	_, err := e.RequestLoan(context.Background(), memberActor(member), &model.LoanCreateRequest{
		BookID: book.ID, UserID: other.ID, DueDate: testClock.Add(24 * time.Hour).Unix(),
	})
	assert.Equal(t, model.ErrPermissionDenied, model.KindOf(err))
}

func TestReturnReleasesCopy(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	member := createTestUser(t, s, model.RoleMember)
	book := createTestBook(t, s, 1)

	loan, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{
		BookID: book.ID, UserID: member.ID, DueDate: testClock.Add(24 * time.Hour).Unix(),
	})
	require.NoError(t, err)
	_, err = e.ApproveLoan(ctx, staffActor(librarian), loan.ID)
	require.NoError(t, err)

	loan, err = e.ReturnLoan(ctx, memberActor(member), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanReturned, loan.Status)
	assert.Equal(t, testClock.Unix(), loan.ReturnDate)
	assert.Equal(t, 1, getBook(t, s, book.ID).AvailableCopies)

	// Returning twice fails.
	_, err = e.ReturnLoan(ctx, memberActor(member), loan.ID)
	assert.Equal(t, model.ErrStateViolation, model.KindOf(err))
}

func TestSelfReturnCanBeDisabled(t *testing.T) {
	policy := testPolicy()
	policy.SelfReturn = false
	e, s := newTestEngine(t, policy)
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	member := createTestUser(t, s, model.RoleMember)
	book := createTestBook(t, s, 1)

	loan, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{
		BookID: book.ID, UserID: member.ID, DueDate: testClock.Add(24 * time.Hour).Unix(),
	})
	require.NoError(t, err)
	_, err = e.ApproveLoan(ctx, staffActor(librarian), loan.ID)
	require.NoError(t, err)

	_, err = e.ReturnLoan(ctx, memberActor(member), loan.ID)
	assert.Equal(t, model.ErrPermissionDenied, model.KindOf(err))

	// The librarian can still take the return.
	_, err = e.ReturnLoan(ctx, staffActor(librarian), loan.ID)
	require.NoError(t, err)
}

func TestRenewalExtendsDueDateUpToLimit(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	member := createTestUser(t, s, model.RoleMember)
	book := createTestBook(t, s, 1)

	dueDate := testClock.Add(7 * 24 * time.Hour).Unix()
	loan, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{BookID: book.ID, UserID: member.ID, DueDate: dueDate})
	require.NoError(t, err)
	_, err = e.ApproveLoan(ctx, staffActor(librarian), loan.ID)
	require.NoError(t, err)

	period := int64(testPolicy().LoanPeriod.Seconds())
	for i := 1; i <= 2; i++ {
		loan, err = e.RenewLoan(ctx, memberActor(member), loan.ID)
		require.NoError(t, err)
		assert.Equal(t, i, loan.RenewalCount)
		assert.Equal(t, dueDate+int64(i)*period, loan.DueDate)
	}

	_, err = e.RenewLoan(ctx, memberActor(member), loan.ID)
	require.Error(t, err)
	assert.Equal(t, model.ErrRenewalLimitExceeded, model.KindOf(err))
}

func TestOverdueLoanCannotBeRenewed(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	member := createTestUser(t, s, model.RoleMember)
	book := createTestBook(t, s, 1)

	loan, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{
		BookID: book.ID, UserID: member.ID, DueDate: testClock.Add(24 * time.Hour).Unix(),
	})
	require.NoError(t, err)
	_, err = e.ApproveLoan(ctx, staffActor(librarian), loan.ID)
	require.NoError(t, err)

	advanceClock(e, 48*time.Hour)

	_, err = e.RenewLoan(ctx, memberActor(member), loan.ID)
	require.Error(t, err)
	assert.Equal(t, model.ErrAlreadyOverdue, model.KindOf(err))
}

func TestRenewalsCanBeDisabled(t *testing.T) {
	policy := testPolicy()
	policy.AllowRenewal = false
	e, s := newTestEngine(t, policy)

	member := createTestUser(t, s, model.RoleMember)
	_, err := e.RenewLoan(context.Background(), memberActor(member), 1)
	assert.Equal(t, model.ErrRenewalNotAllowed, model.KindOf(err))
}

func TestOverdueIsDerivedNotStored(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	member := createTestUser(t, s, model.RoleMember)
	book := createTestBook(t, s, 1)

	loan, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{
		BookID: book.ID, UserID: member.ID, DueDate: testClock.Add(24 * time.Hour).Unix(),
	})
	require.NoError(t, err)
	_, err = e.ApproveLoan(ctx, staffActor(librarian), loan.ID)
	require.NoError(t, err)

	stored := getLoan(t, s, loan.ID)
	assert.Equal(t, model.LoanActive, stored.Status)

	later := testClock.Add(48 * time.Hour)
	assert.True(t, stored.IsOverdue(later))
	assert.Equal(t, model.LoanOverdue, stored.EffectiveStatus(later))
	// The stored row never says OVERDUE.
	assert.Equal(t, model.LoanActive, getLoan(t, s, loan.ID).Status)
}

func TestSuspendedUserCannotBorrow(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	member := createTestUser(t, s, model.RoleMember)
	suspended := model.UserSuspended
	_, err := s.UpdateUser(ctx, &store.UpdateUser{ID: member.ID, Status: &suspended})
	require.NoError(t, err)

	book := createTestBook(t, s, 1)
	_, err = e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{
		BookID: book.ID, UserID: member.ID, DueDate: testClock.Add(24 * time.Hour).Unix(),
	})
	assert.Equal(t, model.ErrPermissionDenied, model.KindOf(err))
}
