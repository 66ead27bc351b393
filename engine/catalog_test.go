package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnBravos/bookhub-manager/model"
)

func TestCreateBookRejectsDuplicateISBN(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	req := &model.BookCreateRequest{
		ISBN:            "978-0-13-468599-1",
		Title:           "The Go Programming Language",
		Publisher:       "Addison-Wesley",
		PublicationYear: 2015,
		Genre:           "Programming",
		TotalCopies:     3,
	}

	book, err := e.CreateBook(ctx, staffActor(librarian), req)
	require.NoError(t, err)
	assert.Equal(t, 3, book.AvailableCopies)

	_, err = e.CreateBook(ctx, staffActor(librarian), req)
	require.Error(t, err)
	assert.Equal(t, model.ErrConflict, model.KindOf(err))
}

func TestCreateBookRequiresStaff(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())

	member := createTestUser(t, s, model.RoleMember)
	_, err := e.CreateBook(context.Background(), memberActor(member), &model.BookCreateRequest{Title: "x"})
	assert.Equal(t, model.ErrPermissionDenied, model.KindOf(err))
}

func TestUpdateBookAdjustsCopies(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	book := createTestBook(t, s, 2)
	borrowAll(t, e, s, book, librarian)

	// 0 of 2 free; growing to 5 frees three more.
	five := 5
	updated, err := e.UpdateBook(ctx, staffActor(librarian), book.ID, &model.BookUpdateRequest{TotalCopies: &five})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalCopies)
	assert.Equal(t, 3, updated.AvailableCopies)

	// Shrinking below the two checked-out copies is not possible.
	one := 1
	_, err = e.UpdateBook(ctx, staffActor(librarian), book.ID, &model.BookUpdateRequest{TotalCopies: &one})
	require.Error(t, err)
	assert.Equal(t, model.ErrInvalidCapacity, model.KindOf(err))
}

func TestUpdateBookIsAtomic(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	book := createTestBook(t, s, 2)
	borrowAll(t, e, s, book, librarian)

	// Copy count and catalog fields land together.
	five := 5
	title := "Second Edition"
	updated, err := e.UpdateBook(ctx, staffActor(librarian), book.ID, &model.BookUpdateRequest{
		TotalCopies: &five,
		Title:       &title,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalCopies)
	assert.Equal(t, "Second Edition", updated.Title)

	// A rejected copy-count change must not leave the other edits behind.
	one := 1
	revert := "Third Edition"
	_, err = e.UpdateBook(ctx, staffActor(librarian), book.ID, &model.BookUpdateRequest{
		TotalCopies: &one,
		Title:       &revert,
	})
	require.Error(t, err)
	assert.Equal(t, model.ErrInvalidCapacity, model.KindOf(err))

	got := getBook(t, s, book.ID)
	assert.Equal(t, "Second Edition", got.Title)
	assert.Equal(t, 5, got.TotalCopies)
}

func TestDeleteBookBlockedByOutstandingLoans(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	book := createTestBook(t, s, 1)
	loan := borrowAll(t, e, s, book, librarian)

	err := e.DeleteBook(ctx, staffActor(librarian), book.ID)
	require.Error(t, err)
	assert.Equal(t, model.ErrConflict, model.KindOf(err))

	_, err = e.ReturnLoan(ctx, staffActor(librarian), loan.ID)
	require.NoError(t, err)

	require.NoError(t, e.DeleteBook(ctx, staffActor(librarian), book.ID))
	deleted, err := s.GetBook(ctx, &model.FindBook{ID: &book.ID})
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestSystemStats(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	member := createTestUser(t, s, model.RoleMember)
	book := createTestBook(t, s, 2)
	createTestBook(t, s, 1)

	loan, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{
		BookID: book.ID, UserID: member.ID, DueDate: testClock.Add(24 * time.Hour).Unix(),
	})
	require.NoError(t, err)
	_, err = e.ApproveLoan(ctx, staffActor(librarian), loan.ID)
	require.NoError(t, err)

	stats, err := e.SystemStats(ctx, staffActor(librarian))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalBooks)
	assert.Equal(t, int64(2), stats.AvailableBooks)
	assert.Equal(t, int64(1), stats.ActiveLoans)
	assert.Equal(t, int64(1), stats.TotalLoans)
	assert.Equal(t, int64(0), stats.OverdueLoans)

	advanceClock(e, 48*time.Hour)
	stats, err = e.SystemStats(ctx, staffActor(librarian))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.OverdueLoans)

	_, err = e.SystemStats(ctx, memberActor(member))
	assert.Equal(t, model.ErrPermissionDenied, model.KindOf(err))
}

func TestUserStatistics(t *testing.T) {
	e, s := newTestEngine(t, testPolicy())
	ctx := context.Background()

	librarian := createTestUser(t, s, model.RoleLibrarian)
	member := createTestUser(t, s, model.RoleMember)
	first := createTestBook(t, s, 1)
	second := createTestBook(t, s, 1)

	dueDate := testClock.Add(24 * time.Hour).Unix()
	firstLoan, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{BookID: first.ID, UserID: member.ID, DueDate: dueDate})
	require.NoError(t, err)
	_, err = e.ApproveLoan(ctx, staffActor(librarian), firstLoan.ID)
	require.NoError(t, err)
	_, err = e.ReturnLoan(ctx, memberActor(member), firstLoan.ID)
	require.NoError(t, err)

	secondLoan, err := e.RequestLoan(ctx, memberActor(member), &model.LoanCreateRequest{BookID: second.ID, UserID: member.ID, DueDate: dueDate})
	require.NoError(t, err)
	_, err = e.ApproveLoan(ctx, staffActor(librarian), secondLoan.ID)
	require.NoError(t, err)

	stats, err := e.UserStatistics(ctx, memberActor(member), member.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ActiveLoans)
	assert.Equal(t, int64(2), stats.TotalBorrowed)
	assert.Equal(t, int64(0), stats.OverdueCount)

	// Members cannot read someone else's statistics.
	other := createTestUser(t, s, model.RoleMember)
	_, err = e.UserStatistics(ctx, memberActor(other), member.ID)
	assert.Equal(t, model.ErrPermissionDenied, model.KindOf(err))
}
