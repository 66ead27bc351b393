package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JohnBravos/bookhub-manager/config"
	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/store"
	"github.com/JohnBravos/bookhub-manager/store/db"
)

func init() {
	config.Opts = config.GetDefaultOptions()
	config.Opts.LogFile = filepath.Join("/tmp", "bookhub-engine-test.log")
	log.Logger = log.NewLogger()
}

var testClock = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testPolicy() Policy {
	return Policy{
		LoanPeriod:            14 * 24 * time.Hour,
		MaxRenewals:           2,
		MaxActiveLoans:        5,
		MaxActiveReservations: 3,
		ReservationExpiry:     7 * 24 * time.Hour,
		AllowRenewal:          true,
		SelfReturn:            true,
		SelfRenew:             true,
	}
}

func newTestEngine(t *testing.T, policy Policy) (*Engine, *store.Store) {
	t.Helper()

	database, err := db.NewDB(filepath.Join(t.TempDir(), "bookhub_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.Migrate(context.Background()))

	s := store.NewStore(database.DB)
	e := NewEngine(s, policy)
	e.now = func() time.Time { return testClock }
	return e, s
}

// advanceClock moves the engine's clock forward for the rest of the test.
func advanceClock(e *Engine, d time.Duration) {
	frozen := e.now().Add(d)
	e.now = func() time.Time { return frozen }
}

var userSeq int

func createTestUser(t *testing.T, s *store.Store, role model.Role) *model.User {
	t.Helper()
	userSeq++
	user, err := s.CreateUser(context.Background(), &model.User{
		Username:     fmt.Sprintf("user%d", userSeq),
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		PasswordHash: "not-a-real-hash",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		Status:       model.UserActive,
	})
	require.NoError(t, err)
	return user
}

func createTestBook(t *testing.T, s *store.Store, copies int) *model.Book {
	t.Helper()
	userSeq++
	book, err := s.CreateBook(context.Background(), &model.Book{
		Title:           fmt.Sprintf("Book %d", userSeq),
		Publisher:       "Test Press",
		PublicationYear: 2020,
		Genre:           "Fiction",
		TotalCopies:     copies,
	}, nil)
	require.NoError(t, err)
	return book
}

func staffActor(user *model.User) model.Actor {
	return model.Actor{UserID: user.ID, Role: user.Role}
}

func memberActor(user *model.User) model.Actor {
	return model.Actor{UserID: user.ID, Role: model.RoleMember}
}

func getBook(t *testing.T, s *store.Store, id int64) *model.Book {
	t.Helper()
	book, err := s.GetBook(context.Background(), &model.FindBook{ID: &id})
	require.NoError(t, err)
	require.NotNil(t, book)
	return book
}

func getLoan(t *testing.T, s *store.Store, id int64) *model.Loan {
	t.Helper()
	loan, err := s.GetLoan(context.Background(), &model.FindLoan{ID: &id})
	require.NoError(t, err)
	require.NotNil(t, loan)
	return loan
}

func getReservation(t *testing.T, s *store.Store, id int64) *model.Reservation {
	t.Helper()
	reservation, err := s.GetReservation(context.Background(), &model.FindReservation{ID: &id})
	require.NoError(t, err)
	require.NotNil(t, reservation)
	return reservation
}
