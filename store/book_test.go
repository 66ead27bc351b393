package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/JohnBravos/bookhub-manager/config"
	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/store/db"
)

// Initialize the logger and config
func init() {
	config.Opts = config.GetDefaultOptions()
	config.Opts.LogFile = filepath.Join("/tmp", "bookhub-store-test.log")
	log.Logger = log.NewLogger()
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.NewDB(filepath.Join(t.TempDir(), "store_test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	return NewStore(database.DB)
}

func TestReserveAndReleaseCopyGuards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book, err := s.CreateBook(ctx, &model.Book{
		Title:           "Guarded",
		Publisher:       "Test Press",
		PublicationYear: 2020,
		Genre:           "Fiction",
		TotalCopies:     1,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin tx: %v", err)
	}
	defer tx.Rollback()

	if err := tx.ReserveCopy(ctx, book.ID); err != nil {
		t.Fatalf("Failed to reserve the only copy: %v", err)
	}
	if err := tx.ReserveCopy(ctx, book.ID); model.KindOf(err) != model.ErrOutOfStock {
		t.Fatalf("Expected OutOfStock, got %v", err)
	}

	if err := tx.ReleaseCopy(ctx, book.ID); err != nil {
		t.Fatalf("Failed to release copy: %v", err)
	}
	if err := tx.ReleaseCopy(ctx, book.ID); model.KindOf(err) != model.ErrInvariantViolation {
		t.Fatalf("Expected InvariantViolation, got %v", err)
	}
}

func TestAdjustTotalCopiesKeepsCheckedOut(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book, err := s.CreateBook(ctx, &model.Book{
		Title:           "Capacity",
		Publisher:       "Test Press",
		PublicationYear: 2020,
		Genre:           "Fiction",
		TotalCopies:     3,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin tx: %v", err)
	}
	// Two copies out.
	if err := tx.ReserveCopy(ctx, book.ID); err != nil {
		t.Fatalf("Failed to reserve copy: %v", err)
	}
	if err := tx.ReserveCopy(ctx, book.ID); err != nil {
		t.Fatalf("Failed to reserve copy: %v", err)
	}

	if err := tx.AdjustTotalCopies(ctx, book.ID, 1); model.KindOf(err) != model.ErrInvalidCapacity {
		t.Fatalf("Expected InvalidCapacity, got %v", err)
	}
	if err := tx.AdjustTotalCopies(ctx, book.ID, 5); err != nil {
		t.Fatalf("Failed to grow copies: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	got, err := s.GetBook(ctx, &model.FindBook{ID: &book.ID})
	if err != nil {
		t.Fatalf("Failed to get book: %v", err)
	}
	if got.TotalCopies != 5 || got.AvailableCopies != 3 {
		t.Fatalf("Expected 3/5 available, got %d/%d", got.AvailableCopies, got.TotalCopies)
	}
}

func TestBookSearchMatchesAuthors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	author, err := s.CreateAuthor(ctx, &model.Author{FirstName: "Ursula", LastName: "Le Guin"})
	if err != nil {
		t.Fatalf("Failed to create author: %v", err)
	}
	if _, err := s.CreateBook(ctx, &model.Book{
		Title:           "The Dispossessed",
		Publisher:       "Harper",
		PublicationYear: 1974,
		Genre:           "Science Fiction",
		TotalCopies:     1,
	}, []int64{author.ID}); err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}

	search := "Le Guin"
	books, err := s.ListBooks(ctx, &model.FindBook{Search: &search})
	if err != nil {
		t.Fatalf("Failed to search books: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("Expected 1 book, got %d", len(books))
	}
	if len(books[0].Authors) != 1 || books[0].Authors[0].LastName != "Le Guin" {
		t.Fatalf("Expected the author attached, got %+v", books[0].Authors)
	}
}

func TestCountBooksFiltersByISBN(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateBook(ctx, &model.Book{
		ISBN:            "9780060512750",
		Title:           "A Wizard of Earthsea",
		Publisher:       "Harper",
		PublicationYear: 1968,
		Genre:           "Fantasy",
		TotalCopies:     1,
	}, nil); err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}
	if _, err := s.CreateBook(ctx, &model.Book{
		Title:           "The Tombs of Atuan",
		Publisher:       "Harper",
		PublicationYear: 1971,
		Genre:           "Fantasy",
		TotalCopies:     1,
	}, nil); err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}

	isbn := "9780060512750"
	count, err := s.CountBooks(ctx, &model.FindBook{ISBN: &isbn})
	if err != nil {
		t.Fatalf("Failed to count books: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected count 1, got %d", count)
	}
}
