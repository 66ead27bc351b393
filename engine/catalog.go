package engine

import (
	"context"
	"fmt"

	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/store"
)

// CreateBook adds a book to the catalog with all copies free.
func (e *Engine) CreateBook(ctx context.Context, actor model.Actor, req *model.BookCreateRequest) (*model.Book, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if req.ISBN != "" {
		existing, err := e.store.GetBook(ctx, &model.FindBook{ISBN: &req.ISBN})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, model.NewDomainError(model.ErrConflict, "a book with ISBN %s already exists", req.ISBN)
		}
	}

	book, err := e.store.CreateBook(ctx, &model.Book{
		ISBN:            req.ISBN,
		Title:           req.Title,
		Publisher:       req.Publisher,
		PublicationYear: req.PublicationYear,
		Genre:           req.Genre,
		Description:     req.Description,
		TotalCopies:     req.TotalCopies,
	}, req.AuthorIDs)
	if err != nil {
		return nil, err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	if err := e.audit(ctx, tx, actor, "book.create", "book", book.ID, book.Title); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return e.store.GetBook(ctx, &model.FindBook{ID: &book.ID})
}

// UpdateBook edits catalog fields. Copy-count changes go through
// AdjustTotalCopies so the checked-out count stays intact: shrinking below it
// fails with InvalidCapacity.
func (e *Engine) UpdateBook(ctx context.Context, actor model.Actor, bookID int64, req *model.BookUpdateRequest) (*model.Book, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := getBookTx(ctx, tx, bookID); err != nil {
		return nil, err
	}
	if req.TotalCopies != nil {
		if err := tx.AdjustTotalCopies(ctx, bookID, *req.TotalCopies); err != nil {
			return nil, err
		}
	}
	if err := tx.UpdateBook(ctx, &store.UpdateBook{
		ID:              bookID,
		ISBN:            req.ISBN,
		Title:           req.Title,
		Publisher:       req.Publisher,
		PublicationYear: req.PublicationYear,
		Genre:           req.Genre,
		Description:     req.Description,
		AuthorIDs:       req.AuthorIDs,
	}); err != nil {
		return nil, err
	}
	if err := e.audit(ctx, tx, actor, "book.update", "book", bookID, ""); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return e.store.GetBook(ctx, &model.FindBook{ID: &bookID})
}

// DeleteBook removes a book from the catalog. Blocked while non-terminal
// loans or reservations reference it.
func (e *Engine) DeleteBook(ctx context.Context, actor model.Actor, bookID int64) error {
	if err := requireStaff(actor); err != nil {
		return err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := getBookTx(ctx, tx, bookID); err != nil {
		return err
	}

	hasLoans, err := tx.HasLiveLoansForBook(ctx, bookID)
	if err != nil {
		return err
	}
	if hasLoans {
		return model.NewDomainError(model.ErrConflict, "book %d has outstanding loans", bookID)
	}
	hasReservations, err := tx.HasLiveReservationsForBook(ctx, bookID)
	if err != nil {
		return err
	}
	if hasReservations {
		return model.NewDomainError(model.ErrConflict, "book %d has outstanding reservations", bookID)
	}

	if err := tx.DeleteBook(ctx, bookID); err != nil {
		return err
	}
	if err := e.audit(ctx, tx, actor, "book.delete", "book", bookID, fmt.Sprintf("book=%d", bookID)); err != nil {
		return err
	}
	return tx.Commit()
}
