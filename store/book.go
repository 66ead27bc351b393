package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (s *Store) GetBook(ctx context.Context, find *model.FindBook) (*model.Book, error) {
	list, err := listBooks(ctx, s.db, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	book := list[0]
	if err := attachAuthors(ctx, s.db, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *Store) ListBooks(ctx context.Context, find *model.FindBook) ([]*model.Book, error) {
	list, err := listBooks(ctx, s.db, find)
	if err != nil {
		return nil, err
	}
	for _, book := range list {
		if err := attachAuthors(ctx, s.db, book); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (t *Tx) GetBook(ctx context.Context, find *model.FindBook) (*model.Book, error) {
	list, err := listBooks(ctx, t.tx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func listBooks(ctx context.Context, q querier, find *model.FindBook) ([]*model.Book, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "b.id = ?"), append(args, *v)
	}
	if v := find.ISBN; v != nil {
		where, args = append(where, "b.isbn = ?"), append(args, *v)
	}
	if v := find.Genre; v != nil {
		where, args = append(where, "b.genre = ?"), append(args, *v)
	}
	if v := find.Search; v != nil && *v != "" {
		pattern := "%" + *v + "%"
		where = append(where, `(b.title LIKE ? OR b.publisher LIKE ? OR EXISTS (
			SELECT 1 FROM book_authors ba
			JOIN authors a ON a.id = ba.author_id
			WHERE ba.book_id = b.id AND (a.first_name LIKE ? OR a.last_name LIKE ?)
		))`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if find.OnlyAvailable {
		where = append(where, "b.available_copies > 0")
	}

	query := `
		SELECT
			b.id,
			b.isbn,
			b.title,
			b.publisher,
			b.publication_year,
			b.genre,
			b.description,
			b.total_copies,
			b.available_copies,
			b.created_ts,
			b.updated_ts
		FROM books b
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY b.title ASC, b.id ASC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
		if o := find.Offset; o != nil {
			query += fmt.Sprintf(" OFFSET %d", *o)
		}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Debug("Error querying books", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Book, 0)
	for rows.Next() {
		var book model.Book
		var isbn sql.NullString
		if err := rows.Scan(
			&book.ID,
			&isbn,
			&book.Title,
			&book.Publisher,
			&book.PublicationYear,
			&book.Genre,
			&book.Description,
			&book.TotalCopies,
			&book.AvailableCopies,
			&book.CreatedTs,
			&book.UpdatedTs,
		); err != nil {
			return nil, err
		}
		book.ISBN = isbn.String
		list = append(list, &book)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func attachAuthors(ctx context.Context, q querier, book *model.Book) error {
	query := `
		SELECT a.id, a.first_name, a.last_name, a.biography
		FROM authors a
		JOIN book_authors ba ON ba.author_id = a.id
		WHERE ba.book_id = ?
		ORDER BY a.last_name ASC, a.id ASC`
	rows, err := q.QueryContext(ctx, query, book.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var author model.Author
		if err := rows.Scan(&author.ID, &author.FirstName, &author.LastName, &author.Biography); err != nil {
			return err
		}
		book.Authors = append(book.Authors, &author)
	}
	return rows.Err()
}

func (s *Store) CountBooks(ctx context.Context, find *model.FindBook) (int64, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ISBN; v != nil {
		where, args = append(where, "isbn = ?"), append(args, *v)
	}
	if v := find.Genre; v != nil {
		where, args = append(where, "genre = ?"), append(args, *v)
	}
	if v := find.Search; v != nil && *v != "" {
		pattern := "%" + *v + "%"
		where = append(where, `(title LIKE ? OR publisher LIKE ? OR EXISTS (
			SELECT 1 FROM book_authors ba
			JOIN authors a ON a.id = ba.author_id
			WHERE ba.book_id = books.id AND (a.first_name LIKE ? OR a.last_name LIKE ?)
		))`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if find.OnlyAvailable {
		where = append(where, "available_copies > 0")
	}

	var count int64
	query := "SELECT COUNT(*) FROM books WHERE " + strings.Join(where, " AND ")
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) CreateBook(ctx context.Context, create *model.Book, authorIDs []int64) (*model.Book, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var isbn any
	if create.ISBN != "" {
		isbn = create.ISBN
	}
	stmt := `
		INSERT INTO books (isbn, title, publisher, publication_year, genre, description, total_copies, available_copies)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, title, total_copies, available_copies, created_ts, updated_ts`
	var book model.Book
	if err := tx.QueryRowContext(ctx, stmt,
		isbn,
		create.Title,
		create.Publisher,
		create.PublicationYear,
		create.Genre,
		create.Description,
		create.TotalCopies,
		create.TotalCopies, // all copies start free
	).Scan(
		&book.ID,
		&book.Title,
		&book.TotalCopies,
		&book.AvailableCopies,
		&book.CreatedTs,
		&book.UpdatedTs,
	); err != nil {
		return nil, err
	}

	for _, authorID := range authorIDs {
		if _, err := tx.ExecContext(ctx, "INSERT INTO book_authors (book_id, author_id) VALUES (?, ?)", book.ID, authorID); err != nil {
			return nil, errors.Wrapf(err, "failed to link author %d", authorID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	book.ISBN = create.ISBN
	book.Publisher = create.Publisher
	book.PublicationYear = create.PublicationYear
	book.Genre = create.Genre
	book.Description = create.Description
	return &book, nil
}

type UpdateBook struct {
	ID              int64
	ISBN            *string
	Title           *string
	Publisher       *string
	PublicationYear *int
	Genre           *string
	Description     *string
	AuthorIDs       []int64 // nil leaves links untouched
}

func (t *Tx) UpdateBook(ctx context.Context, update *UpdateBook) error {
	set, args := []string{"updated_ts = strftime('%s', 'now')"}, []any{}

	if v := update.ISBN; v != nil {
		if *v == "" {
			set = append(set, "isbn = NULL")
		} else {
			set, args = append(set, "isbn = ?"), append(args, *v)
		}
	}
	if v := update.Title; v != nil {
		set, args = append(set, "title = ?"), append(args, *v)
	}
	if v := update.Publisher; v != nil {
		set, args = append(set, "publisher = ?"), append(args, *v)
	}
	if v := update.PublicationYear; v != nil {
		set, args = append(set, "publication_year = ?"), append(args, *v)
	}
	if v := update.Genre; v != nil {
		set, args = append(set, "genre = ?"), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = ?"), append(args, *v)
	}
	args = append(args, update.ID)

	if _, err := t.tx.ExecContext(ctx, "UPDATE books SET "+strings.Join(set, ", ")+" WHERE id = ?", args...); err != nil {
		return err
	}

	if update.AuthorIDs != nil {
		if _, err := t.tx.ExecContext(ctx, "DELETE FROM book_authors WHERE book_id = ?", update.ID); err != nil {
			return err
		}
		for _, authorID := range update.AuthorIDs {
			if _, err := t.tx.ExecContext(ctx, "INSERT INTO book_authors (book_id, author_id) VALUES (?, ?)", update.ID, authorID); err != nil {
				return errors.Wrapf(err, "failed to link author %d", authorID)
			}
		}
	}

	return nil
}

// DeleteBook removes a book. The caller must have checked that no
// non-terminal loans or reservations reference it.
func (t *Tx) DeleteBook(ctx context.Context, bookID int64) error {
	result, err := t.tx.ExecContext(ctx, "DELETE FROM books WHERE id = ?", bookID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.NewDomainError(model.ErrNotFound, "book %d not found", bookID)
	}
	return nil
}

// ReserveCopy atomically takes one free copy off the shelf. Fails with
// OutOfStock when none is free.
func (t *Tx) ReserveCopy(ctx context.Context, bookID int64) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE books
		SET available_copies = available_copies - 1, updated_ts = strftime('%s', 'now')
		WHERE id = ? AND available_copies > 0`, bookID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.NewDomainError(model.ErrOutOfStock, "no available copies for book %d", bookID)
	}
	return nil
}

// ReleaseCopy puts one copy back. Fails with InvariantViolation if it would
// exceed total_copies.
func (t *Tx) ReleaseCopy(ctx context.Context, bookID int64) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE books
		SET available_copies = available_copies + 1, updated_ts = strftime('%s', 'now')
		WHERE id = ? AND available_copies < total_copies`, bookID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.NewDomainError(model.ErrInvariantViolation, "release would exceed total copies for book %d", bookID)
	}
	return nil
}

// AdjustTotalCopies changes the copy count of a book, keeping the checked-out
// count intact. Fails with InvalidCapacity when newTotal is below the number
// of copies currently out.
func (t *Tx) AdjustTotalCopies(ctx context.Context, bookID int64, newTotal int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE books
		SET available_copies = ? - (total_copies - available_copies),
		    total_copies = ?,
		    updated_ts = strftime('%s', 'now')
		WHERE id = ? AND (total_copies - available_copies) <= ?`,
		newTotal, newTotal, bookID, newTotal)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.NewDomainError(model.ErrInvalidCapacity, "cannot shrink book %d below its checked-out copies", bookID)
	}
	return nil
}
