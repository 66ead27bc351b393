package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohnBravos/bookhub-manager/model"
)

func (s *Store) GetAuthor(ctx context.Context, find *model.FindAuthor) (*model.Author, error) {
	list, err := s.ListAuthors(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListAuthors(ctx context.Context, find *model.FindAuthor) ([]*model.Author, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Search; v != nil && *v != "" {
		pattern := "%" + *v + "%"
		where = append(where, "(first_name LIKE ? OR last_name LIKE ?)")
		args = append(args, pattern, pattern)
	}

	query := `
		SELECT id, first_name, last_name, biography
		FROM authors
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY last_name ASC, id ASC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
		if o := find.Offset; o != nil {
			query += fmt.Sprintf(" OFFSET %d", *o)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Author, 0)
	for rows.Next() {
		var author model.Author
		if err := rows.Scan(&author.ID, &author.FirstName, &author.LastName, &author.Biography); err != nil {
			return nil, err
		}
		list = append(list, &author)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) CountAuthors(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM authors").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) CreateAuthor(ctx context.Context, create *model.Author) (*model.Author, error) {
	stmt := `
		INSERT INTO authors (first_name, last_name, biography)
		VALUES (?, ?, ?)
		RETURNING id, first_name, last_name, biography`
	var author model.Author
	if err := s.db.QueryRowContext(ctx, stmt, create.FirstName, create.LastName, create.Biography).Scan(
		&author.ID,
		&author.FirstName,
		&author.LastName,
		&author.Biography,
	); err != nil {
		return nil, err
	}
	return &author, nil
}

type UpdateAuthor struct {
	ID        int64
	FirstName *string
	LastName  *string
	Biography *string
}

func (s *Store) UpdateAuthor(ctx context.Context, update *UpdateAuthor) (*model.Author, error) {
	set, args := []string{}, []any{}

	if v := update.FirstName; v != nil {
		set, args = append(set, "first_name = ?"), append(args, *v)
	}
	if v := update.LastName; v != nil {
		set, args = append(set, "last_name = ?"), append(args, *v)
	}
	if v := update.Biography; v != nil {
		set, args = append(set, "biography = ?"), append(args, *v)
	}
	if len(set) == 0 {
		return s.GetAuthor(ctx, &model.FindAuthor{ID: &update.ID})
	}
	args = append(args, update.ID)

	stmt := "UPDATE authors SET " + strings.Join(set, ", ") + " WHERE id = ? RETURNING id, first_name, last_name, biography"
	var author model.Author
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(
		&author.ID,
		&author.FirstName,
		&author.LastName,
		&author.Biography,
	); err != nil {
		return nil, err
	}
	return &author, nil
}

// DeleteAuthor removes an author and its book links.
func (s *Store) DeleteAuthor(ctx context.Context, authorID int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM authors WHERE id = ?", authorID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.NewDomainError(model.ErrNotFound, "author %d not found", authorID)
	}
	return nil
}
