package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"go.uber.org/zap"
)

func (s *Store) GetUser(ctx context.Context, find *model.FindUser) (*model.User, error) {
	if find.ID != nil {
		if cache, ok := s.UserCache.Load(*find.ID); ok {
			return cache.(*model.User), nil
		}
	}

	list, err := s.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	user := list[0]
	s.UserCache.Store(user.ID, user)
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, find *model.FindUser) ([]*model.User, error) {
	return listUsers(ctx, s.db, find)
}

// GetUser inside a transaction, bypassing the cache.
func (t *Tx) GetUser(ctx context.Context, find *model.FindUser) (*model.User, error) {
	list, err := listUsers(ctx, t.tx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func listUsers(ctx context.Context, q querier, find *model.FindUser) ([]*model.User, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Username; v != nil {
		where, args = append(where, "username = ?"), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "email = ?"), append(args, *v)
	}
	if v := find.Role; v != nil {
		where, args = append(where, "role = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}

	// Here will return password_hash, so need to be careful.
	// If need to response to client, use response.UserResponse to strip it.
	query := `
		SELECT
			id,
			username,
			email,
			password_hash,
			first_name,
			last_name,
			phone_number,
			role,
			status,
			created_ts,
			updated_ts
		FROM users
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id DESC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
		if o := find.Offset; o != nil {
			query += fmt.Sprintf(" OFFSET %d", *o)
		}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Debug("Error querying users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.User, 0)
	for rows.Next() {
		var user model.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.FirstName,
			&user.LastName,
			&user.PhoneNumber,
			&user.Role,
			&user.Status,
			&user.CreatedTs,
			&user.UpdatedTs,
		); err != nil {
			return nil, err
		}
		list = append(list, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) CountUsers(ctx context.Context, find *model.FindUser) (int64, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.Role; v != nil {
		where, args = append(where, "role = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}

	var count int64
	query := "SELECT COUNT(*) FROM users WHERE " + strings.Join(where, " AND ")
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) CreateUser(ctx context.Context, create *model.User) (*model.User, error) {
	fields := []string{"`username`", "`email`", "`password_hash`", "`first_name`", "`last_name`", "`phone_number`", "`role`", "`status`"}
	placeholder := []string{"?", "?", "?", "?", "?", "?", "?", "?"}
	args := []any{create.Username, create.Email, create.PasswordHash, create.FirstName, create.LastName, create.PhoneNumber, create.Role, create.Status}
	stmt := "INSERT INTO users (" + strings.Join(fields, ", ") + ") VALUES (" + strings.Join(placeholder, ", ") + ") RETURNING id, username, email, password_hash, first_name, last_name, phone_number, role, status, created_ts, updated_ts"

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var user model.User
	if err := tx.QueryRowContext(ctx, stmt, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.PhoneNumber,
		&user.Role,
		&user.Status,
		&user.CreatedTs,
		&user.UpdatedTs,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &user, nil
}

type UpdateUser struct {
	ID           int64
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	PhoneNumber  *string
	Role         *model.Role
	Status       *model.UserStatus
}

func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*model.User, error) {
	set, args := []string{"updated_ts = strftime('%s', 'now')"}, []any{}

	if v := update.Email; v != nil {
		set, args = append(set, "email = ?"), append(args, *v)
	}
	if v := update.PasswordHash; v != nil {
		set, args = append(set, "password_hash = ?"), append(args, *v)
	}
	if v := update.FirstName; v != nil {
		set, args = append(set, "first_name = ?"), append(args, *v)
	}
	if v := update.LastName; v != nil {
		set, args = append(set, "last_name = ?"), append(args, *v)
	}
	if v := update.PhoneNumber; v != nil {
		set, args = append(set, "phone_number = ?"), append(args, *v)
	}
	if v := update.Role; v != nil {
		set, args = append(set, "role = ?"), append(args, *v)
	}
	if v := update.Status; v != nil {
		set, args = append(set, "status = ?"), append(args, *v)
	}
	args = append(args, update.ID)

	stmt := "UPDATE users SET " + strings.Join(set, ", ") + " WHERE id = ? RETURNING id, username, email, password_hash, first_name, last_name, phone_number, role, status, created_ts, updated_ts"

	var user model.User
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.PhoneNumber,
		&user.Role,
		&user.Status,
		&user.CreatedTs,
		&user.UpdatedTs,
	); err != nil {
		if isNoRows(err) {
			return nil, model.NewDomainError(model.ErrNotFound, "user %d not found", update.ID)
		}
		return nil, err
	}

	// Keep the cache coherent with role/status changes.
	s.UserCache.Store(user.ID, &user)

	return &user, nil
}
