package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"go.uber.org/zap"
)

const reservationColumns = "id, book_id, user_id, status, reservation_date, expiry_date, queue_position, created_ts, updated_ts"

// liveReservationStatuses are the non-terminal statuses that occupy a queue
// position.
const liveReservationStatuses = "('PENDING', 'ACTIVE', 'READY')"

func (s *Store) GetReservation(ctx context.Context, find *model.FindReservation) (*model.Reservation, error) {
	return getReservation(ctx, s.db, find)
}

func (t *Tx) GetReservation(ctx context.Context, find *model.FindReservation) (*model.Reservation, error) {
	return getReservation(ctx, t.tx, find)
}

func getReservation(ctx context.Context, q querier, find *model.FindReservation) (*model.Reservation, error) {
	list, err := listReservations(ctx, q, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListReservations(ctx context.Context, find *model.FindReservation) ([]*model.Reservation, error) {
	return listReservations(ctx, s.db, find)
}

func reservationFilter(find *model.FindReservation) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.BookID; v != nil {
		where, args = append(where, "book_id = ?"), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}
	if find.OnlyLive {
		where = append(where, "status IN "+liveReservationStatuses)
	}
	if v := find.ExpiredBefore; v != nil {
		where, args = append(where, "status IN "+liveReservationStatuses+" AND expiry_date > 0 AND expiry_date < ?"), append(args, *v)
	}

	return where, args
}

func listReservations(ctx context.Context, q querier, find *model.FindReservation) ([]*model.Reservation, error) {
	where, args := reservationFilter(find)

	// Queue listings rely on position order; everything else on recency.
	orderBy := "created_ts DESC, id DESC"
	if find.OnlyLive && find.BookID != nil {
		orderBy = "queue_position ASC"
	}

	query := "SELECT " + reservationColumns + " FROM reservations WHERE " + strings.Join(where, " AND ") + " ORDER BY " + orderBy
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
		if o := find.Offset; o != nil {
			query += fmt.Sprintf(" OFFSET %d", *o)
		}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Debug("Error querying reservations", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := row.Scan(
		&reservation.ID,
		&reservation.BookID,
		&reservation.UserID,
		&reservation.Status,
		&reservation.ReservationDate,
		&reservation.ExpiryDate,
		&reservation.QueuePosition,
		&reservation.CreatedTs,
		&reservation.UpdatedTs,
	); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (s *Store) CountReservations(ctx context.Context, find *model.FindReservation) (int64, error) {
	where, args := reservationFilter(find)
	var count int64
	query := "SELECT COUNT(*) FROM reservations WHERE " + strings.Join(where, " AND ")
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountLiveForBook counts the book's non-terminal reservations, which is also
// the queue position of the next arrival.
func (t *Tx) CountLiveForBook(ctx context.Context, bookID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM reservations WHERE book_id = ? AND status IN " + liveReservationStatuses
	if err := t.tx.QueryRowContext(ctx, query, bookID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountLiveForUser counts a user's non-terminal reservations.
func (t *Tx) CountLiveForUser(ctx context.Context, userID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM reservations WHERE user_id = ? AND status IN " + liveReservationStatuses
	if err := t.tx.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// HasLiveReservation reports whether the user already holds a non-terminal
// reservation on the book.
func (t *Tx) HasLiveReservation(ctx context.Context, userID, bookID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM reservations WHERE user_id = ? AND book_id = ? AND status IN " + liveReservationStatuses
	if err := t.tx.QueryRowContext(ctx, query, userID, bookID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasLiveReservationsForBook reports whether any non-terminal reservation
// references the book. Used to block book deletion.
func (t *Tx) HasLiveReservationsForBook(ctx context.Context, bookID int64) (bool, error) {
	count, err := t.CountLiveForBook(ctx, bookID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HeadOfQueue returns the book's ACTIVE reservation at position 0, or nil.
func (t *Tx) HeadOfQueue(ctx context.Context, bookID int64) (*model.Reservation, error) {
	query := "SELECT " + reservationColumns + " FROM reservations WHERE book_id = ? AND status = 'ACTIVE' AND queue_position = 0"
	reservation, err := scanReservation(t.tx.QueryRowContext(ctx, query, bookID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return reservation, nil
}

func (t *Tx) CreateReservation(ctx context.Context, create *model.Reservation) (*model.Reservation, error) {
	stmt := `
		INSERT INTO reservations (book_id, user_id, status, reservation_date, expiry_date, queue_position)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING ` + reservationColumns
	return scanReservation(t.tx.QueryRowContext(ctx, stmt,
		create.BookID,
		create.UserID,
		create.Status,
		create.ReservationDate,
		create.ExpiryDate,
		create.QueuePosition,
	))
}

type UpdateReservation struct {
	ID int64
	// FromStatus guards the transition like store.UpdateLoan.
	FromStatus model.ReservationStatus

	Status     *model.ReservationStatus
	ExpiryDate *int64
}

// UpdateReservation applies a guarded transition and returns the updated row.
// Fails with StateViolation when the reservation is no longer in FromStatus.
func (t *Tx) UpdateReservation(ctx context.Context, update *UpdateReservation) (*model.Reservation, error) {
	set, args := []string{"updated_ts = strftime('%s', 'now')"}, []any{}

	if v := update.Status; v != nil {
		set, args = append(set, "status = ?"), append(args, *v)
	}
	if v := update.ExpiryDate; v != nil {
		set, args = append(set, "expiry_date = ?"), append(args, *v)
	}
	args = append(args, update.ID, update.FromStatus)

	stmt := "UPDATE reservations SET " + strings.Join(set, ", ") + " WHERE id = ? AND status = ? RETURNING " + reservationColumns
	reservation, err := scanReservation(t.tx.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, model.NewDomainError(model.ErrStateViolation, "reservation %d is not %s", update.ID, update.FromStatus)
		}
		return nil, err
	}
	return reservation, nil
}

// ShiftQueueAfter moves every live reservation of the book behind the removed
// position one slot forward, keeping positions a contiguous 0..N-1 run.
func (t *Tx) ShiftQueueAfter(ctx context.Context, bookID int64, removedPosition int) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE reservations
		SET queue_position = queue_position - 1, updated_ts = strftime('%s', 'now')
		WHERE book_id = ? AND status IN `+liveReservationStatuses+` AND queue_position > ?`,
		bookID, removedPosition)
	return err
}
