package engine

import (
	"context"
	"fmt"

	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/store"
	"go.uber.org/zap"
)

// RequestReservation appends a PENDING reservation at the tail of the book's
// queue. The position equals the current count of non-terminal reservations.
func (e *Engine) RequestReservation(ctx context.Context, actor model.Actor, req *model.ReservationCreateRequest) (*model.Reservation, error) {
	if err := requireOwnerOrStaff(actor, req.UserID); err != nil {
		return nil, err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := getUserTx(ctx, tx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user.Status != model.UserActive {
		return nil, model.NewDomainError(model.ErrPermissionDenied, "user account is %s", user.Status)
	}
	book, err := getBookTx(ctx, tx, req.BookID)
	if err != nil {
		return nil, err
	}

	reserved, err := tx.HasLiveReservation(ctx, req.UserID, req.BookID)
	if err != nil {
		return nil, err
	}
	if reserved {
		return nil, model.NewDomainError(model.ErrAlreadyReserved, "user already holds a reservation on this book")
	}
	if e.Policy().ReserveOnlyWhenUnavailable && book.AvailableCopies > 0 {
		return nil, model.NewDomainError(model.ErrBookAvailable, "book has available copies, borrow it instead")
	}

	liveCount, err := tx.CountLiveForUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if liveCount >= e.Policy().MaxActiveReservations {
		return nil, model.NewDomainError(model.ErrUserAtReservationLimit, "user has reached the maximum of %d reservations", e.Policy().MaxActiveReservations)
	}

	position, err := tx.CountLiveForBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	reservation, err := tx.CreateReservation(ctx, &model.Reservation{
		BookID:          req.BookID,
		UserID:          req.UserID,
		Status:          model.ReservationPending,
		ReservationDate: now.Unix(),
		ExpiryDate:      now.Add(e.Policy().ReservationExpiry).Unix(),
		QueuePosition:   position,
	})
	if err != nil {
		return nil, err
	}

	if err := e.audit(ctx, tx, actor, "reservation.request", "reservation", reservation.ID, fmt.Sprintf("book=%d user=%d position=%d", req.BookID, req.UserID, position)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("Reservation requested",
		zap.Int64("reservation_id", reservation.ID),
		zap.Int64("book_id", reservation.BookID),
		zap.Int("queue_position", reservation.QueuePosition))
	return reservation, nil
}

// ApproveReservation transitions a PENDING reservation to ACTIVE. The entry
// keeps its queue position.
func (e *Engine) ApproveReservation(ctx context.Context, actor model.Actor, reservationID int64) (*model.Reservation, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	reservation, err := e.getReservationTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != model.ReservationPending {
		return nil, model.NewDomainError(model.ErrStateViolation, "reservation %d is %s, expected PENDING", reservationID, reservation.Status)
	}

	active := model.ReservationActive
	reservation, err = tx.UpdateReservation(ctx, &store.UpdateReservation{
		ID:         reservationID,
		FromStatus: model.ReservationPending,
		Status:     &active,
	})
	if err != nil {
		return nil, err
	}

	if err := e.audit(ctx, tx, actor, "reservation.approve", "reservation", reservationID, ""); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return reservation, nil
}

// RejectReservation transitions a PENDING reservation to REJECTED and closes
// its gap in the queue.
func (e *Engine) RejectReservation(ctx context.Context, actor model.Actor, reservationID int64) (*model.Reservation, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	reservation, err := e.getReservationTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != model.ReservationPending {
		return nil, model.NewDomainError(model.ErrStateViolation, "reservation %d is %s, expected PENDING", reservationID, reservation.Status)
	}

	rejected := model.ReservationRejected
	reservation, err = tx.UpdateReservation(ctx, &store.UpdateReservation{
		ID:         reservationID,
		FromStatus: model.ReservationPending,
		Status:     &rejected,
	})
	if err != nil {
		return nil, err
	}
	if err := tx.ShiftQueueAfter(ctx, reservation.BookID, reservation.QueuePosition); err != nil {
		return nil, err
	}

	if err := e.audit(ctx, tx, actor, "reservation.reject", "reservation", reservationID, ""); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return reservation, nil
}

// MarkReservationReady is the librarian entry point for queue promotion: it
// runs the head-of-queue check for the book and reports what happened.
func (e *Engine) MarkReservationReady(ctx context.Context, actor model.Actor, bookID int64) (*model.Reservation, error) {
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
	promoted, err := e.promoteHead(ctx, tx, actor, bookID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return promoted, nil
}

// FulfillReservation converts a READY reservation into an ACTIVE loan. The
// held copy transfers to the loan, so available copies do not change.
func (e *Engine) FulfillReservation(ctx context.Context, actor model.Actor, reservationID int64) (*model.Loan, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	reservation, err := e.getReservationTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != model.ReservationReady {
		return nil, model.NewDomainError(model.ErrStateViolation, "reservation %d is %s, expected READY", reservationID, reservation.Status)
	}

	fulfilled := model.ReservationFulfilled
	if _, err := tx.UpdateReservation(ctx, &store.UpdateReservation{
		ID:         reservationID,
		FromStatus: model.ReservationReady,
		Status:     &fulfilled,
	}); err != nil {
		return nil, err
	}
	if err := tx.ShiftQueueAfter(ctx, reservation.BookID, reservation.QueuePosition); err != nil {
		return nil, err
	}

	now := e.now().Unix()
	loan, err := tx.CreateLoan(ctx, &model.Loan{
		BookID:   reservation.BookID,
		UserID:   reservation.UserID,
		Status:   model.LoanActive,
		LoanDate: now,
		DueDate:  now + int64(e.Policy().LoanPeriod.Seconds()),
	})
	if err != nil {
		return nil, err
	}

	if err := e.audit(ctx, tx, actor, "reservation.fulfill", "reservation", reservationID, fmt.Sprintf("loan=%d", loan.ID)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("Reservation fulfilled",
		zap.Int64("reservation_id", reservationID),
		zap.Int64("loan_id", loan.ID))
	return loan, nil
}

// CancelReservation cancels an ACTIVE or READY reservation. Cancelling a
// READY one releases the held copy and promotes the next waiter within the
// same operation.
func (e *Engine) CancelReservation(ctx context.Context, actor model.Actor, reservationID int64) (*model.Reservation, error) {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	reservation, err := e.getReservationTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrStaff(actor, reservation.UserID); err != nil {
		return nil, err
	}
	if reservation.Status != model.ReservationActive && reservation.Status != model.ReservationReady {
		return nil, model.NewDomainError(model.ErrStateViolation, "reservation %d is %s, expected ACTIVE or READY", reservationID, reservation.Status)
	}

	wasReady := reservation.Status == model.ReservationReady
	cancelled := model.ReservationCancelled
	reservation, err = tx.UpdateReservation(ctx, &store.UpdateReservation{
		ID:         reservationID,
		FromStatus: reservation.Status,
		Status:     &cancelled,
	})
	if err != nil {
		return nil, err
	}
	if err := tx.ShiftQueueAfter(ctx, reservation.BookID, reservation.QueuePosition); err != nil {
		return nil, err
	}

	if wasReady {
		// Give the held copy back, then offer it to the next in line.
		if err := tx.ReleaseCopy(ctx, reservation.BookID); err != nil {
			return nil, err
		}
		if _, err := e.promoteHead(ctx, tx, actor, reservation.BookID); err != nil {
			return nil, err
		}
	}

	if err := e.audit(ctx, tx, actor, "reservation.cancel", "reservation", reservationID, ""); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("Reservation cancelled", zap.Int64("reservation_id", reservationID))
	return reservation, nil
}

// promoteHead moves the head of the book's queue to READY when a copy is
// free, holding that copy for the reservation. Returns the promoted
// reservation, or nil when the head is not an ACTIVE reservation at
// position 0 or no copy is free.
func (e *Engine) promoteHead(ctx context.Context, tx *store.Tx, actor model.Actor, bookID int64) (*model.Reservation, error) {
	head, err := tx.HeadOfQueue(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if head == nil {
		return nil, nil
	}

	if err := tx.ReserveCopy(ctx, bookID); err != nil {
		if model.KindOf(err) == model.ErrOutOfStock {
			return nil, nil
		}
		return nil, err
	}

	ready := model.ReservationReady
	promoted, err := tx.UpdateReservation(ctx, &store.UpdateReservation{
		ID:         head.ID,
		FromStatus: model.ReservationActive,
		Status:     &ready,
	})
	if err != nil {
		return nil, err
	}

	if err := e.audit(ctx, tx, actor, "reservation.ready", "reservation", head.ID, fmt.Sprintf("book=%d", bookID)); err != nil {
		return nil, err
	}
	return promoted, nil
}

func (e *Engine) getReservationTx(ctx context.Context, tx *store.Tx, reservationID int64) (*model.Reservation, error) {
	reservation, err := tx.GetReservation(ctx, &model.FindReservation{ID: &reservationID})
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, model.NewDomainError(model.ErrNotFound, "reservation %d not found", reservationID)
	}
	return reservation, nil
}
