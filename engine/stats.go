package engine

import (
	"context"

	"github.com/JohnBravos/bookhub-manager/model"
)

// SystemStats aggregates the counters behind the admin dashboard. Overdue is
// computed from due dates at read time; nothing is swept.
func (e *Engine) SystemStats(ctx context.Context, actor model.Actor) (*model.SystemStats, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	now := e.now().Unix()
	stats := &model.SystemStats{}
	var err error

	if stats.TotalUsers, err = e.store.CountUsers(ctx, &model.FindUser{}); err != nil {
		return nil, err
	}
	if stats.TotalBooks, err = e.store.CountBooks(ctx, &model.FindBook{}); err != nil {
		return nil, err
	}
	if stats.AvailableBooks, err = e.store.CountBooks(ctx, &model.FindBook{OnlyAvailable: true}); err != nil {
		return nil, err
	}
	active := model.LoanActive
	if stats.ActiveLoans, err = e.store.CountLoans(ctx, &model.FindLoan{Status: &active}); err != nil {
		return nil, err
	}
	if stats.TotalLoans, err = e.store.CountLoans(ctx, &model.FindLoan{}); err != nil {
		return nil, err
	}
	if stats.OverdueLoans, err = e.store.CountLoans(ctx, &model.FindLoan{OnlyOverdue: true, Now: now}); err != nil {
		return nil, err
	}
	if stats.TotalReservations, err = e.store.CountReservations(ctx, &model.FindReservation{}); err != nil {
		return nil, err
	}
	pending := model.ReservationPending
	if stats.PendingReservations, err = e.store.CountReservations(ctx, &model.FindReservation{Status: &pending}); err != nil {
		return nil, err
	}

	return stats, nil
}

// UserStatistics is the per-user activity summary. Members can only see
// their own.
func (e *Engine) UserStatistics(ctx context.Context, actor model.Actor, userID int64) (*model.UserStatistics, error) {
	if err := requireOwnerOrStaff(actor, userID); err != nil {
		return nil, err
	}

	now := e.now().Unix()
	stats := &model.UserStatistics{}
	var err error

	active := model.LoanActive
	if stats.ActiveLoans, err = e.store.CountLoans(ctx, &model.FindLoan{UserID: &userID, Status: &active}); err != nil {
		return nil, err
	}
	returned := model.LoanReturned
	if stats.TotalBorrowed, err = e.store.CountLoans(ctx, &model.FindLoan{UserID: &userID, Status: &returned}); err != nil {
		return nil, err
	}
	stats.TotalBorrowed += stats.ActiveLoans
	if stats.TotalReservations, err = e.store.CountReservations(ctx, &model.FindReservation{UserID: &userID}); err != nil {
		return nil, err
	}
	if stats.OverdueCount, err = e.store.CountLoans(ctx, &model.FindLoan{UserID: &userID, OnlyOverdue: true, Now: now}); err != nil {
		return nil, err
	}

	return stats, nil
}
