package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/JohnBravos/bookhub-manager/model"
)

func TestShiftQueueAfterClosesGap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book, err := s.CreateBook(ctx, &model.Book{
		Title:           "Queued",
		Publisher:       "Test Press",
		PublicationYear: 2020,
		Genre:           "Fiction",
		TotalCopies:     1,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}

	var users []*model.User
	for i := 0; i < 3; i++ {
		user, err := s.CreateUser(ctx, &model.User{
			Username:     fmt.Sprintf("waiter%d", i),
			Email:        fmt.Sprintf("waiter%d@example.com", i),
			PasswordHash: "not-a-real-hash",
			FirstName:    "Test",
			LastName:     "Waiter",
			Role:         model.RoleMember,
			Status:       model.UserActive,
		})
		if err != nil {
			t.Fatalf("Failed to create user: %v", err)
		}
		users = append(users, user)
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin tx: %v", err)
	}

	var ids []int64
	for i, user := range users {
		reservation, err := tx.CreateReservation(ctx, &model.Reservation{
			BookID:          book.ID,
			UserID:          user.ID,
			Status:          model.ReservationActive,
			ReservationDate: 1700000000,
			ExpiryDate:      1700604800,
			QueuePosition:   i,
		})
		if err != nil {
			t.Fatalf("Failed to create reservation: %v", err)
		}
		ids = append(ids, reservation.ID)
	}

	// Remove the middle entry and close the gap behind it.
	cancelled := model.ReservationCancelled
	middle, err := tx.GetReservation(ctx, &model.FindReservation{ID: &ids[1]})
	if err != nil {
		t.Fatalf("Failed to get reservation: %v", err)
	}
	if _, err := tx.UpdateReservation(ctx, &UpdateReservation{
		ID:         middle.ID,
		FromStatus: model.ReservationActive,
		Status:     &cancelled,
	}); err != nil {
		t.Fatalf("Failed to cancel reservation: %v", err)
	}
	if err := tx.ShiftQueueAfter(ctx, book.ID, middle.QueuePosition); err != nil {
		t.Fatalf("Failed to shift queue: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	reservations, err := s.ListReservations(ctx, &model.FindReservation{BookID: &book.ID, OnlyLive: true})
	if err != nil {
		t.Fatalf("Failed to list reservations: %v", err)
	}
	if len(reservations) != 2 {
		t.Fatalf("Expected 2 live reservations, got %d", len(reservations))
	}
	for i, reservation := range reservations {
		if reservation.QueuePosition != i {
			t.Fatalf("Expected position %d, got %d", i, reservation.QueuePosition)
		}
	}
}

func TestHeadOfQueueRequiresActiveAtZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book, err := s.CreateBook(ctx, &model.Book{
		Title:           "Headless",
		Publisher:       "Test Press",
		PublicationYear: 2020,
		Genre:           "Fiction",
		TotalCopies:     1,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}
	user, err := s.CreateUser(ctx, &model.User{
		Username:     "head",
		Email:        "head@example.com",
		PasswordHash: "not-a-real-hash",
		FirstName:    "Test",
		LastName:     "Head",
		Role:         model.RoleMember,
		Status:       model.UserActive,
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin tx: %v", err)
	}
	defer tx.Rollback()

	reservation, err := tx.CreateReservation(ctx, &model.Reservation{
		BookID:          book.ID,
		UserID:          user.ID,
		Status:          model.ReservationPending,
		ReservationDate: 1700000000,
		ExpiryDate:      1700604800,
		QueuePosition:   0,
	})
	if err != nil {
		t.Fatalf("Failed to create reservation: %v", err)
	}

	head, err := tx.HeadOfQueue(ctx, book.ID)
	if err != nil {
		t.Fatalf("Failed to get head of queue: %v", err)
	}
	if head != nil {
		t.Fatalf("Expected no promotable head while PENDING, got %+v", head)
	}

	active := model.ReservationActive
	if _, err := tx.UpdateReservation(ctx, &UpdateReservation{
		ID:         reservation.ID,
		FromStatus: model.ReservationPending,
		Status:     &active,
	}); err != nil {
		t.Fatalf("Failed to approve reservation: %v", err)
	}

	head, err = tx.HeadOfQueue(ctx, book.ID)
	if err != nil {
		t.Fatalf("Failed to get head of queue: %v", err)
	}
	if head == nil || head.ID != reservation.ID {
		t.Fatalf("Expected reservation %d as head, got %+v", reservation.ID, head)
	}
}
