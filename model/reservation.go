package model

// ReservationStatus is the stored status of a reservation.
type ReservationStatus string

const (
	ReservationPending ReservationStatus = "PENDING"
	ReservationActive  ReservationStatus = "ACTIVE"
	// ReservationReady means a copy is held for this reservation.
	ReservationReady     ReservationStatus = "READY"
	ReservationFulfilled ReservationStatus = "FULFILLED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationRejected  ReservationStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is defined from s.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationFulfilled || s == ReservationCancelled || s == ReservationRejected
}

type Reservation struct {
	ID     int64 `json:"id"`
	BookID int64 `json:"book_id"`
	UserID int64 `json:"user_id"`

	Status          ReservationStatus `json:"status"`
	ReservationDate int64             `json:"reservation_date"`
	ExpiryDate      int64             `json:"expiry_date"`

	// QueuePosition is the 0-based rank among non-terminal reservations for
	// the same book. Positions stay contiguous: every removal from the live
	// queue shifts the later entries down by one.
	QueuePosition int `json:"queue_position"`

	// ExpectedAvailableDate is derived at read time from the earliest due
	// date of the book's active loans. Zero when unknown.
	ExpectedAvailableDate int64 `json:"expected_available_date,omitempty"`

	CreatedTs int64 `json:"created_ts"`
	UpdatedTs int64 `json:"updated_ts"`
}

type FindReservation struct {
	ID     *int64
	BookID *int64
	UserID *int64
	Status *ReservationStatus

	// OnlyLive restricts to non-terminal reservations.
	OnlyLive bool
	// ExpiredBefore restricts to live reservations whose expiry date passed.
	ExpiredBefore *int64

	Limit  *int
	Offset *int
}

type ReservationCreateRequest struct {
	BookID int64 `json:"book_id" validate:"required,gt=0"`
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}
