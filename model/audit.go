package model

// AuditEntry records who performed which transition and on what. One entry is
// written in the same transaction as every mutating engine operation.
type AuditEntry struct {
	ID       int64  `json:"id"`
	ActorID  int64  `json:"actor_id"`
	Action   string `json:"action"`
	Entity   string `json:"entity"`
	EntityID int64  `json:"entity_id"`
	Detail   string `json:"detail,omitempty"`

	CreatedTs int64 `json:"created_ts"`
}

type FindAuditEntry struct {
	ActorID  *int64
	Entity   *string
	EntityID *int64

	Limit  *int
	Offset *int
}

// SystemStats is the aggregate counters behind the admin dashboard.
type SystemStats struct {
	TotalUsers          int64 `json:"total_users"`
	TotalBooks          int64 `json:"total_books"`
	AvailableBooks      int64 `json:"available_books"`
	ActiveLoans         int64 `json:"active_loans"`
	TotalLoans          int64 `json:"total_loans"`
	OverdueLoans        int64 `json:"overdue_loans"`
	TotalReservations   int64 `json:"total_reservations"`
	PendingReservations int64 `json:"pending_reservations"`
}
