// Package engine implements the lending engine: the catalog contract, the
// loan lifecycle and the reservation queue, coordinated behind one facade.
// Every mutating operation runs in a single store transaction so a status
// transition and its copy-count mutation commit or roll back together, and
// writes an audit entry inside that same transaction.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/JohnBravos/bookhub-manager/config"
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/store"
)

// Policy is the configurable part of the lending rules.
type Policy struct {
	LoanPeriod            time.Duration
	MaxRenewals           int
	MaxActiveLoans        int
	MaxActiveReservations int
	ReservationExpiry     time.Duration

	AllowRenewal bool
	// SelfReturn and SelfRenew let members act on their own active loans
	// without a librarian.
	SelfReturn bool
	SelfRenew  bool
	// ReserveOnlyWhenUnavailable rejects reservations while copies are free.
	ReserveOnlyWhenUnavailable bool
}

func PolicyFromOptions(opts *config.Options) Policy {
	return Policy{
		LoanPeriod:                 time.Duration(opts.LoanPeriodDays) * 24 * time.Hour,
		MaxRenewals:                opts.MaxRenewals,
		MaxActiveLoans:             opts.MaxActiveLoans,
		MaxActiveReservations:      opts.MaxActiveReservations,
		ReservationExpiry:          time.Duration(opts.ReservationExpiryDays) * 24 * time.Hour,
		AllowRenewal:               opts.AllowRenewal,
		SelfReturn:                 opts.SelfReturn,
		SelfRenew:                  opts.SelfRenew,
		ReserveOnlyWhenUnavailable: opts.ReserveOnlyWhenUnavailable,
	}
}

// PolicyFromSettings converts the persisted lending settings into a Policy.
func PolicyFromSettings(settings *model.LendingSettings) Policy {
	return Policy{
		LoanPeriod:                 time.Duration(settings.LoanPeriodDays) * 24 * time.Hour,
		MaxRenewals:                settings.MaxRenewals,
		MaxActiveLoans:             settings.MaxActiveLoans,
		MaxActiveReservations:      settings.MaxActiveReservations,
		ReservationExpiry:          time.Duration(settings.ReservationExpiryDays) * 24 * time.Hour,
		AllowRenewal:               settings.AllowRenewal,
		SelfReturn:                 settings.SelfReturn,
		SelfRenew:                  settings.SelfRenew,
		ReserveOnlyWhenUnavailable: settings.ReserveOnlyWhenUnavailable,
	}
}

// Settings is the Policy in its admin-editable form.
func (p Policy) Settings() *model.LendingSettings {
	return &model.LendingSettings{
		LoanPeriodDays:             int(p.LoanPeriod / (24 * time.Hour)),
		MaxRenewals:                p.MaxRenewals,
		MaxActiveLoans:             p.MaxActiveLoans,
		MaxActiveReservations:      p.MaxActiveReservations,
		ReservationExpiryDays:      int(p.ReservationExpiry / (24 * time.Hour)),
		AllowRenewal:               p.AllowRenewal,
		SelfReturn:                 p.SelfReturn,
		SelfRenew:                  p.SelfRenew,
		ReserveOnlyWhenUnavailable: p.ReserveOnlyWhenUnavailable,
	}
}

type Engine struct {
	store *store.Store

	// mu guards policy: admins can change it at runtime.
	mu     sync.RWMutex
	policy Policy

	// now is swappable in tests.
	now func() time.Time
}

func NewEngine(s *store.Store, policy Policy) *Engine {
	return &Engine{
		store:  s,
		policy: policy,
		now:    time.Now,
	}
}

func (e *Engine) Store() *store.Store {
	return e.store
}

func (e *Engine) Policy() Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.policy
}

func (e *Engine) setPolicy(policy Policy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.policy = policy
}

// LoadPolicy overlays the persisted lending settings on the configured
// defaults. Called once at startup; a missing row keeps the defaults.
func (e *Engine) LoadPolicy(ctx context.Context) error {
	settings, err := e.store.GetLendingSettings(ctx)
	if err != nil {
		return err
	}
	if settings != nil {
		e.setPolicy(PolicyFromSettings(settings))
	}
	return nil
}

// LendingSettings exposes the current policy to staff.
func (e *Engine) LendingSettings(actor model.Actor) (*model.LendingSettings, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	return e.Policy().Settings(), nil
}

// UpdateLendingSettings persists new lending rules and applies them to all
// operations from this point on. Running loans and reservations keep the due
// and expiry dates they were created with.
func (e *Engine) UpdateLendingSettings(ctx context.Context, actor model.Actor, settings *model.LendingSettings) (*model.LendingSettings, error) {
	if actor.Role != model.RoleAdmin {
		return nil, model.NewDomainError(model.ErrPermissionDenied, "only admins can change lending settings")
	}

	if _, err := e.store.UpsertLendingSettings(ctx, settings); err != nil {
		return nil, err
	}
	e.setPolicy(PolicyFromSettings(settings))

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	if err := e.audit(ctx, tx, actor, "settings.update", "settings", 0, model.SettingTypeLending); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return settings, nil
}

// requireStaff gates librarian-initiated transitions.
func requireStaff(actor model.Actor) error {
	if !actor.Role.IsStaff() {
		return model.NewDomainError(model.ErrPermissionDenied, "operation requires librarian or admin role")
	}
	return nil
}

// requireOwnerOrStaff gates member-initiated operations on own records.
func requireOwnerOrStaff(actor model.Actor, ownerID int64) error {
	if actor.UserID == ownerID || actor.Role.IsStaff() {
		return nil
	}
	return model.NewDomainError(model.ErrPermissionDenied, "operation only permitted on own records")
}

func (e *Engine) audit(ctx context.Context, tx *store.Tx, actor model.Actor, action, entity string, entityID int64, detail string) error {
	return tx.AddAudit(ctx, &model.AuditEntry{
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	})
}

// getBookTx loads a book inside a transaction or fails with NotFound.
func getBookTx(ctx context.Context, tx *store.Tx, bookID int64) (*model.Book, error) {
	book, err := tx.GetBook(ctx, &model.FindBook{ID: &bookID})
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, model.NewDomainError(model.ErrNotFound, "book %d not found", bookID)
	}
	return book, nil
}

// getUserTx loads a user inside a transaction or fails with NotFound.
func getUserTx(ctx context.Context, tx *store.Tx, userID int64) (*model.User, error) {
	user, err := tx.GetUser(ctx, &model.FindUser{ID: &userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewDomainError(model.ErrNotFound, "user %d not found", userID)
	}
	return user, nil
}
