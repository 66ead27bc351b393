package v1

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/JohnBravos/bookhub-manager/engine"
	"github.com/JohnBravos/bookhub-manager/middleware"
	"github.com/JohnBravos/bookhub-manager/store"
)

type Handler struct {
	store  *store.Store
	engine *engine.Engine
	router *mux.Router
}

func NewHandler(e *engine.Engine, router *mux.Router) *Handler {
	return &Handler{
		store:  e.Store(),
		engine: e,
		router: router,
	}
}

// Server mounts the API under /api/v1.
func Server(router *mux.Router, e *engine.Engine, jwtSecret string) {
	handler := NewHandler(e, router)

	sr := router.PathPrefix("/api/v1").Subrouter()
	sr.Use(middleware.HandleCORS)
	sr.Use(middleware.LoggingRequest)
	sr.Use(NewAuthInterceptor(handler.store, jwtSecret).AuthenticationInterceptor)
	sr.Methods(http.MethodOptions)

	// Auth
	sr.HandleFunc("/auth/register", handler.register).Methods(http.MethodPost)
	sr.HandleFunc("/auth/signin", handler.signIn).Methods(http.MethodPost)

	// Users
	sr.HandleFunc("/users", handler.listUsers).Methods(http.MethodGet)
	sr.HandleFunc("/users/{id}", handler.getUser).Methods(http.MethodGet)
	sr.HandleFunc("/users/{id}", handler.updateUser).Methods(http.MethodPut)
	sr.HandleFunc("/users/{id}", handler.deactivateUser).Methods(http.MethodDelete)
	sr.HandleFunc("/users/{id}/password", handler.changePassword).Methods(http.MethodPost)
	sr.HandleFunc("/users/{id}/statistics", handler.userStatistics).Methods(http.MethodGet)

	// Books
	sr.HandleFunc("/books", handler.listBooks).Methods(http.MethodGet)
	sr.HandleFunc("/books", handler.createBook).Methods(http.MethodPost)
	sr.HandleFunc("/books/{id}", handler.getBook).Methods(http.MethodGet)
	sr.HandleFunc("/books/{id}", handler.updateBook).Methods(http.MethodPut)
	sr.HandleFunc("/books/{id}", handler.deleteBook).Methods(http.MethodDelete)

	// Authors
	sr.HandleFunc("/authors", handler.listAuthors).Methods(http.MethodGet)
	sr.HandleFunc("/authors", handler.createAuthor).Methods(http.MethodPost)
	sr.HandleFunc("/authors/{id}", handler.getAuthor).Methods(http.MethodGet)
	sr.HandleFunc("/authors/{id}", handler.updateAuthor).Methods(http.MethodPut)
	sr.HandleFunc("/authors/{id}", handler.deleteAuthor).Methods(http.MethodDelete)

	// Loans
	sr.HandleFunc("/loans", handler.requestLoan).Methods(http.MethodPost)
	sr.HandleFunc("/loans/return", handler.returnLoan).Methods(http.MethodPost)
	sr.HandleFunc("/loans/active", handler.listActiveLoans).Methods(http.MethodGet)
	sr.HandleFunc("/loans/overdue", handler.listOverdueLoans).Methods(http.MethodGet)
	sr.HandleFunc("/loans/due-soon", handler.listLoansDueSoon).Methods(http.MethodGet)
	sr.HandleFunc("/loans/user/{userID}", handler.listUserLoans).Methods(http.MethodGet)
	sr.HandleFunc("/loans/{id}", handler.getLoan).Methods(http.MethodGet)
	sr.HandleFunc("/loans/{id}/approve", handler.approveLoan).Methods(http.MethodPost)
	sr.HandleFunc("/loans/{id}/reject", handler.rejectLoan).Methods(http.MethodPost)
	sr.HandleFunc("/loans/{id}/renew", handler.renewLoan).Methods(http.MethodPost)

	// Reservations
	sr.HandleFunc("/reservations", handler.createReservation).Methods(http.MethodPost)
	sr.HandleFunc("/reservations/expired", handler.listExpiredReservations).Methods(http.MethodGet)
	sr.HandleFunc("/reservations/user/{userID}", handler.listUserReservations).Methods(http.MethodGet)
	sr.HandleFunc("/reservations/book/{bookID}", handler.listBookQueue).Methods(http.MethodGet)
	sr.HandleFunc("/reservations/book/{bookID}/promote", handler.promoteBookQueue).Methods(http.MethodPost)
	sr.HandleFunc("/reservations/{id}", handler.getReservation).Methods(http.MethodGet)
	sr.HandleFunc("/reservations/{id}/approve", handler.approveReservation).Methods(http.MethodPost)
	sr.HandleFunc("/reservations/{id}/reject", handler.rejectReservation).Methods(http.MethodPost)
	sr.HandleFunc("/reservations/{id}/fulfill", handler.fulfillReservation).Methods(http.MethodPost)
	sr.HandleFunc("/reservations/{id}/cancel", handler.cancelReservation).Methods(http.MethodPost)

	// Admin
	sr.HandleFunc("/admin/stats", handler.adminStats).Methods(http.MethodGet)
	sr.HandleFunc("/admin/audit", handler.listAuditLog).Methods(http.MethodGet)
	sr.HandleFunc("/admin/settings", handler.getLendingSettings).Methods(http.MethodGet)
	sr.HandleFunc("/admin/settings", handler.updateLendingSettings).Methods(http.MethodPost)
}
