package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JohnBravos/bookhub-manager/http/request"
	"github.com/JohnBravos/bookhub-manager/http/response"
	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/validator"
)

func (h *Handler) createReservation(w http.ResponseWriter, r *http.Request) {
	req := &model.ReservationCreateRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.DomainError(w, r, err)
		return
	}

	reservation, err := h.engine.RequestReservation(r.Context(), request.GetActor(r), req)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.Created(w, r, h.reservationResponse(r, reservation))
}

func (h *Handler) getReservation(w http.ResponseWriter, r *http.Request) {
	reservationID := request.RouteInt64Param(r, "id")

	reservation, err := h.store.GetReservation(r.Context(), &model.FindReservation{ID: &reservationID})
	if err != nil {
		log.Error("Failed to get reservation", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if reservation == nil {
		response.NotFound(w, r)
		return
	}
	actor := request.GetActor(r)
	if reservation.UserID != actor.UserID && !actor.Role.IsStaff() {
		response.Forbidden(w, r)
		return
	}

	response.OK(w, r, h.reservationResponse(r, reservation))
}

func (h *Handler) approveReservation(w http.ResponseWriter, r *http.Request) {
	reservationID := request.RouteInt64Param(r, "id")

	reservation, err := h.engine.ApproveReservation(r.Context(), request.GetActor(r), reservationID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, h.reservationResponse(r, reservation))
}

func (h *Handler) rejectReservation(w http.ResponseWriter, r *http.Request) {
	reservationID := request.RouteInt64Param(r, "id")

	reservation, err := h.engine.RejectReservation(r.Context(), request.GetActor(r), reservationID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, h.reservationResponse(r, reservation))
}

func (h *Handler) fulfillReservation(w http.ResponseWriter, r *http.Request) {
	reservationID := request.RouteInt64Param(r, "id")

	loan, err := h.engine.FulfillReservation(r.Context(), request.GetActor(r), reservationID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, response.LoanResponse(loan, time.Now()))
}

func (h *Handler) cancelReservation(w http.ResponseWriter, r *http.Request) {
	reservationID := request.RouteInt64Param(r, "id")

	reservation, err := h.engine.CancelReservation(r.Context(), request.GetActor(r), reservationID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, h.reservationResponse(r, reservation))
}

// promoteBookQueue lets a librarian run the head-of-queue promotion for a
// book, e.g. after copies were added to the catalog.
func (h *Handler) promoteBookQueue(w http.ResponseWriter, r *http.Request) {
	bookID := request.RouteInt64Param(r, "bookID")

	head, err := h.engine.MarkReservationReady(r.Context(), request.GetActor(r), bookID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	if head == nil {
		response.NoContent(w, r)
		return
	}

	response.OK(w, r, h.reservationResponse(r, head))
}

func (h *Handler) listUserReservations(w http.ResponseWriter, r *http.Request) {
	userID := request.RouteInt64Param(r, "userID")
	actor := request.GetActor(r)
	if actor.UserID != userID && !actor.Role.IsStaff() {
		response.Forbidden(w, r)
		return
	}

	page, size := request.Pagination(r)
	offset := page * size
	find := &model.FindReservation{UserID: &userID, Limit: &size, Offset: &offset}
	find.OnlyLive = request.QueryStringParam(r, "live", "") == "true"

	h.writeReservationPage(w, r, find, size)
}

// listExpiredReservations lists live reservations whose expiry date passed,
// so staff can reject them and free up the queue.
func (h *Handler) listExpiredReservations(w http.ResponseWriter, r *http.Request) {
	if !request.GetUserRole(r).IsStaff() {
		response.Forbidden(w, r)
		return
	}

	page, size := request.Pagination(r)
	offset := page * size
	now := time.Now().Unix()
	h.writeReservationPage(w, r, &model.FindReservation{
		ExpiredBefore: &now,
		Limit:         &size,
		Offset:        &offset,
	}, size)
}

func (h *Handler) listBookQueue(w http.ResponseWriter, r *http.Request) {
	if !request.GetUserRole(r).IsStaff() {
		response.Forbidden(w, r)
		return
	}
	bookID := request.RouteInt64Param(r, "bookID")

	page, size := request.Pagination(r)
	offset := page * size
	h.writeReservationPage(w, r, &model.FindReservation{
		BookID:   &bookID,
		OnlyLive: true,
		Limit:    &size,
		Offset:   &offset,
	}, size)
}

func (h *Handler) writeReservationPage(w http.ResponseWriter, r *http.Request, find *model.FindReservation, size int) {
	reservations, err := h.store.ListReservations(r.Context(), find)
	if err != nil {
		log.Error("Failed to list reservations", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	countFind := *find
	countFind.Limit, countFind.Offset = nil, nil
	total, err := h.store.CountReservations(r.Context(), &countFind)
	if err != nil {
		log.Error("Failed to count reservations", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	content := make([]*model.Reservation, 0, len(reservations))
	for _, reservation := range reservations {
		content = append(content, h.reservationResponse(r, reservation))
	}
	response.OK(w, r, response.NewPage(content, total, size))
}

// reservationResponse decorates a reservation with the expected available
// date, derived from the earliest due date among the book's active loans.
func (h *Handler) reservationResponse(r *http.Request, reservation *model.Reservation) *model.Reservation {
	var expected int64
	if !reservation.Status.IsTerminal() {
		due, err := h.store.EarliestActiveDueDate(r.Context(), reservation.BookID)
		if err != nil {
			log.Debug("Failed to derive expected available date", zap.Error(err))
		} else {
			expected = due
		}
	}
	return response.ReservationResponse(reservation, expected)
}
