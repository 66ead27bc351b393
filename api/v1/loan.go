package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JohnBravos/bookhub-manager/config"
	"github.com/JohnBravos/bookhub-manager/http/request"
	"github.com/JohnBravos/bookhub-manager/http/response"
	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/validator"
)

func (h *Handler) requestLoan(w http.ResponseWriter, r *http.Request) {
	req := &model.LoanCreateRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.DomainError(w, r, err)
		return
	}

	loan, err := h.engine.RequestLoan(r.Context(), request.GetActor(r), req)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.Created(w, r, response.LoanResponse(loan, time.Now()))
}

func (h *Handler) getLoan(w http.ResponseWriter, r *http.Request) {
	loanID := request.RouteInt64Param(r, "id")

	loan, err := h.store.GetLoan(r.Context(), &model.FindLoan{ID: &loanID})
	if err != nil {
		log.Error("Failed to get loan", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if loan == nil {
		response.NotFound(w, r)
		return
	}
	actor := request.GetActor(r)
	if loan.UserID != actor.UserID && !actor.Role.IsStaff() {
		response.Forbidden(w, r)
		return
	}

	response.OK(w, r, response.LoanResponse(loan, time.Now()))
}

func (h *Handler) approveLoan(w http.ResponseWriter, r *http.Request) {
	loanID := request.RouteInt64Param(r, "id")

	loan, err := h.engine.ApproveLoan(r.Context(), request.GetActor(r), loanID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, response.LoanResponse(loan, time.Now()))
}

func (h *Handler) rejectLoan(w http.ResponseWriter, r *http.Request) {
	loanID := request.RouteInt64Param(r, "id")

	loan, err := h.engine.RejectLoan(r.Context(), request.GetActor(r), loanID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, response.LoanResponse(loan, time.Now()))
}

func (h *Handler) returnLoan(w http.ResponseWriter, r *http.Request) {
	req := &model.LoanReturnRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.DomainError(w, r, err)
		return
	}

	loan, err := h.engine.ReturnLoan(r.Context(), request.GetActor(r), req.LoanID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, response.LoanResponse(loan, time.Now()))
}

func (h *Handler) renewLoan(w http.ResponseWriter, r *http.Request) {
	loanID := request.RouteInt64Param(r, "id")

	loan, err := h.engine.RenewLoan(r.Context(), request.GetActor(r), loanID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, response.LoanResponse(loan, time.Now()))
}

func (h *Handler) listUserLoans(w http.ResponseWriter, r *http.Request) {
	userID := request.RouteInt64Param(r, "userID")
	actor := request.GetActor(r)
	if actor.UserID != userID && !actor.Role.IsStaff() {
		response.Forbidden(w, r)
		return
	}

	page, size := request.Pagination(r)
	offset := page * size
	find := &model.FindLoan{UserID: &userID, Limit: &size, Offset: &offset}
	if status := request.QueryStringParam(r, "status", ""); status != "" {
		v := model.LoanStatus(status)
		find.Status = &v
	}

	h.writeLoanPage(w, r, find, size)
}

func (h *Handler) listActiveLoans(w http.ResponseWriter, r *http.Request) {
	if !request.GetUserRole(r).IsStaff() {
		response.Forbidden(w, r)
		return
	}

	page, size := request.Pagination(r)
	offset := page * size
	status := model.LoanActive
	h.writeLoanPage(w, r, &model.FindLoan{Status: &status, Limit: &size, Offset: &offset}, size)
}

func (h *Handler) listOverdueLoans(w http.ResponseWriter, r *http.Request) {
	if !request.GetUserRole(r).IsStaff() {
		response.Forbidden(w, r)
		return
	}

	page, size := request.Pagination(r)
	offset := page * size
	h.writeLoanPage(w, r, &model.FindLoan{
		OnlyOverdue: true,
		Now:         time.Now().Unix(),
		Limit:       &size,
		Offset:      &offset,
	}, size)
}

func (h *Handler) listLoansDueSoon(w http.ResponseWriter, r *http.Request) {
	if !request.GetUserRole(r).IsStaff() {
		response.Forbidden(w, r)
		return
	}

	page, size := request.Pagination(r)
	offset := page * size
	days := request.QueryIntParam(r, "days", config.Opts.DueSoonDays)
	now := time.Now()
	dueBefore := now.Add(time.Duration(days) * 24 * time.Hour).Unix()
	// Now sets the lower bound so already-overdue loans stay on /loans/overdue.
	h.writeLoanPage(w, r, &model.FindLoan{
		DueBefore: &dueBefore,
		Now:       now.Unix(),
		Limit:     &size,
		Offset:    &offset,
	}, size)
}

func (h *Handler) writeLoanPage(w http.ResponseWriter, r *http.Request, find *model.FindLoan, size int) {
	loans, err := h.store.ListLoans(r.Context(), find)
	if err != nil {
		log.Error("Failed to list loans", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	countFind := *find
	countFind.Limit, countFind.Offset = nil, nil
	total, err := h.store.CountLoans(r.Context(), &countFind)
	if err != nil {
		log.Error("Failed to count loans", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, response.NewPage(response.LoanListResponse(loans, time.Now()), total, size))
}
