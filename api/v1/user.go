package v1

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/JohnBravos/bookhub-manager/http/request"
	"github.com/JohnBravos/bookhub-manager/http/response"
	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/store"
	"github.com/JohnBravos/bookhub-manager/validator"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, size := request.Pagination(r)
	offset := page * size

	find := &model.FindUser{Limit: &size, Offset: &offset}
	if role := request.QueryStringParam(r, "role", ""); role != "" {
		v := model.Role(role)
		find.Role = &v
	}

	users, err := h.store.ListUsers(r.Context(), find)
	if err != nil {
		log.Error("Failed to list users", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	total, err := h.store.CountUsers(r.Context(), &model.FindUser{Role: find.Role})
	if err != nil {
		log.Error("Failed to count users", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, response.NewPage(response.UserListResponse(users), total, size))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	userID := request.RouteInt64Param(r, "id")
	actor := request.GetActor(r)
	if actor.UserID != userID && !actor.Role.IsStaff() {
		response.Forbidden(w, r)
		return
	}

	user, err := h.store.GetUser(r.Context(), &model.FindUser{ID: &userID})
	if err != nil {
		log.Error("Failed to get user", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if user == nil {
		response.NotFound(w, r)
		return
	}

	response.OK(w, r, response.UserResponse(user))
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	userID := request.RouteInt64Param(r, "id")
	actor := request.GetActor(r)
	if actor.UserID != userID && !actor.Role.IsStaff() {
		response.Forbidden(w, r)
		return
	}

	req := &model.UserUpdateRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.DomainError(w, r, err)
		return
	}
	// Only admins hand out roles or flip account status.
	if (req.Role != nil || req.Status != nil) && actor.Role != model.RoleAdmin {
		response.Forbidden(w, r)
		return
	}

	user, err := h.store.UpdateUser(r.Context(), &store.UpdateUser{
		ID:          userID,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		Status:      req.Status,
	})
	if err != nil {
		log.Error("Failed to update user", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, response.UserResponse(user))
}

// deactivateUser marks the account INACTIVE. History stays, so accounts are
// never deleted outright.
func (h *Handler) deactivateUser(w http.ResponseWriter, r *http.Request) {
	userID := request.RouteInt64Param(r, "id")
	actor := request.GetActor(r)
	if actor.Role != model.RoleAdmin {
		response.Forbidden(w, r)
		return
	}

	status := model.UserInactive
	if _, err := h.store.UpdateUser(r.Context(), &store.UpdateUser{ID: userID, Status: &status}); err != nil {
		log.Error("Failed to deactivate user", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}

	response.NoContent(w, r)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	userID := request.RouteInt64Param(r, "id")
	actor := request.GetActor(r)
	if actor.UserID != userID {
		response.Forbidden(w, r)
		return
	}

	req := &model.ChangePasswordRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.DomainError(w, r, err)
		return
	}

	user, err := h.store.GetUser(r.Context(), &model.FindUser{ID: &userID})
	if err != nil {
		log.Error("Failed to get user", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if user == nil {
		response.NotFound(w, r)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		response.DomainError(w, r, model.NewDomainError(model.ErrValidation, "old password does not match"))
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to generate password hash", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	hash := string(passwordHash)
	if _, err := h.store.UpdateUser(r.Context(), &store.UpdateUser{ID: userID, PasswordHash: &hash}); err != nil {
		log.Error("Failed to update password", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}

	response.NoContent(w, r)
}

func (h *Handler) userStatistics(w http.ResponseWriter, r *http.Request) {
	userID := request.RouteInt64Param(r, "id")

	stats, err := h.engine.UserStatistics(r.Context(), request.GetActor(r), userID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, stats)
}
