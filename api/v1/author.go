package v1

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/JohnBravos/bookhub-manager/http/request"
	"github.com/JohnBravos/bookhub-manager/http/response"
	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/store"
	"github.com/JohnBravos/bookhub-manager/validator"
)

func (h *Handler) listAuthors(w http.ResponseWriter, r *http.Request) {
	page, size := request.Pagination(r)
	offset := page * size

	find := &model.FindAuthor{Limit: &size, Offset: &offset}
	if search := request.QueryStringParam(r, "search", ""); search != "" {
		find.Search = &search
	}

	authors, err := h.store.ListAuthors(r.Context(), find)
	if err != nil {
		log.Error("Failed to list authors", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	total, err := h.store.CountAuthors(r.Context())
	if err != nil {
		log.Error("Failed to count authors", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, response.NewPage(authors, total, size))
}

func (h *Handler) getAuthor(w http.ResponseWriter, r *http.Request) {
	authorID := request.RouteInt64Param(r, "id")

	author, err := h.store.GetAuthor(r.Context(), &model.FindAuthor{ID: &authorID})
	if err != nil {
		log.Error("Failed to get author", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if author == nil {
		response.NotFound(w, r)
		return
	}

	response.OK(w, r, author)
}

func (h *Handler) createAuthor(w http.ResponseWriter, r *http.Request) {
	if !request.GetUserRole(r).IsStaff() {
		response.Forbidden(w, r)
		return
	}

	req := &model.AuthorCreateRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.DomainError(w, r, err)
		return
	}

	author, err := h.store.CreateAuthor(r.Context(), &model.Author{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Biography: req.Biography,
	})
	if err != nil {
		log.Error("Failed to create author", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.Created(w, r, author)
}

func (h *Handler) updateAuthor(w http.ResponseWriter, r *http.Request) {
	if !request.GetUserRole(r).IsStaff() {
		response.Forbidden(w, r)
		return
	}
	authorID := request.RouteInt64Param(r, "id")

	req := &model.AuthorUpdateRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.DomainError(w, r, err)
		return
	}

	author, err := h.store.UpdateAuthor(r.Context(), &store.UpdateAuthor{
		ID:        authorID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Biography: req.Biography,
	})
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, author)
}

func (h *Handler) deleteAuthor(w http.ResponseWriter, r *http.Request) {
	if !request.GetUserRole(r).IsStaff() {
		response.Forbidden(w, r)
		return
	}
	authorID := request.RouteInt64Param(r, "id")

	if err := h.store.DeleteAuthor(r.Context(), authorID); err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.NoContent(w, r)
}
