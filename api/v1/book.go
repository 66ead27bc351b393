package v1

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/JohnBravos/bookhub-manager/http/request"
	"github.com/JohnBravos/bookhub-manager/http/response"
	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/validator"
)

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	page, size := request.Pagination(r)
	offset := page * size

	find := &model.FindBook{Limit: &size, Offset: &offset}
	if search := request.QueryStringParam(r, "search", ""); search != "" {
		find.Search = &search
	}
	if genre := request.QueryStringParam(r, "genre", ""); genre != "" {
		find.Genre = &genre
	}
	if isbn := request.QueryStringParam(r, "isbn", ""); isbn != "" {
		find.ISBN = &isbn
	}
	find.OnlyAvailable = request.QueryStringParam(r, "available", "") == "true"

	books, err := h.store.ListBooks(r.Context(), find)
	if err != nil {
		log.Error("Failed to list books", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	total, err := h.store.CountBooks(r.Context(), &model.FindBook{
		ISBN:          find.ISBN,
		Genre:         find.Genre,
		Search:        find.Search,
		OnlyAvailable: find.OnlyAvailable,
	})
	if err != nil {
		log.Error("Failed to count books", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, response.NewPage(books, total, size))
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	bookID := request.RouteInt64Param(r, "id")

	book, err := h.store.GetBook(r.Context(), &model.FindBook{ID: &bookID})
	if err != nil {
		log.Error("Failed to get book", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if book == nil {
		response.NotFound(w, r)
		return
	}

	response.OK(w, r, book)
}

func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	req := &model.BookCreateRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.DomainError(w, r, err)
		return
	}

	book, err := h.engine.CreateBook(r.Context(), request.GetActor(r), req)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.Created(w, r, book)
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	bookID := request.RouteInt64Param(r, "id")

	req := &model.BookUpdateRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.DomainError(w, r, err)
		return
	}

	book, err := h.engine.UpdateBook(r.Context(), request.GetActor(r), bookID, req)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, book)
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	bookID := request.RouteInt64Param(r, "id")

	if err := h.engine.DeleteBook(r.Context(), request.GetActor(r), bookID); err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.NoContent(w, r)
}
