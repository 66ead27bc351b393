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

func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.SystemStats(r.Context(), request.GetActor(r))
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, stats)
}

func (h *Handler) getLendingSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.engine.LendingSettings(request.GetActor(r))
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, settings)
}

func (h *Handler) updateLendingSettings(w http.ResponseWriter, r *http.Request) {
	settings := &model.LendingSettings{}
	if err := json.NewDecoder(r.Body).Decode(settings); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateStruct(settings); err != nil {
		response.DomainError(w, r, err)
		return
	}

	updated, err := h.engine.UpdateLendingSettings(r.Context(), request.GetActor(r), settings)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.OK(w, r, updated)
}

func (h *Handler) listAuditLog(w http.ResponseWriter, r *http.Request) {
	page, size := request.Pagination(r)
	offset := page * size

	find := &model.FindAuditEntry{Limit: &size, Offset: &offset}
	if entity := request.QueryStringParam(r, "entity", ""); entity != "" {
		find.Entity = &entity
	}
	if actorID := request.QueryIntParam(r, "actor", 0); actorID > 0 {
		v := int64(actorID)
		find.ActorID = &v
	}

	entries, err := h.store.ListAuditEntries(r.Context(), find)
	if err != nil {
		log.Error("Failed to list audit entries", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, entries)
}
