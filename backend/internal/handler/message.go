package handler

import (
	"net/http"
	"strconv"

	"github.com/orangery/ams/backend/internal/middleware"
	"github.com/orangery/ams/shared/api"
	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
	"github.com/orangery/ams/shared/utils"
)

// WriteMessage renders today's greetings for one event type and sends them when asked to.
func (h *Handler) WriteMessage(w http.ResponseWriter, r *http.Request) {
	var body api.WriteMessageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	caller := middleware.GetIdentityFromContext(r)

	previews, err := h.message.Generate(r.Context(), domain.EventType(body.EventType), body.Dispatch, caller.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, previews)
}

func (h *Handler) CustomMessage(w http.ResponseWriter, r *http.Request) {
	var body api.CustomMessageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	caller := middleware.GetIdentityFromContext(r)

	msg := domain.CustomMessage{Username: body.Username, EventType: domain.EventType(body.EventType), Message: body.Message}
	previews, err := h.message.Custom(r.Context(), msg, body.Dispatch, caller.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, previews)
}

func (h *Handler) MessageLogs(w http.ResponseWriter, r *http.Request) {
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.WriteErrorAndStatusCode(w, internal_errors.BadRequest("Invalid limit: must be an integer"))
			return
		}
		limit = n
	}
	logs, err := h.message.Logs(r.Context(), limit)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.MessageLogsResponse{Logs: logs})
}
