package handler

import (
	"net/http"
	"time"

	"github.com/orangery/ams/shared/api"
	"github.com/orangery/ams/shared/domain"
	"github.com/orangery/ams/shared/utils"
)

func (h *Handler) ViewDatesTable(w http.ResponseWriter, r *http.Request) {
	dates, err := h.dates.All(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewEventDateResponses(dates))
}

func (h *Handler) QueryDatesTable(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	dates, err := h.dates.ForUser(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewEventDateResponses(dates))
}

func (h *Handler) AddEventDate(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var body api.AddEventDateRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	date, err := time.Parse(api.DateLayout, body.Date)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, badDate("date"))
		return
	}

	added, err := h.dates.Add(r.Context(), id, domain.EventDateCreationData{Label: body.Label, Date: date})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.NewEventDateResponse(added))
}
