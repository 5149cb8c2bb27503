package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/orangery/ams/backend/internal/service"
	"github.com/orangery/ams/shared/api"
	"github.com/orangery/ams/shared/config"
	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
	"github.com/orangery/ams/shared/utils"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	auth    service.AuthService
	member  service.MemberService
	dates   service.EventDateService
	message service.MessageService
	health  HealthChecker
	cfg     *config.Config
}

func New(auth service.AuthService, member service.MemberService, dates service.EventDateService, message service.MessageService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{
		auth:    auth,
		member:  member,
		dates:   dates,
		message: message,
		health:  health,
		cfg:     cfg,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	utils.WriteJSON(w, http.StatusOK, v)
}

func writeDetail(w http.ResponseWriter, detail string) {
	writeJSON(w, api.DetailResponse{Detail: detail})
}

// selectorFromQuery reads the user_id / username pair used by the member routes.
func selectorFromQuery(r *http.Request) (domain.Selector, error) {
	q := r.URL.Query()
	var sel domain.Selector
	if raw := strings.TrimSpace(q.Get("user_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return sel, internal_errors.BadRequest("Invalid user_id: must be a positive integer")
		}
		sel.UserId = id
	}
	sel.Username = strings.TrimSpace(q.Get("username"))
	return sel, nil
}

func userIdParam(r *http.Request) (domain.UserId, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		return 0, internal_errors.BadRequest("Invalid user_id: must be an integer")
	}
	return id, nil
}

func badDate(field string) error {
	return internal_errors.BadRequest("Invalid " + field + ": expected YYYY-MM-DD")
}
