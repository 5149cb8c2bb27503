package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/orangery/ams/backend/internal/middleware"
	"github.com/orangery/ams/shared/api"
	"github.com/orangery/ams/shared/domain"
	"github.com/orangery/ams/shared/logger"
	"github.com/orangery/ams/shared/utils"
)

func (h *Handler) ActivateMember(w http.ResponseWriter, r *http.Request) {
	sel, err := selectorFromQuery(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	identity, err := h.member.Activate(r.Context(), sel)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewUserResponse(identity))
}

func (h *Handler) ActivateAllMembers(w http.ResponseWriter, r *http.Request) {
	activated, err := h.member.ActivateAll(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewUserResponses(activated))
}

func (h *Handler) RejectMember(w http.ResponseWriter, r *http.Request) {
	sel, err := selectorFromQuery(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if err := h.member.Reject(r.Context(), sel); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeDetail(w, "User rejected and deleted successfully")
}

func (h *Handler) RejectAllMembers(w http.ResponseWriter, r *http.Request) {
	if _, err := h.member.RejectAll(r.Context()); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeDetail(w, "All pending users have been rejected and deleted successfully")
}

func (h *Handler) Admins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.member.Admins(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewUserResponses(admins))
}

func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, h.member.Admin)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	sel, err := selectorFromQuery(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	identity, err := h.member.UpdateRole(r.Context(), sel, r.URL.Query().Get("user_role"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewUserResponse(identity))
}

func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	members, err := h.member.Members(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewUserResponses(members))
}

func (h *Handler) Member(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, h.member.Member)
}

func (h *Handler) PendingMembers(w http.ResponseWriter, r *http.Request) {
	pending, err := h.member.Pending(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewUserResponses(pending))
}

func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	sel, err := selectorFromQuery(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if err := h.member.Delete(r.Context(), sel); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeDetail(w, "Member has been deleted")
}

func (h *Handler) DeleteAllMembers(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentityFromContext(r)
	n, err := h.member.DeleteAll(r.Context(), caller.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeDetail(w, "All members have been deleted ("+strconv.FormatInt(n, 10)+")")
}

// ProfilePicture serves the stored JPEG as is.
func (h *Handler) ProfilePicture(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	pic, err := h.member.ProfilePicture(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(pic)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pic); err != nil {
		logger.Log.Debug("profile picture write interrupted", "user_id", id, "error", err)
	}
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, find func(ctx context.Context, sel domain.Selector) (domain.Identity, error)) {
	sel, err := selectorFromQuery(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	identity, err := find(r.Context(), sel)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewUserResponse(identity))
}
