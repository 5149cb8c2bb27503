package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/orangery/ams/backend/internal/middleware"
	"github.com/orangery/ams/backend/internal/service"
	"github.com/orangery/ams/shared/api"
	"github.com/orangery/ams/shared/domain"
	"github.com/orangery/ams/shared/utils"
)

const tokenTypeBearer = "bearer"

// base64 inflates by 4/3; the extra megabyte covers the rest of the payload.
func (h *Handler) signUpBodyLimit() int64 {
	mb := int64(h.cfg.Public.ProfilePicMaxMB)
	return (mb*4/3 + 1) << 20
}

func (h *Handler) RegisterMember(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.auth.RegisterMember)
}

func (h *Handler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.auth.RegisterAdmin)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, create func(ctx context.Context, data service.SignUp) (string, error)) {
	r.Body = http.MaxBytesReader(w, r.Body, h.signUpBodyLimit())

	var body api.SignUpRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	data, err := toSignUp(body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	accessToken, err := create(r.Context(), data)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.RegisterResponse{AccessToken: accessToken, TokenType: tokenTypeBearer})
}

func toSignUp(body api.SignUpRequest) (service.SignUp, error) {
	dob, err := time.Parse(api.DateLayout, body.Dob)
	if err != nil {
		return service.SignUp{}, badDate("dob")
	}
	dates := make([]domain.EventDateCreationData, 0, len(body.OtherDates))
	for _, d := range body.OtherDates {
		date, err := time.Parse(api.DateLayout, d.Date)
		if err != nil {
			return service.SignUp{}, badDate("other_dates.date")
		}
		dates = append(dates, domain.EventDateCreationData{Label: d.Label, Date: date})
	}
	return service.SignUp{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		PhoneNumber: body.PhoneNumber,
		Username:    body.Username,
		Password:    body.Password,
		Dob:         dob,
		ProfilePic:  body.ProfilePic,
		EventDates:  dates,
	}, nil
}

// Login accepts an OAuth2 password form as well as a JSON body.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body api.LoginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Body is invalid form", http.StatusBadRequest)
			return
		}
		body = api.LoginRequest{Username: r.PostForm.Get("username"), Password: r.PostForm.Get("password")}
		if err := utils.Validate(&body); err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
	} else if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	pair, err := h.auth.Login(r.Context(), domain.Credentials{Username: body.Username, Password: body.Password})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, tokenResponse(pair))
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body api.RefreshRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	pair, err := h.auth.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, tokenResponse(pair))
}

// Me returns the identity behind the bearer token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentityFromContext(r)
	writeJSON(w, api.NewUserResponse(*identity))
}

func tokenResponse(pair domain.TokenPair) api.TokenResponse {
	return api.TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, ExpiresIn: pair.ExpiresIn}
}
