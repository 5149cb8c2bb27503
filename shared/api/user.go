package api

import (
	"time"

	"github.com/orangery/ams/shared/domain"
)

const DateLayout = "2006-01-02"

type AddEventDateRequest = EventDateRequest

type DetailResponse struct {
	Detail string `json:"detail"`
}

type EventDateResponse struct {
	Id     domain.EventDateId `json:"id"`
	UserId domain.UserId      `json:"user_id"`
	Label  string             `json:"label"`
	Date   string             `json:"date"`
}

// UserResponse never carries the password hash or picture bytes.
type UserResponse struct {
	Id            domain.UserId       `json:"id"`
	FirstName     string              `json:"first_name"`
	LastName      string              `json:"last_name"`
	PhoneNumber   string              `json:"phone_number"`
	Username      string              `json:"username"`
	Dob           string              `json:"dob,omitempty"`
	Role          domain.Role         `json:"role"`
	Status        domain.Status       `json:"status"`
	HasProfilePic bool                `json:"has_profile_pic"`
	CreatedAt     time.Time           `json:"created_at"`
	OtherDates    []EventDateResponse `json:"other_dates"`
}

func NewEventDateResponse(d domain.EventDate) EventDateResponse {
	return EventDateResponse{Id: d.Id, UserId: d.UserId, Label: d.Label, Date: d.Date.Format(DateLayout)}
}

func NewEventDateResponses(dates []domain.EventDate) []EventDateResponse {
	out := make([]EventDateResponse, 0, len(dates))
	for _, d := range dates {
		out = append(out, NewEventDateResponse(d))
	}
	return out
}

func NewUserResponse(identity domain.Identity) UserResponse {
	resp := UserResponse{
		Id:            identity.Id,
		FirstName:     identity.FirstName,
		LastName:      identity.LastName,
		PhoneNumber:   identity.PhoneNumber,
		Username:      identity.Username,
		Role:          identity.Role,
		Status:        identity.Status,
		HasProfilePic: identity.HasPic,
		CreatedAt:     identity.CreatedAt,
		OtherDates:    NewEventDateResponses(identity.EventDates),
	}
	if !identity.Dob.IsZero() {
		resp.Dob = identity.Dob.Format(DateLayout)
	}
	return resp
}

func NewUserResponses(identities []domain.Identity) []UserResponse {
	out := make([]UserResponse, 0, len(identities))
	for _, identity := range identities {
		out = append(out, NewUserResponse(identity))
	}
	return out
}
