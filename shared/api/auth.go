package api

// Request DTOs

type EventDateRequest struct {
	Label string `json:"label" validate:"required,max=256"`
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
}

type SignUpRequest struct {
	FirstName   string             `json:"first_name" validate:"required,max=256"`
	LastName    string             `json:"last_name" validate:"required,max=256"`
	PhoneNumber string             `json:"phone_number" validate:"required,max=15"`
	Username    string             `json:"username" validate:"required,max=256"`
	Password    string             `json:"password" validate:"required,max=72"`
	Dob         string             `json:"dob" validate:"required,datetime=2006-01-02"`
	ProfilePic  string             `json:"profile_pic,omitempty"` // base64, optionally as a data URL
	OtherDates  []EventDateRequest `json:"other_dates,omitempty" validate:"omitempty,dive"`
}

// LoginRequest is accepted both as JSON and as an OAuth2 password form.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // minutes
}

type RegisterResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
