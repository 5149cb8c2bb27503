package domain

type (
	UserId      = int64
	EventDateId = int64
	Username    = string
	Password    = string
	Label       = string
	MsgText     = string
)
