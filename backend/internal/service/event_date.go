package service

import (
	"context"
	"strings"

	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
)

type EventDateService interface {
	All(ctx context.Context) ([]domain.EventDate, error)
	ForUser(ctx context.Context, userId domain.UserId) ([]domain.EventDate, error)
	Add(ctx context.Context, userId domain.UserId, data domain.EventDateCreationData) (domain.EventDate, error)
}

type EventDateStorage interface {
	EventDates(ctx context.Context) ([]domain.EventDate, error)
	EventDatesForUser(ctx context.Context, userId domain.UserId) ([]domain.EventDate, error)
	SaveEventDate(ctx context.Context, userId domain.UserId, data domain.EventDateCreationData) (domain.EventDateId, error)
}

type EventDate struct {
	storage EventDateStorage
}

func NewEventDate(storage EventDateStorage) *EventDate {
	return &EventDate{storage: storage}
}

func (e *EventDate) All(ctx context.Context) ([]domain.EventDate, error) {
	dates, err := e.storage.EventDates(ctx)
	if err != nil {
		return nil, err
	}
	if dates == nil {
		dates = []domain.EventDate{}
	}
	return dates, nil
}

func (e *EventDate) ForUser(ctx context.Context, userId domain.UserId) ([]domain.EventDate, error) {
	if userId <= 0 {
		return nil, internal_errors.NotFound("Enter a User ID")
	}
	dates, err := e.storage.EventDatesForUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, internal_errors.NotFound("No event(s) on this date for this User ID")
	}
	return dates, nil
}

func (e *EventDate) Add(ctx context.Context, userId domain.UserId, data domain.EventDateCreationData) (domain.EventDate, error) {
	data.Label = strings.TrimSpace(data.Label)
	if data.Label == "" {
		return domain.EventDate{}, internal_errors.BadRequest("Label is required")
	}
	id, err := e.storage.SaveEventDate(ctx, userId, data)
	if err != nil {
		return domain.EventDate{}, err
	}
	return domain.EventDate{Id: id, UserId: userId, Label: data.Label, Date: data.Date}, nil
}
