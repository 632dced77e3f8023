package services

import (
	"context"

	"github.com/Dosada05/tournament-accommodation/models"
)

// EventPublisher получает события заявок после коммита перехода.
type EventPublisher interface {
	Publish(ctx context.Context, event models.AccommodationEvent) error
}

// MultiPublisher рассылает событие всем издателям и возвращает первую ошибку.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, event models.AccommodationEvent) error {
	var firstErr error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
