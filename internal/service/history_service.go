package service

import (
	"context"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
)

// HistoryService exposes the purchase projection to users. Records are only
// ever written inside the order transaction.
type HistoryService struct {
	histories repository.HistoryRepository
}

func NewHistoryService(histories repository.HistoryRepository) *HistoryService {
	return &HistoryService{histories: histories}
}

// FindByUser returns the user's purchase records, newest first.
func (s *HistoryService) FindByUser(ctx context.Context, userID string) ([]entity.History, error) {
	return s.histories.FindByUser(ctx, userID)
}
