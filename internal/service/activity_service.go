package service

import (
	"context"
	"fmt"
	"time"

	"buildledger/internal/repository"

	"github.com/google/uuid"
)

type ActivityEntry struct {
	ID         uuid.UUID `json:"id"`
	Action     string    `json:"action"`
	EntityID   string    `json:"entity_id"`
	EntityName string    `json:"entity_name"`
	Details    string    `json:"details"`
	CreatedAt  string    `json:"created_at"`
}

type ActivityService interface {
	ListActivity(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]ActivityEntry, int64, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) ListActivity(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]ActivityEntry, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	logs, total, err := s.repo.List(ctx, tenantID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch activity: %w", err)
	}

	entries := make([]ActivityEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, ActivityEntry{
			ID:         l.ID,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		})
	}
	return entries, total, nil
}
