package service

import (
	"context"
	"fmt"

	"github.com/stuproj/projectshelf/internal/modules/model"
	"github.com/stuproj/projectshelf/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// RecentHistoryLimit is how many entries the dashboard shows.
const RecentHistoryLimit = 5

// EventPublisher is satisfied by queue.Publisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

type HistoryService interface {
	// LogAction persists one audit entry for p. It joins the transaction
	// carried by ctx, if any.
	LogAction(ctx context.Context, action string, p *model.Project) (*model.HistoryLog, error)
	// Announce publishes a committed entry. Failures are only logged.
	Announce(ctx context.Context, l *model.HistoryLog)
	Recent(ctx context.Context, n int) ([]*model.HistoryLog, error)
	List(ctx context.Context) ([]*model.HistoryLog, error)
}

type historyService struct {
	r   repo.HistoryRepo
	pub EventPublisher
	log *zap.Logger
}

// NewHistoryService accepts a nil publisher, which disables Announce.
func NewHistoryService(r repo.HistoryRepo, pub EventPublisher, log *zap.Logger) HistoryService {
	return &historyService{r: r, pub: pub, log: log}
}

func (s *historyService) LogAction(ctx context.Context, action string, p *model.Project) (*model.HistoryLog, error) {
	entry := &model.HistoryLog{
		Action:  action,
		Details: Details(action, p.Name),
		Meta: datatypes.JSONMap{
			"project_id": p.ID,
			"year":       p.Year,
		},
	}
	if err := s.r.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create history log: %w", err)
	}
	return entry, nil
}

func (s *historyService) Announce(ctx context.Context, l *model.HistoryLog) {
	if s.pub == nil || l == nil {
		return
	}
	if err := s.pub.PublishJSON(ctx, "history."+l.Action, l); err != nil {
		s.log.Warn("failed to publish history event", zap.Uint("history_id", l.ID), zap.Error(err))
	}
}

func (s *historyService) Recent(ctx context.Context, n int) ([]*model.HistoryLog, error) {
	if n <= 0 {
		n = RecentHistoryLimit
	}
	return s.r.List(ctx, n)
}

func (s *historyService) List(ctx context.Context) ([]*model.HistoryLog, error) {
	return s.r.List(ctx, 0)
}

// Details renders the human readable text of an audit entry.
func Details(action, projectName string) string {
	switch action {
	case model.ActionCreate:
		return "created project: " + projectName
	case model.ActionDelete:
		return "deleted project: " + projectName
	default:
		return action + " project: " + projectName
	}
}
