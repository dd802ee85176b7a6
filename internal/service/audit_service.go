package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"edumanage/internal/auth"
	"edumanage/internal/model"
	"edumanage/internal/repository"
)

type AuditLogResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	FullName  string  `json:"full_name"`
	Action    string  `json:"action"`
	NewData   string  `json:"new_data"`
	Resource  *string `json:"resource"`
	Role      string  `json:"role"`
	CreatedAt string  `json:"created_at"`
}

// AuditService appends an immutable trail entry for every permission-gated
// mutation and serves the audit read endpoint.
type AuditService interface {
	// Record appends one entry on a best-effort basis: failures are logged
	// and swallowed, never affecting the mutation being recorded. Callers
	// must not depend on the returned entry for correctness.
	Record(ctx context.Context, actor *auth.Context, action, resource string, newState interface{}) *model.AuditLog
	List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo   repository.AuditRepository
	logger zerolog.Logger
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository, logger zerolog.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) Record(ctx context.Context, actor *auth.Context, action, resource string, newState interface{}) *model.AuditLog {
	newData, err := json.Marshal(newState)
	if err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("audit payload serialization failed")
		newData = []byte("{}")
	}

	entry := &model.AuditLog{
		Action:  action,
		NewData: string(newData),
	}
	if resource != "" {
		entry.Resource = &resource
	}
	if actor != nil {
		entry.UserID = actor.UserID.String()
		entry.FullName = actor.FullName
		entry.Role = actor.RoleName
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("audit write failed")
		return nil
	}
	return entry
}

func (s *auditService) List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, AuditLogResponse{
			ID:        l.ID.String(),
			UserID:    l.UserID,
			FullName:  l.FullName,
			Action:    l.Action,
			NewData:   l.NewData,
			Resource:  l.Resource,
			Role:      l.Role,
			CreatedAt: l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return res, total, nil
}
