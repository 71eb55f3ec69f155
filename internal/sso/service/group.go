package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/aussiebroadwan/ssobridge/internal/sso/store"
	"github.com/aussiebroadwan/ssobridge/pkg/idx"
	"github.com/aussiebroadwan/ssobridge/pkg/slogx"
)

// GroupService manages the local groups that providers and mappings hand
// memberships to.
type GroupService struct {
	Store store.Store
}

// CreateGroup stores a new group.
func (s *GroupService) CreateGroup(ctx context.Context, title string) (domain.Group, error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(title) == "" {
		return domain.Group{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	g := domain.Group{
		ID:    idx.New().String(),
		Title: title,
	}
	if err := s.Store.Groups().CreateGroup(ctx, g); err != nil {
		l.Error("failed to create group", "error", err)
		return domain.Group{}, &PersistenceError{Op: "group create", Err: err}
	}

	l.Info("group created", "group_id", g.ID, "title", title)
	return s.Store.Groups().GetGroupByID(ctx, g.ID)
}

// GetGroup returns a group by id.
func (s *GroupService) GetGroup(ctx context.Context, id string) (domain.Group, error) {
	g, err := s.Store.Groups().GetGroupByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Group{}, ErrGroupNotFound
		}
		return domain.Group{}, err
	}
	return g, nil
}

// ListGroups returns all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	return s.Store.Groups().ListGroups(ctx)
}
