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

// GroupMappingService manages the rules that translate a provider's
// external group identifiers into local group memberships.
type GroupMappingService struct {
	Store store.Store
}

// CreateGroupMapping validates and stores a new mapping for a provider.
func (s *GroupMappingService) CreateGroupMapping(ctx context.Context, m domain.GroupMapping) (domain.GroupMapping, error) {
	l := slogx.FromContext(ctx)

	if err := s.validateGroupMapping(ctx, m); err != nil {
		return domain.GroupMapping{}, err
	}

	m.ID = idx.New().String()
	if err := s.Store.GroupMappings().CreateGroupMapping(ctx, m); err != nil {
		l.Error("failed to create group mapping", "error", err, "provider_id", m.ProviderID)
		return domain.GroupMapping{}, &PersistenceError{Op: "group mapping create", Err: err}
	}

	l.Info("group mapping created", "mapping_id", m.ID, "provider_id", m.ProviderID)
	return s.Store.GroupMappings().GetGroupMappingByID(ctx, m.ID)
}

// UpdateGroupMapping replaces a mapping's title, external ids and groups.
func (s *GroupMappingService) UpdateGroupMapping(ctx context.Context, m domain.GroupMapping) (domain.GroupMapping, error) {
	l := slogx.FromContext(ctx)

	existing, err := s.Store.GroupMappings().GetGroupMappingByID(ctx, m.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.GroupMapping{}, ErrGroupMappingNotFound
		}
		return domain.GroupMapping{}, err
	}
	m.ProviderID = existing.ProviderID

	if err := s.validateGroupMapping(ctx, m); err != nil {
		return domain.GroupMapping{}, err
	}

	if err := s.Store.GroupMappings().UpdateGroupMapping(ctx, m); err != nil {
		l.Error("failed to update group mapping", "error", err, "mapping_id", m.ID)
		return domain.GroupMapping{}, &PersistenceError{Op: "group mapping update", Err: err}
	}

	l.Info("group mapping updated", "mapping_id", m.ID)
	return s.Store.GroupMappings().GetGroupMappingByID(ctx, m.ID)
}

// ListGroupMappings returns all mappings of one provider.
func (s *GroupMappingService) ListGroupMappings(ctx context.Context, providerID string) ([]domain.GroupMapping, error) {
	if _, err := s.Store.Providers().GetProviderByID(ctx, providerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return s.Store.GroupMappings().ListGroupMappingsByProvider(ctx, providerID)
}

// DeleteGroupMapping removes a mapping.
func (s *GroupMappingService) DeleteGroupMapping(ctx context.Context, id string) error {
	l := slogx.FromContext(ctx)

	if err := s.Store.GroupMappings().DeleteGroupMapping(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrGroupMappingNotFound
		}
		l.Error("failed to delete group mapping", "error", err, "mapping_id", id)
		return &PersistenceError{Op: "group mapping delete", Err: err}
	}

	l.Info("group mapping deleted", "mapping_id", id)
	return nil
}

func (s *GroupMappingService) validateGroupMapping(ctx context.Context, m domain.GroupMapping) error {
	if strings.TrimSpace(m.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if len(m.ExternalGroupIDs) == 0 {
		return &ValidationError{Field: "external_group_ids", Reason: "must not be empty"}
	}
	for _, id := range m.ExternalGroupIDs {
		if strings.Contains(id, ",") {
			return &ValidationError{Field: "external_group_ids", Reason: "ids must not contain commas"}
		}
	}
	if len(m.GroupIDs) == 0 {
		return &ValidationError{Field: "group_ids", Reason: "must not be empty"}
	}

	if _, err := s.Store.Providers().GetProviderByID(ctx, m.ProviderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProviderNotFound
		}
		return err
	}
	for _, groupID := range m.GroupIDs {
		if _, err := s.Store.Groups().GetGroupByID(ctx, groupID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return &ValidationError{Field: "group_ids", Reason: "unknown group " + groupID}
			}
			return err
		}
	}
	return nil
}
