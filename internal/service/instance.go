package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	"github.com/shelflineapp/shelfline-server/internal/id"
	"github.com/shelflineapp/shelfline-server/internal/store"
)

// Instance key names in the key/value store.
const (
	instanceKeyID        = "instance.id"
	instanceKeyName      = "instance.name"
	instanceKeyRemoteURL = "instance.remote_url"
)

// InstanceService manages the server's own identity: a stable instance ID
// and display name generated on first boot and persisted across restarts.
type InstanceService struct {
	store  store.Store
	logger *slog.Logger
}

// NewInstanceService creates a new instance service.
func NewInstanceService(store store.Store, logger *slog.Logger) *InstanceService {
	return &InstanceService{
		store:  store,
		logger: logger,
	}
}

// GetInstance returns the persisted instance identity, creating it on
// first call.
func (s *InstanceService) GetInstance(ctx context.Context) (*domain.Instance, error) {
	instanceID, err := s.store.GetInstanceKey(ctx, instanceKeyID)
	if errors.Is(err, store.ErrNotFound) {
		return s.initInstance(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("get instance id: %w", err)
	}

	name, err := s.store.GetInstanceKey(ctx, instanceKeyName)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get instance name: %w", err)
	}

	remoteURL, err := s.store.GetInstanceKey(ctx, instanceKeyRemoteURL)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get instance remote url: %w", err)
	}

	return &domain.Instance{
		ID:        instanceID,
		Name:      name,
		RemoteURL: remoteURL,
	}, nil
}

// SetName updates the instance display name.
func (s *InstanceService) SetName(ctx context.Context, name string) error {
	return s.store.SetInstanceKey(ctx, instanceKeyName, name)
}

// SetRemoteURL updates the externally reachable URL advertised over mDNS.
func (s *InstanceService) SetRemoteURL(ctx context.Context, url string) error {
	return s.store.SetInstanceKey(ctx, instanceKeyRemoteURL, url)
}

// IsSetupRequired reports whether the server still needs its first user.
func (s *InstanceService) IsSetupRequired(ctx context.Context) (bool, error) {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count == 0, nil
}

func (s *InstanceService) initInstance(ctx context.Context) (*domain.Instance, error) {
	instanceID, err := id.Generate("srv")
	if err != nil {
		return nil, fmt.Errorf("generate instance id: %w", err)
	}

	instance := &domain.Instance{
		ID:   instanceID,
		Name: "Shelfline",
	}

	if err := s.store.SetInstanceKey(ctx, instanceKeyID, instance.ID); err != nil {
		return nil, fmt.Errorf("persist instance id: %w", err)
	}
	if err := s.store.SetInstanceKey(ctx, instanceKeyName, instance.Name); err != nil {
		return nil, fmt.Errorf("persist instance name: %w", err)
	}

	s.logger.Info("initialized server instance", "instance_id", instance.ID)

	return instance, nil
}
