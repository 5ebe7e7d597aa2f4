package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
)

// Actor identifies the party performing a scheduling operation.
type Actor struct {
	ID   string
	Name string
	Role models.UserRole
}

// CapabilityChecker answers whether an actor may override cycle times.
// Kept abstract so the authorization policy can evolve independently
// of any role-name scheme.
type CapabilityChecker interface {
	HasOverrideCapability(ctx context.Context, actor Actor) (bool, error)
}

// RolePolicyChecker is the default capability policy backed by the
// role→capability map in models.
type RolePolicyChecker struct{}

// HasOverrideCapability applies the default role policy.
func (RolePolicyChecker) HasOverrideCapability(_ context.Context, actor Actor) (bool, error) {
	return models.RoleHasCapability(actor.Role, models.CapabilityOverrideCycleTime), nil
}

// OverrideService gates cycle-time overrides. It decides and
// describes; it never writes storage. Persisting the descriptor and
// the audit entry is the assignment workflow's job.
type OverrideService struct {
	caps   CapabilityChecker
	clock  func() time.Time
	logger *zap.Logger
}

// NewOverrideService creates a service instance.
func NewOverrideService(caps CapabilityChecker, logger *zap.Logger) *OverrideService {
	if caps == nil {
		caps = RolePolicyChecker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverrideService{caps: caps, clock: func() time.Time { return time.Now().UTC() }, logger: logger}
}

// WithClock replaces the timestamp source. Test hook.
func (s *OverrideService) WithClock(clock func() time.Time) *OverrideService {
	s.clock = clock
	return s
}

// Authorize resolves the effective cycle time for a scheduling
// computation. A missing or non-positive request falls back to the
// work order default with no override descriptor. A positive request
// requires the override capability and yields a descriptor the caller
// must persist atomically with the assignment batch.
func (s *OverrideService) Authorize(ctx context.Context, actor Actor, requested *float64, workOrderDefault float64) (models.EffectiveCycleTime, error) {
	if requested == nil || *requested <= 0 {
		return models.EffectiveCycleTime{Seconds: workOrderDefault}, nil
	}

	allowed, err := s.caps.HasOverrideCapability(ctx, actor)
	if err != nil {
		return models.EffectiveCycleTime{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve override capability")
	}
	if !allowed {
		return models.EffectiveCycleTime{}, appErrors.Clone(appErrors.ErrForbidden, "cycle time override requires authorization")
	}

	s.logger.Info("cycle_time_override_authorized",
		zap.String("actor", actor.ID),
		zap.Float64("original", workOrderDefault),
		zap.Float64("override", *requested),
	)

	return models.EffectiveCycleTime{
		Seconds: *requested,
		Override: &models.CycleTimeOverride{
			OriginalSeconds: workOrderDefault,
			NewSeconds:      *requested,
			AppliedBy:       actor.ID,
			AppliedAt:       s.clock(),
		},
	}, nil
}
