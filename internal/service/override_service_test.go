package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
)

type capabilityStub struct {
	allowed bool
	err     error
	calls   int
}

func (s *capabilityStub) HasOverrideCapability(ctx context.Context, actor Actor) (bool, error) {
	s.calls++
	return s.allowed, s.err
}

func TestOverrideAuthorizeDefaultsWithoutRequest(t *testing.T) {
	caps := &capabilityStub{}
	svc := NewOverrideService(caps, nil)

	effective, err := svc.Authorize(context.Background(), Actor{ID: "op-1"}, nil, 12.5)
	require.NoError(t, err)
	assert.Equal(t, 12.5, effective.Seconds)
	assert.Nil(t, effective.Override)
	// Capability is only consulted when an override is requested.
	assert.Equal(t, 0, caps.calls)

	zero := 0.0
	effective, err = svc.Authorize(context.Background(), Actor{ID: "op-1"}, &zero, 12.5)
	require.NoError(t, err)
	assert.Equal(t, 12.5, effective.Seconds)
	assert.Nil(t, effective.Override)
}

func TestOverrideAuthorizeRequiresCapability(t *testing.T) {
	svc := NewOverrideService(&capabilityStub{allowed: false}, nil)

	requested := 9.0
	_, err := svc.Authorize(context.Background(), Actor{ID: "op-1"}, &requested, 12.0)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}

func TestOverrideAuthorizeDescriptor(t *testing.T) {
	now := time.Date(2024, 2, 10, 14, 0, 0, 0, time.UTC)
	svc := NewOverrideService(&capabilityStub{allowed: true}, nil).
		WithClock(func() time.Time { return now })

	requested := 9.0
	effective, err := svc.Authorize(context.Background(), Actor{ID: "sup-7"}, &requested, 12.0)
	require.NoError(t, err)

	assert.Equal(t, 9.0, effective.Seconds)
	require.NotNil(t, effective.Override)
	assert.Equal(t, 12.0, effective.Override.OriginalSeconds)
	assert.Equal(t, 9.0, effective.Override.NewSeconds)
	assert.Equal(t, "sup-7", effective.Override.AppliedBy)
	assert.Equal(t, now, effective.Override.AppliedAt)
}

func TestRolePolicyChecker(t *testing.T) {
	checker := RolePolicyChecker{}

	allowed, err := checker.HasOverrideCapability(context.Background(), Actor{Role: models.RoleSupervisor})
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = checker.HasOverrideCapability(context.Background(), Actor{Role: models.RoleOperator})
	require.NoError(t, err)
	assert.False(t, allowed)
}
