package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedJob string

func (n namedJob) Name() string              { return string(n) }
func (n namedJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	registry := NewRegistry(nil, namedJob("rate-sync"))
	require.NoError(t, registry.Register(namedJob("rate-history-retention")))
	require.NoError(t, registry.Register(nil))

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "rate-sync", jobs[0].Name())
	assert.Equal(t, "rate-history-retention", jobs[1].Name())

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0])
	assert.Equal(t, 2, registry.Len())
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	registry := NewRegistry(namedJob("rate-sync"))
	err := registry.Register(namedJob("rate-sync"))
	require.Error(t, err)
	assert.Equal(t, 1, registry.Len())

	assert.Panics(t, func() { NewRegistry(namedJob("a"), namedJob("a")) })
}
