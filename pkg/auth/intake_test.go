package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisconnectIntakeDrainIsNonBlocking(t *testing.T) {
	intake := newDisconnectIntake(4, 16)
	assert.Empty(t, intake.drain())
}

func TestDisconnectIntakeDedupesWithinASingleDrain(t *testing.T) {
	intake := newDisconnectIntake(4, 16)

	require.True(t, intake.notify("peer-1"))
	require.True(t, intake.notify("peer-1"))
	require.True(t, intake.notify("peer-2"))

	got := intake.drain()
	assert.ElementsMatch(t, []string{"peer-1", "peer-2"}, got)
}

func TestDisconnectIntakeDoesNotDedupeAcrossDrains(t *testing.T) {
	intake := newDisconnectIntake(4, 16)

	require.True(t, intake.notify("peer-1"))
	assert.Equal(t, []string{"peer-1"}, intake.drain())

	// A later, separate drain must still see a fresh notification for an
	// identifier a previous drain already delivered: it may have been
	// reused and disconnected again.
	require.True(t, intake.notify("peer-1"))
	assert.Equal(t, []string{"peer-1"}, intake.drain())
}

func TestDisconnectIntakeForgetAllowsReuse(t *testing.T) {
	intake := newDisconnectIntake(4, 16)

	require.True(t, intake.notify("peer-1"))
	assert.Equal(t, []string{"peer-1"}, intake.drain())

	intake.forget("peer-1")

	require.True(t, intake.notify("peer-1"))
	assert.Equal(t, []string{"peer-1"}, intake.drain())
}

func TestDisconnectIntakeFullChannelDropsNotification(t *testing.T) {
	intake := newDisconnectIntake(1, 16)

	require.True(t, intake.notify("peer-1"))
	assert.False(t, intake.notify("peer-2"))
}
