package handshake_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circuitmesh/peerauth/pkg/auth"
	"github.com/circuitmesh/peerauth/pkg/handshake"
	"github.com/circuitmesh/peerauth/pkg/network"
)

func newHandler() (*handshake.Handler, *network.InMemoryRegistry) {
	registry := network.NewInMemoryRegistry()
	manager := auth.NewManager(registry, "node")
	return handshake.New(manager, nil), registry
}

func TestOnAcceptContinuesHandshake(t *testing.T) {
	h, registry := newHandler()
	peerID := registry.Accept("tcp://h:1", nil)

	outcome, result := h.OnAccept(peerID)
	assert.Equal(t, handshake.OutcomeContinue, outcome)
	require.NoError(t, result.Err)
	assert.Equal(t, auth.Connecting, result.State)
}

func TestOnAcceptAuthorizesInproc(t *testing.T) {
	h, registry := newHandler()
	peerID := registry.Accept("inproc://ctl", nil)

	outcome, result := h.OnAccept(peerID)
	assert.Equal(t, handshake.OutcomeAuthorized, outcome)
	assert.Equal(t, auth.Internal, result.State)
}

func TestDoubleAcceptCloses(t *testing.T) {
	h, registry := newHandler()
	peerID := registry.Accept("tcp://h:1", nil)

	_, _ = h.OnAccept(peerID)
	outcome, result := h.OnAccept(peerID)
	assert.Equal(t, handshake.OutcomeClose, outcome)
	assert.ErrorIs(t, result.Err, auth.ErrAlreadyConnecting)
}

func TestOnTrustClaimAuthorizes(t *testing.T) {
	h, registry := newHandler()
	peerID := registry.Accept("tcp://h:1", nil)

	_, _ = h.OnAccept(peerID)
	outcome, result := h.OnTrustClaim(peerID, "verified-id")
	assert.Equal(t, handshake.OutcomeAuthorized, outcome)
	assert.Equal(t, auth.Authorized, result.State)
}

func TestTrustClaimFromUnknownCloses(t *testing.T) {
	h, _ := newHandler()

	outcome, result := h.OnTrustClaim("nobody", "verified-id")
	assert.Equal(t, handshake.OutcomeClose, outcome)
	var invalidOrder *auth.InvalidMessageOrderError
	assert.ErrorAs(t, result.Err, &invalidOrder)
}

func TestRegisterExternalNotifierForwardsStatus(t *testing.T) {
	h, registry := newHandler()
	peerID := registry.Accept("tcp://h:1", nil)

	var gotPeerID string
	var gotStatus auth.PeerStatus
	require.NoError(t, h.RegisterExternalNotifier(func(peerID string, status auth.PeerStatus) error {
		gotPeerID, gotStatus = peerID, status
		return nil
	}))

	_, _ = h.OnAccept(peerID)
	_, _ = h.OnTrustClaim(peerID, "verified-id")

	assert.Equal(t, "verified-id", gotPeerID)
	assert.Equal(t, auth.StatusAuthorized, gotStatus)
}

func TestRegisterExternalNotifierFailureDoesNotAbortTransition(t *testing.T) {
	h, registry := newHandler()
	peerID := registry.Accept("tcp://h:1", nil)

	require.NoError(t, h.RegisterExternalNotifier(func(string, auth.PeerStatus) error {
		return errors.New("downstream push failed")
	}))

	outcome, result := h.OnAccept(peerID)
	require.NoError(t, result.Err)
	assert.Equal(t, handshake.OutcomeContinue, outcome)

	outcome, result = h.OnTrustClaim(peerID, "verified-id")
	require.NoError(t, result.Err)
	assert.Equal(t, handshake.OutcomeAuthorized, outcome)
	assert.True(t, result.State == auth.Authorized)
}

func TestOnRejectClosesAndRemoves(t *testing.T) {
	h, registry := newHandler()
	peerID := registry.Accept("tcp://h:1", nil)
	_, _ = h.OnAccept(peerID)

	outcome, result := h.OnReject(peerID)
	assert.Equal(t, handshake.OutcomeClose, outcome)
	require.NoError(t, result.Err)
	assert.Equal(t, auth.Unauthorized, result.State)
	assert.Empty(t, registry.PeerIDs())
}
