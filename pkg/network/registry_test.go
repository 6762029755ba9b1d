package network_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circuitmesh/peerauth/pkg/network"
)

type fakeConn struct {
	closed bool
	err    error
}

func (c *fakeConn) Close() error {
	c.closed = true
	return c.err
}

func TestAcceptAssignsUniqueIdentifiers(t *testing.T) {
	r := network.NewInMemoryRegistry()
	a := r.Accept("tcp://a", nil)
	b := r.Accept("tcp://b", nil)
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
	assert.NotEmpty(t, b)
}

func TestGetPeerEndpoint(t *testing.T) {
	r := network.NewInMemoryRegistry()
	id := r.Accept("inproc://x", nil)

	endpoint, ok := r.GetPeerEndpoint(id)
	require.True(t, ok)
	assert.Equal(t, "inproc://x", endpoint)

	_, ok = r.GetPeerEndpoint("missing")
	assert.False(t, ok)
}

func TestUpdatePeerIDRenamesAtomically(t *testing.T) {
	r := network.NewInMemoryRegistry()
	r.AddConnection("old", "tcp://h", nil)

	require.NoError(t, r.UpdatePeerID("old", "new"))

	_, ok := r.GetPeerEndpoint("old")
	assert.False(t, ok)
	endpoint, ok := r.GetPeerEndpoint("new")
	require.True(t, ok)
	assert.Equal(t, "tcp://h", endpoint)
}

func TestUpdatePeerIDUnknownFails(t *testing.T) {
	r := network.NewInMemoryRegistry()
	err := r.UpdatePeerID("nope", "new")
	var unknown *network.UnknownPeerError
	assert.ErrorAs(t, err, &unknown)
}

func TestRemoveConnectionClosesTheConnection(t *testing.T) {
	r := network.NewInMemoryRegistry()
	conn := &fakeConn{}
	r.AddConnection("id", "tcp://h", conn)

	require.NoError(t, r.RemoveConnection("id"))
	assert.True(t, conn.closed)

	_, ok := r.GetPeerEndpoint("id")
	assert.False(t, ok)
}

func TestRemoveConnectionSurfacesCloseError(t *testing.T) {
	r := network.NewInMemoryRegistry()
	boom := errors.New("boom")
	r.AddConnection("id", "tcp://h", &fakeConn{err: boom})

	err := r.RemoveConnection("id")
	assert.ErrorIs(t, err, boom)
}

func TestDisconnectFansOutToAllListeners(t *testing.T) {
	r := network.NewInMemoryRegistry()
	r.AddConnection("id", "tcp://h", nil)

	var gotA, gotB string
	r.AddDisconnectListener(func(id string) { gotA = id })
	r.AddDisconnectListener(func(id string) { gotB = id })

	r.Disconnect("id")

	assert.Equal(t, "id", gotA)
	assert.Equal(t, "id", gotB)
	_, ok := r.GetPeerEndpoint("id")
	assert.False(t, ok)
}

func TestPeerIDsSnapshot(t *testing.T) {
	r := network.NewInMemoryRegistry()
	r.AddConnection("a", "tcp://a", nil)
	r.AddConnection("b", "tcp://b", nil)
	assert.ElementsMatch(t, []string{"a", "b"}, r.PeerIDs())
}

func TestIsInproc(t *testing.T) {
	assert.True(t, network.IsInproc("inproc://foo"))
	assert.False(t, network.IsInproc("tcp://h:1"))
}

var _ io.Closer = (*fakeConn)(nil)
