package testutils

import (
	"context"

	"github.com/srg/hoodctl/internal/device"
	"github.com/stretchr/testify/mock"
)

// MockTransport is a testify mock of device.Transport for call-order assertions.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect(ctx context.Context, peer device.Peer) (device.Session, error) {
	args := m.Called(ctx, peer)
	s, _ := args.Get(0).(device.Session)
	return s, args.Error(1)
}

// MockResolver is a testify mock of device.Resolver.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, address string) (device.Peer, error) {
	args := m.Called(ctx, address)
	p, _ := args.Get(0).(device.Peer)
	return p, args.Error(1)
}

// NewPeer builds a device.Peer for tests.
func NewPeer(name, address string, services ...string) *device.StaticPeer {
	return &device.StaticPeer{PeerName: name, PeerAddress: address, Services: services}
}
