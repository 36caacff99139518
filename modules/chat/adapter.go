package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// StatusPort is the read-only status interface consumed by the gateway. It
// never mutates core state.
type StatusPort interface {
	RoomStatus(ctx context.Context, roomID string) (RoomStatusResponse, error)
	ServerStats(ctx context.Context) (ServerStatsResponse, error)
}

// StatusAdapter implements StatusPort over the service container.
type StatusAdapter struct {
	container mono.ServiceContainer
}

// NewStatusAdapter creates a StatusAdapter.
func NewStatusAdapter(container mono.ServiceContainer) StatusPort {
	if container == nil {
		panic("chat: ServiceContainer is nil")
	}
	return &StatusAdapter{container: container}
}

// RoomStatus queries existence, member count, and creation time of one room.
func (a *StatusAdapter) RoomStatus(ctx context.Context, roomID string) (RoomStatusResponse, error) {
	req := RoomStatusRequest{RoomID: roomID}
	var resp RoomStatusResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceRoomStatus,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return RoomStatusResponse{}, fmt.Errorf("failed to get room status: %w", err)
	}
	return resp, nil
}

// ServerStats queries aggregate room and connection counts.
func (a *StatusAdapter) ServerStats(ctx context.Context) (ServerStatsResponse, error) {
	req := ServerStatsRequest{}
	var resp ServerStatsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceServerStats,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return ServerStatsResponse{}, fmt.Errorf("failed to get server stats: %w", err)
	}
	return resp, nil
}
