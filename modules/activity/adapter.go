package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ActivityPort defines the interface for reading room activity.
type ActivityPort interface {
	RoomActivity(ctx context.Context, room string, limit int) (*RoomActivityResponse, error)
}

type activityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates a new adapter for the activity services.
func NewActivityAdapter(container mono.ServiceContainer) ActivityPort {
	return &activityAdapter{container: container}
}

// RoomActivity retrieves the counters and recent entries of room.
func (a *activityAdapter) RoomActivity(ctx context.Context, room string, limit int) (*RoomActivityResponse, error) {
	req := RoomActivityRequest{Room: room, Limit: limit}
	var resp RoomActivityResponse
	err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceRoomActivity,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	)
	if err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", ServiceRoomActivity, err)
	}
	return &resp, nil
}
