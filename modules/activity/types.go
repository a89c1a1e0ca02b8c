package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Entry is one recorded task event.
type Entry struct {
	TaskID    string    `json:"taskId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ListRequest is the request for the activity feed.
type ListRequest struct {
	Limit int `json:"limit,omitempty"`
}

// ListResponse is the activity feed, newest first.
type ListResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// ActivityPort is how driving adapters read the feed.
type ActivityPort interface {
	ListActivity(ctx context.Context, limit int) (*ListResponse, error)
}

type activityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates an ActivityPort over the activity module's
// service container.
func NewActivityAdapter(container mono.ServiceContainer) ActivityPort {
	if container == nil {
		panic("activity adapter requires non-nil ServiceContainer")
	}
	return &activityAdapter{container: container}
}

func (a *activityAdapter) ListActivity(ctx context.Context, limit int) (*ListResponse, error) {
	req := ListRequest{Limit: limit}
	var resp ListResponse
	err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceList,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	)
	if err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", ServiceList, err)
	}
	return &resp, nil
}
