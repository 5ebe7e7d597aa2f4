package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Change event kinds published after a committed write.
const (
	ChangeAssignmentsCreated  = "assignments.created"
	ChangeAssignmentMoved     = "assignment.moved"
	ChangeAssignmentStatusSet = "assignment.status"
)

// ChangeEvent tells other screens to refresh their view of an
// assignment. Refresh-on-notify only; never a synchronization
// primitive.
type ChangeEvent struct {
	Kind        string    `json:"kind"`
	WorkOrderID string    `json:"work_order_id,omitempty"`
	MachineID   string    `json:"machine_id,omitempty"`
	At          time.Time `json:"at"`
}

// ChangeNotifier pushes change events to observers.
type ChangeNotifier interface {
	Publish(ctx context.Context, event ChangeEvent)
}

// RedisNotifier publishes change events on a Redis pub/sub channel.
// Failures are logged and swallowed: notification is best-effort and
// must never fail a committed workflow.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisNotifier creates a notifier instance.
func NewRedisNotifier(client *redis.Client, channel string, logger *zap.Logger) *RedisNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

// Publish sends the event as JSON.
func (n *RedisNotifier) Publish(ctx context.Context, event ChangeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("encode change event", zap.Error(err))
		return
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		n.logger.Warn("publish change event", zap.String("channel", n.channel), zap.Error(err))
	}
}

// NopNotifier discards events. Used when notification is disabled.
type NopNotifier struct{}

// Publish discards the event.
func (NopNotifier) Publish(context.Context, ChangeEvent) {}
