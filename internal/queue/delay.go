package queue

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// DelayTable is a time-indexed holding area for messages whose broker has no
// native delayed delivery.
type DelayTable interface {
	Schedule(ctx context.Context, msg Message, at time.Time) error
	Due(ctx context.Context, now time.Time, limit int) ([]Message, error)
	Remove(ctx context.Context, msg Message) error
}

type delayed struct {
	msg Message
	at  time.Time
}

// MemoryDelayTable keeps delayed messages in process memory, keyed by
// attempt ID so rescheduling an attempt replaces its previous entry.
type MemoryDelayTable struct {
	mu      sync.Mutex
	entries map[string]delayed
}

// NewMemoryDelayTable creates an empty table.
func NewMemoryDelayTable() *MemoryDelayTable {
	return &MemoryDelayTable{entries: make(map[string]delayed)}
}

// Schedule implements DelayTable.
func (t *MemoryDelayTable) Schedule(_ context.Context, msg Message, at time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	msg.raw = nil
	t.entries[msg.AttemptID] = delayed{msg: msg, at: at}
	return nil
}

// Due implements DelayTable. Results are ordered by due time.
func (t *MemoryDelayTable) Due(_ context.Context, now time.Time, limit int) ([]Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	due := make([]delayed, 0)
	for _, d := range t.entries {
		if !d.at.After(now) {
			due = append(due, d)
		}
	}
	slices.SortFunc(due, func(a, b delayed) int { return a.at.Compare(b.at) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	out := make([]Message, len(due))
	for i, d := range due {
		out[i] = d.msg
	}
	return out, nil
}

// Remove implements DelayTable.
func (t *MemoryDelayTable) Remove(_ context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, msg.AttemptID)
	return nil
}

// Len returns the number of scheduled messages.
func (t *MemoryDelayTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// RedisDelayTable stores delayed messages in a sorted set scored by due
// time in milliseconds, shared by every dispatcher instance.
type RedisDelayTable struct {
	client redis.UniversalClient
	key    string
}

// NewRedisDelayTable creates a table backed by the sorted set at key.
func NewRedisDelayTable(client redis.UniversalClient, key string) *RedisDelayTable {
	if key == "" {
		key = "pad:delivery:delayed"
	}
	return &RedisDelayTable{client: client, key: key}
}

// Schedule implements DelayTable.
func (t *RedisDelayTable) Schedule(ctx context.Context, msg Message, at time.Time) error {
	err := t.client.ZAdd(ctx, t.key, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: member(msg),
	}).Err()
	if err != nil {
		return fmt.Errorf("scheduling attempt %s: %w", msg.AttemptID, err)
	}
	return nil
}

// Due implements DelayTable.
func (t *RedisDelayTable) Due(ctx context.Context, now time.Time, limit int) ([]Message, error) {
	members, err := t.client.ZRangeByScore(ctx, t.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", now.UnixMilli()),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("listing due attempts: %w", err)
	}

	out := make([]Message, 0, len(members))
	for _, m := range members {
		msg, ok := parseMember(m)
		if !ok {
			// Unreadable entries would otherwise be returned forever.
			_ = t.client.ZRem(ctx, t.key, m).Err()
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// Remove implements DelayTable.
func (t *RedisDelayTable) Remove(ctx context.Context, msg Message) error {
	if err := t.client.ZRem(ctx, t.key, member(msg)).Err(); err != nil {
		return fmt.Errorf("removing attempt %s: %w", msg.AttemptID, err)
	}
	return nil
}

func member(msg Message) string {
	return strings.Join([]string{msg.AttemptID, msg.NotificationID, string(msg.Channel)}, "|")
}

func parseMember(s string) (Message, bool) {
	parts := strings.SplitN(s, "|", 3)
	if len(parts) != 3 || parts[0] == "" {
		return Message{}, false
	}
	return Message{
		AttemptID:      parts[0],
		NotificationID: parts[1],
		Channel:        domain.Channel(parts[2]),
	}, true
}
