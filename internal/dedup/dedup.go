// Package dedup implements the sliding-window guard that keeps one owner from
// receiving the same notification too often on the same channel.
package dedup

import (
	"context"
	"fmt"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// Key identifies one sliding window. Scope is the rule ID for triggered
// notifications and the category for system notifications.
type Key struct {
	OwnerID string
	Scope   string
	Channel domain.Channel
}

// String returns the storage key for k.
func (k Key) String() string {
	return fmt.Sprintf("dedup:%s:%s:%s", k.OwnerID, k.Scope, k.Channel)
}

// KeyFor builds the key for a notification about to be created.
func KeyFor(ownerID string, ruleID *string, category domain.Category, ch domain.Channel) Key {
	scope := "category:" + string(category)
	if ruleID != nil && *ruleID != "" {
		scope = "rule:" + *ruleID
	}
	return Key{OwnerID: ownerID, Scope: scope, Channel: ch}
}

// Guard decides whether another notification may be created for a key.
// Allow records the creation when it returns true. A suppressed call leaves
// the window untouched, so only created notifications count.
type Guard interface {
	Allow(ctx context.Context, key Key) (bool, error)
}
