package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		attempts []DeliveryAttempt
		want     NotificationStatus
	}{
		{
			name: "no attempts is failed",
			want: NotificationFailed,
		},
		{
			name: "all succeeded",
			attempts: []DeliveryAttempt{
				{Channel: ChannelEmail, Status: AttemptSucceeded, AttemptNumber: 1},
				{Channel: ChannelPush, Status: AttemptSucceeded, AttemptNumber: 2},
			},
			want: NotificationDelivered,
		},
		{
			name: "all abandoned",
			attempts: []DeliveryAttempt{
				{Channel: ChannelEmail, Status: AttemptAbandoned, AttemptNumber: 3},
				{Channel: ChannelSMS, Status: AttemptAbandoned, AttemptNumber: 1},
			},
			want: NotificationFailed,
		},
		{
			name: "email succeeded and push abandoned",
			attempts: []DeliveryAttempt{
				{Channel: ChannelEmail, Status: AttemptSucceeded, AttemptNumber: 1},
				{Channel: ChannelPush, Status: AttemptAbandoned, AttemptNumber: 3},
			},
			want: NotificationPartiallyDelivered,
		},
		{
			name: "one still retrying",
			attempts: []DeliveryAttempt{
				{Channel: ChannelEmail, Status: AttemptSucceeded, AttemptNumber: 1},
				{Channel: ChannelPush, Status: AttemptPending, AttemptNumber: 1},
			},
			want: NotificationDelivering,
		},
		{
			name: "nothing sent yet",
			attempts: []DeliveryAttempt{
				{Channel: ChannelEmail, Status: AttemptPending},
				{Channel: ChannelPush, Status: AttemptPending},
			},
			want: NotificationQueued,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, AggregateStatus(tt.attempts))
		})
	}
}

func TestReadable(t *testing.T) {
	t.Parallel()

	assert.True(t, Readable(NotificationDelivered))
	assert.True(t, Readable(NotificationPartiallyDelivered))
	assert.True(t, Readable(NotificationRead))
	assert.False(t, Readable(NotificationFailed))
	assert.False(t, Readable(NotificationDelivering))
	assert.False(t, Readable(NotificationQueued))
}

func TestChannelPreferences(t *testing.T) {
	t.Parallel()

	prefs := ChannelPreferences{
		OwnerID: "u1",
		Contacts: []ChannelContact{
			{Channel: ChannelEmail, Address: "a@example.com", Enabled: true},
			{Channel: ChannelPush, Address: "", Enabled: true},
			{Channel: ChannelSMS, Address: "+15550100", Enabled: false},
		},
	}

	assert.Equal(t, []Channel{ChannelEmail}, prefs.Enabled())

	addr, ok := prefs.Address(ChannelEmail)
	assert.True(t, ok)
	assert.Equal(t, "a@example.com", addr)

	_, ok = prefs.Address(ChannelSMS)
	assert.False(t, ok)
}
