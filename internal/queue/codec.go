package queue

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// Encode serializes msg as a protobuf Struct.
func Encode(msg Message) ([]byte, error) {
	if msg.AttemptID == "" {
		return nil, errors.New("encoding queue message: attempt id is required")
	}

	enqueued := msg.EnqueuedAt
	if enqueued.IsZero() {
		enqueued = time.Now()
	}

	s, err := structpb.NewStruct(map[string]any{
		"attempt_id":      msg.AttemptID,
		"notification_id": msg.NotificationID,
		"channel":         string(msg.Channel),
		"enqueued_at":     enqueued.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("building queue message: %w", err)
	}

	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling queue message: %w", err)
	}
	return b, nil
}

// Decode parses a payload written by Encode.
func Decode(b []byte) (Message, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return Message{}, fmt.Errorf("unmarshaling queue message: %w", err)
	}

	fields := s.GetFields()
	msg := Message{
		AttemptID:      fields["attempt_id"].GetStringValue(),
		NotificationID: fields["notification_id"].GetStringValue(),
		Channel:        domain.Channel(fields["channel"].GetStringValue()),
	}
	if msg.AttemptID == "" {
		return Message{}, errors.New("decoding queue message: missing attempt_id")
	}

	if ts := fields["enqueued_at"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return Message{}, fmt.Errorf("decoding queue message enqueued_at: %w", err)
		}
		msg.EnqueuedAt = t
	}
	return msg, nil
}
