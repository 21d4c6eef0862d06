package domain

// AggregateStatus derives a notification's overall status from its attempts.
// Once every attempt is terminal the result is Delivered when all succeeded,
// Failed when all were abandoned, and PartiallyDelivered otherwise. A
// notification with no attempts is Failed.
func AggregateStatus(attempts []DeliveryAttempt) NotificationStatus {
	if len(attempts) == 0 {
		return NotificationFailed
	}

	var succeeded, abandoned, started int
	for i := range attempts {
		a := &attempts[i]
		switch a.Status {
		case AttemptSucceeded:
			succeeded++
		case AttemptAbandoned:
			abandoned++
		}
		if a.Status == AttemptInFlight || a.AttemptNumber > 0 {
			started++
		}
	}

	switch {
	case succeeded == len(attempts):
		return NotificationDelivered
	case abandoned == len(attempts):
		return NotificationFailed
	case succeeded+abandoned == len(attempts):
		return NotificationPartiallyDelivered
	case started > 0:
		return NotificationDelivering
	default:
		return NotificationQueued
	}
}

// Readable reports whether a notification in status s may be marked read.
func Readable(s NotificationStatus) bool {
	return s == NotificationDelivered || s == NotificationPartiallyDelivered || s == NotificationRead
}
