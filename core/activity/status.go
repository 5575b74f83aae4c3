package activity

import "time"

// Status is the derived lifecycle state of a time-windowed activity.
// It is computed fresh from the window and the current instant on every
// read and is never persisted, so every screen agrees on the same inputs.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
)

// ResolveStatus derives the lifecycle state of an activity window at `now`.
//
// Rules, in order:
//   - an inactive activity is closed, whatever the window says;
//   - no window at all means always open;
//   - a window whose start is not before its end never opens (bad data entered
//     by an admin must not grant access);
//   - boundary instants are open: now == start and now == end both count as open.
func ResolveStatus(active bool, startAt, endAt *time.Time, now time.Time) Status {
	if !active {
		return StatusClosed
	}

	switch {
	case startAt == nil && endAt == nil:
		return StatusOpen

	case startAt != nil && endAt != nil:
		if !startAt.Before(*endAt) {
			return StatusClosed
		}
		if now.Before(*startAt) {
			return StatusScheduled
		}
		if now.After(*endAt) {
			return StatusClosed
		}
		return StatusOpen

	case startAt != nil:
		if now.Before(*startAt) {
			return StatusScheduled
		}
		return StatusOpen

	default: // only endAt set
		if now.After(*endAt) {
			return StatusClosed
		}
		return StatusOpen
	}
}
