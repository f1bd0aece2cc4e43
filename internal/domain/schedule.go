package domain

import "time"

// ScheduleEntry is a persisted "wake me with this key" marker. Its identity
// is the (DueTimeUTC, ActionKey) pair; the behavior bound to the key is
// supplied fresh by each invocation, never persisted.
type ScheduleEntry struct {
	DueTimeUTC time.Time
	ActionKey  string
}
