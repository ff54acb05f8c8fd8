package models

import "fmt"

type PollStatus uint8

const (
	// PollStatusWaiting is reserved; the lifecycle never produces it.
	PollStatusWaiting PollStatus = iota
	PollStatusActive
	PollStatusEnded
)

func (s PollStatus) String() string {
	switch s {
	case PollStatusWaiting:
		return "waiting"
	case PollStatusActive:
		return "active"
	case PollStatusEnded:
		return "ended"
	}
	return "unknown"
}

func (s PollStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *PollStatus) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"waiting"`:
		*s = PollStatusWaiting
	case `"active"`:
		*s = PollStatusActive
	case `"ended"`:
		*s = PollStatusEnded
	default:
		return fmt.Errorf("unknown poll status %s", data)
	}
	return nil
}
