package models

import "time"

type Vote struct {
	// PollId weak reference to the poll, lookup only
	PollId string `json:"poll_id" gorm:"primaryKey"`
	// StudentId client-generated opaque identifier, trusted as-is
	StudentId string `json:"student_id" gorm:"primaryKey"`
	// OptionIndex the chosen option, index into Poll.Options
	OptionIndex int `json:"option_index"`
	// SubmittedAt 提交时间
	SubmittedAt time.Time `json:"submitted_at"`
}
