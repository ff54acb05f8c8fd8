package models

import "time"

type Option struct {
	// Text 外显 option label shown to students
	Text string `json:"text"`
	// IsCorrect marks the right answer for historical review only,
	// never used for scoring during the live phase
	IsCorrect bool `json:"is_correct"`
}

type Poll struct {
	Id string `json:"id" gorm:"primaryKey"`
	// Question 提问 the question text
	Question string `json:"question"`
	// Options ordered option list, stored as a json column
	Options []Option `json:"options" gorm:"serializer:json"`
	// TimeLimit seconds the poll stays open
	TimeLimit int `json:"time_limit"`
	// Status enum
	//
	// PollStatusWaiting PollStatusActive PollStatusEnded
	Status PollStatus `json:"status"`
	// StartedAt countdown origin, server clock
	StartedAt time.Time `json:"started_at"`
	// QuestionNumber monotonically increasing, 1-based
	QuestionNumber int `json:"question_number"`
	// CreatedAt 创建时间
	CreatedAt time.Time `json:"created_at"`
}
