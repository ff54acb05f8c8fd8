package store

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"livepoll/internal/models"
)

// Gorm backs the store with postgres. TranslateError is required so a
// composite-key violation on votes comes back as gorm.ErrDuplicatedKey
// instead of a driver-specific error.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(dsn string) (*Gorm, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.Poll{}, &models.Vote{}); err != nil {
		return nil, err
	}
	return &Gorm{db: db}, nil
}

func (g *Gorm) InsertPoll(ctx context.Context, poll *models.Poll) error {
	err := g.db.WithContext(ctx).Create(poll).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (g *Gorm) UpdatePollStatus(ctx context.Context, id string, status models.PollStatus) error {
	return g.db.WithContext(ctx).
		Model(&models.Poll{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (g *Gorm) FindPoll(ctx context.Context, id string) (*models.Poll, error) {
	var poll models.Poll
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&poll).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

func (g *Gorm) FindActivePolls(ctx context.Context) ([]models.Poll, error) {
	var polls []models.Poll
	err := g.db.WithContext(ctx).
		Where("status = ?", models.PollStatusActive).
		Find(&polls).Error
	return polls, err
}

func (g *Gorm) CountPolls(ctx context.Context) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.Poll{}).Count(&count).Error
	return count, err
}

func (g *Gorm) InsertVote(ctx context.Context, vote *models.Vote) error {
	err := g.db.WithContext(ctx).Create(vote).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (g *Gorm) FindVotes(ctx context.Context, pollId string) ([]models.Vote, error) {
	var votes []models.Vote
	err := g.db.WithContext(ctx).Where("poll_id = ?", pollId).Find(&votes).Error
	return votes, err
}

func (g *Gorm) FindVote(ctx context.Context, pollId, studentId string) (*models.Vote, error) {
	var vote models.Vote
	err := g.db.WithContext(ctx).
		Where("poll_id = ? AND student_id = ?", pollId, studentId).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (g *Gorm) FindEndedPolls(ctx context.Context) ([]models.Poll, error) {
	var polls []models.Poll
	err := g.db.WithContext(ctx).
		Where("status = ?", models.PollStatusEnded).
		Order("created_at DESC, question_number DESC").
		Find(&polls).Error
	return polls, err
}
