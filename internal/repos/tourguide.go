package repos

import (
  "context"
  "errors"

  "gorm.io/gorm"

  "github.com/r7ala/r7ala-backend/internal/logger"
  "github.com/r7ala/r7ala-backend/internal/types"
)

// TourGuideRepo is the tour-guide directory boundary the chat core consumes.
// GetByID carries both the existence answer (nil means no such guide) and
// the user account backing the guide.
type TourGuideRepo interface {
  // CREATE
  Create(ctx context.Context, tx *gorm.DB, guides []*types.TourGuide) ([]*types.TourGuide, error)

  // READ
  GetByID(ctx context.Context, tx *gorm.DB, guideID uint) (*types.TourGuide, error)
}

type tourGuideRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTourGuideRepo(db *gorm.DB, baseLog *logger.Logger) TourGuideRepo {
  return &tourGuideRepo{
    db:  db,
    log: baseLog.With("repo", "TourGuideRepo"),
  }
}

func (tr *tourGuideRepo) Create(ctx context.Context, tx *gorm.DB, guides []*types.TourGuide) ([]*types.TourGuide, error) {
  if tx == nil {
    tx = tr.db
  }
  if len(guides) == 0 {
    return guides, nil
  }
  if err := tx.WithContext(ctx).Create(&guides).Error; err != nil {
    tr.log.Error("failed to create tour guides", "error", err)
    return nil, err
  }
  return guides, nil
}

// GetByID returns the guide with its backing User preloaded, or (nil, nil)
// when the guide does not exist.
func (tr *tourGuideRepo) GetByID(ctx context.Context, tx *gorm.DB, guideID uint) (*types.TourGuide, error) {
  if tx == nil {
    tx = tr.db
  }
  var guide types.TourGuide
  if err := tx.WithContext(ctx).
    Preload("User").
    Where("id = ?", guideID).
    First(&guide).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    tr.log.Error("failed to get tour guide by id", "error", err)
    return nil, err
  }
  return &guide, nil
}

