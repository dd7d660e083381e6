package repos

import (
  "context"
  "errors"

  "gorm.io/gorm"

  "github.com/r7ala/r7ala-backend/internal/logger"
  "github.com/r7ala/r7ala-backend/internal/types"
)

type ChatRepo interface {
  // CREATE
  Create(ctx context.Context, tx *gorm.DB, chat *types.Chat) (*types.Chat, error)

  // READ
  GetByID(ctx context.Context, tx *gorm.DB, chatID uint) (*types.Chat, error)
  GetByPair(ctx context.Context, tx *gorm.DB, userID, tourGuideID uint) (*types.Chat, error)
  GetByParticipant(ctx context.Context, tx *gorm.DB, userID uint) ([]*types.Chat, error)
}

type chatRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewChatRepo(db *gorm.DB, baseLog *logger.Logger) ChatRepo {
  return &chatRepo{
    db:  db,
    log: baseLog.With("repo", "ChatRepo"),
  }
}

func (cr *chatRepo) Create(ctx context.Context, tx *gorm.DB, chat *types.Chat) (*types.Chat, error) {
  if tx == nil {
    tx = cr.db
  }
  if err := tx.WithContext(ctx).Create(chat).Error; err != nil {
    // Duplicated-key errors are expected under racing create requests for
    // the same pair; callers translate them, so don't log them as failures.
    if !errors.Is(err, gorm.ErrDuplicatedKey) {
      cr.log.Error("failed to create chat", "error", err)
    }
    return nil, err
  }
  return chat, nil
}

// GetByID returns the chat with TourGuide preloaded (the access rule needs
// the guide's backing account), or (nil, nil) when absent.
func (cr *chatRepo) GetByID(ctx context.Context, tx *gorm.DB, chatID uint) (*types.Chat, error) {
  if tx == nil {
    tx = cr.db
  }
  var chat types.Chat
  if err := tx.WithContext(ctx).
    Preload("TourGuide").
    Where("id = ?", chatID).
    First(&chat).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    cr.log.Error("failed to get chat by id", "error", err)
    return nil, err
  }
  return &chat, nil
}

func (cr *chatRepo) GetByPair(ctx context.Context, tx *gorm.DB, userID, tourGuideID uint) (*types.Chat, error) {
  if tx == nil {
    tx = cr.db
  }
  var chat types.Chat
  if err := tx.WithContext(ctx).
    Where("user_id = ? AND tour_guide_id = ?", userID, tourGuideID).
    First(&chat).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    cr.log.Error("failed to get chat by pair", "error", err)
    return nil, err
  }
  return &chat, nil
}

// GetByParticipant returns every chat the user takes part in, directly or as
// the account behind a tour guide, ordered most-recently-active first
// (newest message timestamp, falling back to the chat's creation time; ties
// broken by chat id).
func (cr *chatRepo) GetByParticipant(ctx context.Context, tx *gorm.DB, userID uint) ([]*types.Chat, error) {
  if tx == nil {
    tx = cr.db
  }
  var chats []*types.Chat
  if err := tx.WithContext(ctx).
    Model(&types.Chat{}).
    Joins(`JOIN tour_guide ON tour_guide.id = chat.tour_guide_id`).
    Joins(`LEFT JOIN (SELECT chat_id, MAX(sent_at) AS last_sent_at FROM message GROUP BY chat_id) latest ON latest.chat_id = chat.id`).
    Where("chat.user_id = ? OR tour_guide.user_id = ?", userID, userID).
    Order("COALESCE(latest.last_sent_at, chat.created_at) DESC, chat.id DESC").
    Preload("User").
    Preload("TourGuide.User").
    Preload("Messages").
    Find(&chats).Error; err != nil {
    cr.log.Error("failed to get chats by participant", "error", err)
    return nil, err
  }
  return chats, nil
}
