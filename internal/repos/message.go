package repos

import (
  "context"
  "errors"

  "gorm.io/gorm"

  "github.com/r7ala/r7ala-backend/internal/logger"
  "github.com/r7ala/r7ala-backend/internal/types"
)

type MessageRepo interface {
  // CREATE
  Create(ctx context.Context, tx *gorm.DB, msgs []*types.Message) ([]*types.Message, error)

  // READ
  GetByChatID(ctx context.Context, tx *gorm.DB, chatID uint) ([]*types.Message, error)
  GetByID(ctx context.Context, tx *gorm.DB, chatID, messageID uint) (*types.Message, error)

  // UPDATE
  MarkIncomingRead(ctx context.Context, tx *gorm.DB, chatID, readerID uint) (int64, error)

  // DELETE
  DeleteByID(ctx context.Context, tx *gorm.DB, messageID uint) error
}

type messageRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
  return &messageRepo{
    db:  db,
    log: baseLog.With("repo", "MessageRepo"),
  }
}

func (mr *messageRepo) Create(ctx context.Context, tx *gorm.DB, msgs []*types.Message) ([]*types.Message, error) {
  if tx == nil {
    tx = mr.db
  }
  if len(msgs) == 0 {
    return msgs, nil
  }
  if err := tx.WithContext(ctx).Create(&msgs).Error; err != nil {
    mr.log.Error("failed to create messages", "error", err)
    return nil, err
  }
  return msgs, nil
}

func (mr *messageRepo) GetByChatID(ctx context.Context, tx *gorm.DB, chatID uint) ([]*types.Message, error) {
  if tx == nil {
    tx = mr.db
  }
  var msgs []*types.Message
  if err := tx.WithContext(ctx).
    Preload("Sender").
    Where("chat_id = ?", chatID).
    Order("sent_at ASC, id ASC").
    Find(&msgs).Error; err != nil {
    mr.log.Error("failed to get messages by chat id", "error", err)
    return nil, err
  }
  return msgs, nil
}

// GetByID only matches messages belonging to chatID; (nil, nil) covers both
// a missing message and one that lives in another chat.
func (mr *messageRepo) GetByID(ctx context.Context, tx *gorm.DB, chatID, messageID uint) (*types.Message, error) {
  if tx == nil {
    tx = mr.db
  }
  var msg types.Message
  if err := tx.WithContext(ctx).
    Where("id = ? AND chat_id = ?", messageID, chatID).
    First(&msg).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    mr.log.Error("failed to get message by id", "error", err)
    return nil, err
  }
  return &msg, nil
}

// MarkIncomingRead flips every unread message in the chat that was not sent
// by readerID, in one batch UPDATE. Returns how many rows flipped.
func (mr *messageRepo) MarkIncomingRead(ctx context.Context, tx *gorm.DB, chatID, readerID uint) (int64, error) {
  if tx == nil {
    tx = mr.db
  }
  res := tx.WithContext(ctx).
    Model(&types.Message{}).
    Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chatID, readerID, false).
    Update("is_read", true)
  if res.Error != nil {
    mr.log.Error("failed to mark incoming messages read", "error", res.Error)
    return 0, res.Error
  }
  return res.RowsAffected, nil
}

func (mr *messageRepo) DeleteByID(ctx context.Context, tx *gorm.DB, messageID uint) error {
  if tx == nil {
    tx = mr.db
  }
  if err := tx.WithContext(ctx).
    Where("id = ?", messageID).
    Delete(&types.Message{}).Error; err != nil {
    mr.log.Error("failed to delete message", "error", err)
    return err
  }
  return nil
}
