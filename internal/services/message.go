package services

import (
  "context"
  "errors"
  "strings"
  "time"
  "unicode/utf8"

  "gorm.io/gorm"

  "github.com/r7ala/r7ala-backend/internal/apperr"
  "github.com/r7ala/r7ala-backend/internal/logger"
  "github.com/r7ala/r7ala-backend/internal/repos"
  "github.com/r7ala/r7ala-backend/internal/requestdata"
  "github.com/r7ala/r7ala-backend/internal/types"
)

const MaxMessageContentLength = 1000

// Push event names delivered to the recipient's user group.
const (
  EventMessageCreated = "message-created"
  EventMessageDeleted = "message-deleted"
)

// Notifier is the delivery port the engine pushes through. Implementations
// are best-effort: a push that reaches nobody is not an error, and a failing
// push must never surface to the caller.
type Notifier interface {
  PushToUser(ctx context.Context, userID uint, event string, payload interface{})
}

type MessageService interface {
  SendMessage(ctx context.Context, chatID uint, content string) (*types.MessageRecord, error)
  ListMessages(ctx context.Context, chatID uint) ([]*types.MessageRecord, error)
  DeleteMessage(ctx context.Context, chatID, messageID uint) error
}

type messageService struct {
  db            *gorm.DB
  log           *logger.Logger
  chatRepo      repos.ChatRepo
  messageRepo   repos.MessageRepo
  userRepo      repos.UserRepo
  notifier      Notifier
}

func NewMessageService(
  db            *gorm.DB,
  log           *logger.Logger,
  chatRepo      repos.ChatRepo,
  messageRepo   repos.MessageRepo,
  userRepo      repos.UserRepo,
  notifier      Notifier,
) MessageService {
  serviceLog := log.With("service", "MessageService")
  return &messageService{
    db:          db,
    log:         serviceLog,
    chatRepo:    chatRepo,
    messageRepo: messageRepo,
    userRepo:    userRepo,
    notifier:    notifier,
  }
}

func (ms *messageService) SendMessage(ctx context.Context, chatID uint, content string) (*types.MessageRecord, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == 0 {
    return nil, apperr.Unauthorized("Not authenticated.")
  }
  if strings.TrimSpace(content) == "" {
    return nil, apperr.Validation("Message content is required.")
  }
  if utf8.RuneCountInString(content) > MaxMessageContentLength {
    return nil, apperr.Validation("Message content must be at most 1000 characters.")
  }

  var chat *types.Chat
  var msg *types.Message
  var sender *types.User
  err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var tErr error
    chat, tErr = ms.chatRepo.GetByID(ctx, tx, chatID)
    if tErr != nil {
      return apperr.Internal("Failed to look up chat.", tErr)
    }
    if chat == nil {
      return apperr.NotFound("Chat not found.")
    }
    if !hasAccessToChat(chat, rd.UserID) {
      return apperr.Forbidden("You do not have access to this chat.")
    }
    msg = &types.Message{
      ChatID:   chatID,
      SenderID: rd.UserID,
      Content:  content,
      SentAt:   time.Now().UTC(),
      IsRead:   false,
    }
    if _, cErr := ms.messageRepo.Create(ctx, tx, []*types.Message{msg}); cErr != nil {
      return apperr.Internal("Failed to send message.", cErr)
    }
    senders, sErr := ms.userRepo.GetByIDs(ctx, tx, []uint{rd.UserID})
    if sErr != nil {
      return apperr.Internal("Failed to load sender.", sErr)
    }
    if len(senders) > 0 {
      sender = senders[0]
    }
    return nil
  })
  if err != nil {
    return nil, asAppError(err, "Failed to send message.")
  }

  record := recordFromMessage(msg, sender)
  // Delivery is one-directional: only the other participant gets a push,
  // the sender already holds the record in the synchronous response.
  ms.notifier.PushToUser(ctx, otherParticipant(chat, rd.UserID), EventMessageCreated, record)
  return record, nil
}

func (ms *messageService) ListMessages(ctx context.Context, chatID uint) ([]*types.MessageRecord, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == 0 {
    return nil, apperr.Unauthorized("Not authenticated.")
  }

  var msgs []*types.Message
  err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    chat, tErr := ms.chatRepo.GetByID(ctx, tx, chatID)
    if tErr != nil {
      return apperr.Internal("Failed to look up chat.", tErr)
    }
    if chat == nil {
      return apperr.NotFound("Chat not found.")
    }
    if !hasAccessToChat(chat, rd.UserID) {
      return apperr.Forbidden("You do not have access to this chat.")
    }
    var lErr error
    msgs, lErr = ms.messageRepo.GetByChatID(ctx, tx, chatID)
    if lErr != nil {
      return apperr.Internal("Failed to load messages.", lErr)
    }
    // Opening the thread marks incoming messages as seen. The snapshot
    // loaded above still shows them unread; the next read observes the
    // flipped state.
    if _, mErr := ms.messageRepo.MarkIncomingRead(ctx, tx, chatID, rd.UserID); mErr != nil {
      return apperr.Internal("Failed to mark messages as read.", mErr)
    }
    return nil
  })
  if err != nil {
    return nil, asAppError(err, "Failed to load messages.")
  }

  records := make([]*types.MessageRecord, 0, len(msgs))
  for _, m := range msgs {
    records = append(records, recordFromMessage(m, m.Sender))
  }
  return records, nil
}

func (ms *messageService) DeleteMessage(ctx context.Context, chatID, messageID uint) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == 0 {
    return apperr.Unauthorized("Not authenticated.")
  }

  var chat *types.Chat
  err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var tErr error
    chat, tErr = ms.chatRepo.GetByID(ctx, tx, chatID)
    if tErr != nil {
      return apperr.Internal("Failed to look up chat.", tErr)
    }
    if chat == nil {
      return apperr.NotFound("Chat not found.")
    }
    if !hasAccessToChat(chat, rd.UserID) {
      return apperr.Forbidden("You do not have access to this chat.")
    }
    msg, mErr := ms.messageRepo.GetByID(ctx, tx, chatID, messageID)
    if mErr != nil {
      return apperr.Internal("Failed to look up message.", mErr)
    }
    if msg == nil {
      return apperr.NotFound("Message not found.")
    }
    if msg.SenderID != rd.UserID {
      return apperr.Forbidden("You can only delete your own messages.")
    }
    if dErr := ms.messageRepo.DeleteByID(ctx, tx, messageID); dErr != nil {
      return apperr.Internal("Failed to delete message.", dErr)
    }
    return nil
  })
  if err != nil {
    return asAppError(err, "Failed to delete message.")
  }

  ms.notifier.PushToUser(ctx, otherParticipant(chat, rd.UserID), EventMessageDeleted, &types.MessageDeletedEvent{
    MessageID: messageID,
    ChatID:    chatID,
  })
  return nil
}

// hasAccessToChat is the shared access rule: the direct user or the account
// backing the tour guide. Evaluated fresh on every operation.
func hasAccessToChat(chat *types.Chat, userID uint) bool {
  if chat.UserID == userID {
    return true
  }
  return chat.TourGuide != nil && chat.TourGuide.UserID == userID
}

func otherParticipant(chat *types.Chat, senderID uint) uint {
  if chat.UserID == senderID && chat.TourGuide != nil {
    return chat.TourGuide.UserID
  }
  return chat.UserID
}

func recordFromMessage(m *types.Message, sender *types.User) *types.MessageRecord {
  record := &types.MessageRecord{
    ID:       m.ID,
    ChatID:   m.ChatID,
    SenderID: m.SenderID,
    Content:  m.Content,
    SentAt:   m.SentAt,
    IsRead:   m.IsRead,
  }
  if sender != nil {
    record.SenderName = sender.FirstName
  }
  return record
}

// asAppError passes typed errors through and wraps anything else (a failed
// commit, a store outage) as Internal.
func asAppError(err error, msg string) error {
  var ae *apperr.Error
  if errors.As(err, &ae) {
    return ae
  }
  return apperr.Internal(msg, err)
}
