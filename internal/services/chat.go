package services

import (
  "context"
  "errors"
  "time"

  "gorm.io/gorm"

  "github.com/r7ala/r7ala-backend/internal/apperr"
  "github.com/r7ala/r7ala-backend/internal/logger"
  "github.com/r7ala/r7ala-backend/internal/repos"
  "github.com/r7ala/r7ala-backend/internal/requestdata"
  "github.com/r7ala/r7ala-backend/internal/types"
)

// ConversationService creates chat threads between the requester and a tour
// guide and computes the list view. One thread per (user, guide) pair.
type ConversationService interface {
  CreateChat(ctx context.Context, tourGuideID uint) (*types.ChatSummary, error)
  ListChats(ctx context.Context) ([]*types.ChatSummary, error)
}

type conversationService struct {
  db              *gorm.DB
  log             *logger.Logger
  chatRepo        repos.ChatRepo
  tourGuideRepo   repos.TourGuideRepo
  userRepo        repos.UserRepo
}

func NewConversationService(
  db              *gorm.DB,
  log             *logger.Logger,
  chatRepo        repos.ChatRepo,
  tourGuideRepo   repos.TourGuideRepo,
  userRepo        repos.UserRepo,
) ConversationService {
  serviceLog := log.With("service", "ConversationService")
  return &conversationService{
    db:            db,
    log:           serviceLog,
    chatRepo:      chatRepo,
    tourGuideRepo: tourGuideRepo,
    userRepo:      userRepo,
  }
}

func (cs *conversationService) CreateChat(ctx context.Context, tourGuideID uint) (*types.ChatSummary, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == 0 {
    return nil, apperr.Unauthorized("Not authenticated.")
  }

  var chat *types.Chat
  var guide *types.TourGuide
  err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var tErr error
    guide, tErr = cs.tourGuideRepo.GetByID(ctx, tx, tourGuideID)
    if tErr != nil {
      return apperr.Internal("Failed to look up tour guide.", tErr)
    }
    if guide == nil {
      return apperr.NotFound("Tour guide not found.")
    }
    if guide.UserID == rd.UserID {
      return apperr.Validation("Cannot create a chat with yourself.")
    }
    existing, eErr := cs.chatRepo.GetByPair(ctx, tx, rd.UserID, tourGuideID)
    if eErr != nil {
      return apperr.Internal("Failed to check for an existing chat.", eErr)
    }
    if existing != nil {
      return apperr.Conflict("Chat already exists.", existing.ID)
    }
    chat = &types.Chat{
      UserID:      rd.UserID,
      TourGuideID: tourGuideID,
      CreatedAt:   time.Now().UTC(),
    }
    if _, cErr := cs.chatRepo.Create(ctx, tx, chat); cErr != nil {
      return cErr
    }
    return nil
  })
  if err != nil {
    // Two racing creates for the same pair can both pass the pre-check; the
    // unique index rejects the loser and we answer it the same way as the
    // pre-check would have, existing chat id included.
    if errors.Is(err, gorm.ErrDuplicatedKey) {
      existing, eErr := cs.chatRepo.GetByPair(ctx, nil, rd.UserID, tourGuideID)
      if eErr == nil && existing != nil {
        return nil, apperr.Conflict("Chat already exists.", existing.ID)
      }
      return nil, apperr.Conflict("Chat already exists.", 0)
    }
    return nil, asAppError(err, "Failed to create chat.")
  }

  requesters, uErr := cs.userRepo.GetByIDs(ctx, nil, []uint{rd.UserID})
  if uErr != nil {
    return nil, apperr.Internal("Failed to load requesting user.", uErr)
  }
  if len(requesters) > 0 {
    chat.User = requesters[0]
  }
  chat.TourGuide = guide
  return summarizeChat(chat, rd.UserID), nil
}

func (cs *conversationService) ListChats(ctx context.Context) ([]*types.ChatSummary, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == 0 {
    return nil, apperr.Unauthorized("Not authenticated.")
  }
  chats, err := cs.chatRepo.GetByParticipant(ctx, nil, rd.UserID)
  if err != nil {
    return nil, apperr.Internal("Failed to load chats.", err)
  }
  summaries := make([]*types.ChatSummary, 0, len(chats))
  for _, chat := range chats {
    summaries = append(summaries, summarizeChat(chat, rd.UserID))
  }
  return summaries, nil
}

// summarizeChat builds the denormalized list view from a chat with its
// associations loaded. The unread flag is relative to the requester.
func summarizeChat(chat *types.Chat, requesterID uint) *types.ChatSummary {
  summary := &types.ChatSummary{
    ID:          chat.ID,
    UserID:      chat.UserID,
    TourGuideID: chat.TourGuideID,
    CreatedAt:   chat.CreatedAt,
  }
  if chat.User != nil {
    summary.UserName = chat.User.FirstName
  }
  if chat.TourGuide != nil && chat.TourGuide.User != nil {
    summary.TourGuideName = chat.TourGuide.User.FirstName
    summary.TourGuideProfilePictureURL = chat.TourGuide.User.ProfilePictureURL
  }
  var last *types.Message
  for _, m := range chat.Messages {
    if last == nil || m.SentAt.After(last.SentAt) {
      last = m
    }
    if m.SenderID != requesterID && !m.IsRead {
      summary.HasUnreadMessages = true
    }
  }
  if last != nil {
    content := last.Content
    sentAt := last.SentAt
    summary.LastMessageContent = &content
    summary.LastMessageSentAt = &sentAt
  }
  return summary
}
