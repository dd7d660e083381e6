package services

import (
  "testing"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/r7ala/r7ala-backend/internal/apperr"
)

func TestCreateChatReturnsSummary(t *testing.T) {
  f := newFixture(t)

  summary, err := f.conversations.CreateChat(ctxFor(f.traveler.ID), f.guide.ID)
  require.NoError(t, err)

  assert.NotZero(t, summary.ID)
  assert.Equal(t, f.traveler.ID, summary.UserID)
  assert.Equal(t, "Laila", summary.UserName)
  assert.Equal(t, f.guide.ID, summary.TourGuideID)
  assert.Equal(t, "Omar", summary.TourGuideName)
  assert.Nil(t, summary.LastMessageContent)
  assert.Nil(t, summary.LastMessageSentAt)
  assert.False(t, summary.HasUnreadMessages)

  // chat creation alone never pushes anything
  assert.Empty(t, f.notifier.all())
}

func TestCreateChatConflictCarriesExistingID(t *testing.T) {
  f := newFixture(t)

  first, err := f.conversations.CreateChat(ctxFor(f.traveler.ID), f.guide.ID)
  require.NoError(t, err)

  _, err = f.conversations.CreateChat(ctxFor(f.traveler.ID), f.guide.ID)
  ae := requireKind(t, err, apperr.KindConflict)
  assert.Equal(t, first.ID, ae.ChatID)
}

func TestCreateChatWithYourselfRejected(t *testing.T) {
  f := newFixture(t)

  _, err := f.conversations.CreateChat(ctxFor(f.guideUser.ID), f.guide.ID)
  requireKind(t, err, apperr.KindValidation)
}

func TestCreateChatUnknownGuideNotFound(t *testing.T) {
  f := newFixture(t)

  _, err := f.conversations.CreateChat(ctxFor(f.traveler.ID), 9999)
  requireKind(t, err, apperr.KindNotFound)
}

func TestCreateChatRequiresPrincipal(t *testing.T) {
  f := newFixture(t)

  _, err := f.conversations.CreateChat(ctxFor(0), f.guide.ID)
  requireKind(t, err, apperr.KindUnauthorized)
}

func TestListChatsVisibleToBothParticipants(t *testing.T) {
  f := newFixture(t)

  created, err := f.conversations.CreateChat(ctxFor(f.traveler.ID), f.guide.ID)
  require.NoError(t, err)

  travelerChats, err := f.conversations.ListChats(ctxFor(f.traveler.ID))
  require.NoError(t, err)
  require.Len(t, travelerChats, 1)
  assert.Equal(t, created.ID, travelerChats[0].ID)

  guideChats, err := f.conversations.ListChats(ctxFor(f.guideUser.ID))
  require.NoError(t, err)
  require.Len(t, guideChats, 1)
  assert.Equal(t, created.ID, guideChats[0].ID)
}

func TestListChatsOrdersByActivityAndFlagsUnread(t *testing.T) {
  f := newFixture(t)

  secondGuideUser := f.createUser(t, "Nadia", "nadia@example.com")
  secondGuide := f.createGuide(t, secondGuideUser)

  older, err := f.conversations.CreateChat(ctxFor(f.traveler.ID), f.guide.ID)
  require.NoError(t, err)
  newer, err := f.conversations.CreateChat(ctxFor(f.traveler.ID), secondGuide.ID)
  require.NoError(t, err)

  // no messages yet: creation order decides, newest thread first
  chats, err := f.conversations.ListChats(ctxFor(f.traveler.ID))
  require.NoError(t, err)
  require.Len(t, chats, 2)
  assert.Equal(t, newer.ID, chats[0].ID)

  // a message in the older thread bumps it ahead
  record, err := f.messages.SendMessage(ctxFor(f.traveler.ID), older.ID, "still there?")
  require.NoError(t, err)

  chats, err = f.conversations.ListChats(ctxFor(f.traveler.ID))
  require.NoError(t, err)
  require.Len(t, chats, 2)
  assert.Equal(t, older.ID, chats[0].ID)
  require.NotNil(t, chats[0].LastMessageContent)
  assert.Equal(t, "still there?", *chats[0].LastMessageContent)
  require.NotNil(t, chats[0].LastMessageSentAt)
  assert.Equal(t, record.SentAt.Unix(), chats[0].LastMessageSentAt.Unix())

  // unread is relative to the requester: the sender sees none, the guide does
  assert.False(t, chats[0].HasUnreadMessages)
  guideChats, err := f.conversations.ListChats(ctxFor(f.guideUser.ID))
  require.NoError(t, err)
  require.Len(t, guideChats, 1)
  assert.True(t, guideChats[0].HasUnreadMessages)
}
