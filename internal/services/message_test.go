package services

import (
  "strings"
  "testing"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/r7ala/r7ala-backend/internal/apperr"
  "github.com/r7ala/r7ala-backend/internal/types"
)

func (f *fixture) createChat(t *testing.T) uint {
  t.Helper()
  summary, err := f.conversations.CreateChat(ctxFor(f.traveler.ID), f.guide.ID)
  require.NoError(t, err)
  return summary.ID
}

func TestSendMessagePersistsAndPushesToRecipient(t *testing.T) {
  f := newFixture(t)
  chatID := f.createChat(t)

  record, err := f.messages.SendMessage(ctxFor(f.traveler.ID), chatID, "Hi")
  require.NoError(t, err)

  assert.NotZero(t, record.ID)
  assert.Equal(t, chatID, record.ChatID)
  assert.Equal(t, f.traveler.ID, record.SenderID)
  assert.Equal(t, "Laila", record.SenderName)
  assert.Equal(t, "Hi", record.Content)
  assert.False(t, record.IsRead)

  pushes := f.notifier.all()
  require.Len(t, pushes, 1)
  assert.Equal(t, f.guideUser.ID, pushes[0].UserID)
  assert.Equal(t, EventMessageCreated, pushes[0].Event)
  pushed, ok := pushes[0].Payload.(*types.MessageRecord)
  require.True(t, ok)
  assert.Equal(t, record.ID, pushed.ID)
  assert.Equal(t, "Hi", pushed.Content)
}

func TestSendMessagePushTargetsTheOtherSide(t *testing.T) {
  f := newFixture(t)
  chatID := f.createChat(t)

  _, err := f.messages.SendMessage(ctxFor(f.guideUser.ID), chatID, "Hello back")
  require.NoError(t, err)

  pushes := f.notifier.all()
  require.Len(t, pushes, 1)
  assert.Equal(t, f.traveler.ID, pushes[0].UserID)
}

func TestSendMessageContentBounds(t *testing.T) {
  f := newFixture(t)
  chatID := f.createChat(t)

  _, err := f.messages.SendMessage(ctxFor(f.traveler.ID), chatID, "   ")
  requireKind(t, err, apperr.KindValidation)

  _, err = f.messages.SendMessage(ctxFor(f.traveler.ID), chatID, strings.Repeat("a", 1001))
  requireKind(t, err, apperr.KindValidation)

  record, err := f.messages.SendMessage(ctxFor(f.traveler.ID), chatID, strings.Repeat("a", 1000))
  require.NoError(t, err)
  assert.Len(t, record.Content, 1000)
}

func TestSendMessageChatNotFound(t *testing.T) {
  f := newFixture(t)

  _, err := f.messages.SendMessage(ctxFor(f.traveler.ID), 424242, "hello?")
  requireKind(t, err, apperr.KindNotFound)
}

func TestSendMessageForbiddenForOutsider(t *testing.T) {
  f := newFixture(t)
  chatID := f.createChat(t)
  outsider := f.createUser(t, "Karim", "karim@example.com")

  _, err := f.messages.SendMessage(ctxFor(outsider.ID), chatID, "let me in")
  requireKind(t, err, apperr.KindForbidden)

  _, err = f.messages.ListMessages(ctxFor(outsider.ID), chatID)
  requireKind(t, err, apperr.KindForbidden)
}

func TestListMessagesMarksIncomingReadOnNextView(t *testing.T) {
  f := newFixture(t)
  chatID := f.createChat(t)

  sent, err := f.messages.SendMessage(ctxFor(f.traveler.ID), chatID, "Hi")
  require.NoError(t, err)

  // first view by the recipient still shows the message unread
  records, err := f.messages.ListMessages(ctxFor(f.guideUser.ID), chatID)
  require.NoError(t, err)
  require.Len(t, records, 1)
  assert.Equal(t, sent.ID, records[0].ID)
  assert.False(t, records[0].IsRead)

  // the view itself marked it; a second view observes the flip
  records, err = f.messages.ListMessages(ctxFor(f.guideUser.ID), chatID)
  require.NoError(t, err)
  require.Len(t, records, 1)
  assert.True(t, records[0].IsRead)
}

func TestListMessagesNeverFlipsOwnMessages(t *testing.T) {
  f := newFixture(t)
  chatID := f.createChat(t)

  _, err := f.messages.SendMessage(ctxFor(f.traveler.ID), chatID, "from traveler")
  require.NoError(t, err)
  _, err = f.messages.SendMessage(ctxFor(f.guideUser.ID), chatID, "from guide")
  require.NoError(t, err)

  // the traveler's read flips only the guide's message
  _, err = f.messages.ListMessages(ctxFor(f.traveler.ID), chatID)
  require.NoError(t, err)

  records, err := f.messages.ListMessages(ctxFor(f.traveler.ID), chatID)
  require.NoError(t, err)
  require.Len(t, records, 2)
  assert.Equal(t, "from traveler", records[0].Content)
  assert.False(t, records[0].IsRead)
  assert.Equal(t, "from guide", records[1].Content)
  assert.True(t, records[1].IsRead)
}

func TestListMessagesOrderedOldestFirst(t *testing.T) {
  f := newFixture(t)
  chatID := f.createChat(t)

  for _, content := range []string{"one", "two", "three"} {
    _, err := f.messages.SendMessage(ctxFor(f.traveler.ID), chatID, content)
    require.NoError(t, err)
  }

  records, err := f.messages.ListMessages(ctxFor(f.guideUser.ID), chatID)
  require.NoError(t, err)
  require.Len(t, records, 3)
  assert.Equal(t, "one", records[0].Content)
  assert.Equal(t, "two", records[1].Content)
  assert.Equal(t, "three", records[2].Content)
}

func TestDeleteMessageAuthorOnly(t *testing.T) {
  f := newFixture(t)
  chatID := f.createChat(t)

  sent, err := f.messages.SendMessage(ctxFor(f.traveler.ID), chatID, "Hi")
  require.NoError(t, err)

  // the other participant is not the author
  err = f.messages.DeleteMessage(ctxFor(f.guideUser.ID), chatID, sent.ID)
  requireKind(t, err, apperr.KindForbidden)

  records, err := f.messages.ListMessages(ctxFor(f.guideUser.ID), chatID)
  require.NoError(t, err)
  require.Len(t, records, 1)

  // the author may delete, and the other side gets the deletion event
  f.notifier.pushes = nil
  err = f.messages.DeleteMessage(ctxFor(f.traveler.ID), chatID, sent.ID)
  require.NoError(t, err)

  records, err = f.messages.ListMessages(ctxFor(f.traveler.ID), chatID)
  require.NoError(t, err)
  assert.Empty(t, records)

  pushes := f.notifier.all()
  require.Len(t, pushes, 1)
  assert.Equal(t, f.guideUser.ID, pushes[0].UserID)
  assert.Equal(t, EventMessageDeleted, pushes[0].Event)
  event, ok := pushes[0].Payload.(*types.MessageDeletedEvent)
  require.True(t, ok)
  assert.Equal(t, sent.ID, event.MessageID)
  assert.Equal(t, chatID, event.ChatID)
}

func TestDeleteMessageNotFoundCases(t *testing.T) {
  f := newFixture(t)
  chatID := f.createChat(t)

  err := f.messages.DeleteMessage(ctxFor(f.traveler.ID), chatID, 9999)
  requireKind(t, err, apperr.KindNotFound)

  err = f.messages.DeleteMessage(ctxFor(f.traveler.ID), 424242, 1)
  requireKind(t, err, apperr.KindNotFound)

  // a message from another thread is invisible through this chat id
  otherGuideUser := f.createUser(t, "Nadia", "nadia@example.com")
  otherGuide := f.createGuide(t, otherGuideUser)
  otherSummary, err := f.conversations.CreateChat(ctxFor(f.traveler.ID), otherGuide.ID)
  require.NoError(t, err)
  otherMsg, err := f.messages.SendMessage(ctxFor(f.traveler.ID), otherSummary.ID, "elsewhere")
  require.NoError(t, err)

  err = f.messages.DeleteMessage(ctxFor(f.traveler.ID), chatID, otherMsg.ID)
  requireKind(t, err, apperr.KindNotFound)
}
