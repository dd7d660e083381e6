package services

import (
  "context"
  "encoding/json"
  "sync"
  "testing"

  "github.com/glebarez/sqlite"
  "github.com/stretchr/testify/require"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/r7ala/r7ala-backend/internal/apperr"
  "github.com/r7ala/r7ala-backend/internal/logger"
  "github.com/r7ala/r7ala-backend/internal/repos"
  "github.com/r7ala/r7ala-backend/internal/requestdata"
  "github.com/r7ala/r7ala-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
  t.Helper()
  db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
  require.NoError(t, err)
  sqlDB, err := db.DB()
  require.NoError(t, err)
  // a single conn keeps every session on the same in-memory database
  sqlDB.SetMaxOpenConns(1)
  require.NoError(t, db.AutoMigrate(&types.User{}, &types.TourGuide{}, &types.Chat{}, &types.Message{}))
  return db
}

func newTestLogger(t *testing.T) *logger.Logger {
  t.Helper()
  log, err := logger.New("development")
  require.NoError(t, err)
  return log
}

type push struct {
  UserID  uint
  Event   string
  Payload interface{}
}

// recordingNotifier stands in for the websocket hub and remembers every push.
type recordingNotifier struct {
  mu     sync.Mutex
  pushes []push
}

func (n *recordingNotifier) PushToUser(ctx context.Context, userID uint, event string, payload interface{}) {
  n.mu.Lock()
  defer n.mu.Unlock()
  n.pushes = append(n.pushes, push{UserID: userID, Event: event, Payload: payload})
}

func (n *recordingNotifier) all() []push {
  n.mu.Lock()
  defer n.mu.Unlock()
  out := make([]push, len(n.pushes))
  copy(out, n.pushes)
  return out
}

type fixture struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  tourGuideRepo repos.TourGuideRepo
  chatRepo      repos.ChatRepo
  messageRepo   repos.MessageRepo
  notifier      *recordingNotifier
  conversations ConversationService
  messages      MessageService

  traveler   *types.User
  guideUser  *types.User
  guide      *types.TourGuide
}

func newFixture(t *testing.T) *fixture {
  t.Helper()
  db := newTestDB(t)
  log := newTestLogger(t)
  f := &fixture{
    db:            db,
    log:           log,
    userRepo:      repos.NewUserRepo(db, log),
    tourGuideRepo: repos.NewTourGuideRepo(db, log),
    chatRepo:      repos.NewChatRepo(db, log),
    messageRepo:   repos.NewMessageRepo(db, log),
    notifier:      &recordingNotifier{},
  }
  f.conversations = NewConversationService(db, log, f.chatRepo, f.tourGuideRepo, f.userRepo)
  f.messages = NewMessageService(db, log, f.chatRepo, f.messageRepo, f.userRepo, f.notifier)

  f.traveler = f.createUser(t, "Laila", "laila@example.com")
  f.guideUser = f.createUser(t, "Omar", "omar@example.com")
  f.guide = f.createGuide(t, f.guideUser)
  return f
}

func (f *fixture) createUser(t *testing.T, firstName, email string) *types.User {
  t.Helper()
  hashed, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
  require.NoError(t, err)
  roles, err := json.Marshal([]string{"User"})
  require.NoError(t, err)
  user := &types.User{
    FirstName: firstName,
    LastName:  "Tester",
    Email:     email,
    Password:  string(hashed),
    Roles:     datatypes.JSON(roles),
  }
  _, err = f.userRepo.Create(context.Background(), nil, []*types.User{user})
  require.NoError(t, err)
  return user
}

func (f *fixture) createGuide(t *testing.T, user *types.User) *types.TourGuide {
  t.Helper()
  guide := &types.TourGuide{
    UserID:      user.ID,
    Bio:         "test guide",
    IsAvailable: true,
  }
  _, err := f.tourGuideRepo.Create(context.Background(), nil, []*types.TourGuide{guide})
  require.NoError(t, err)
  return guide
}

func ctxFor(userID uint) context.Context {
  return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
    UserID: userID,
    Roles:  []string{"User"},
  })
}

func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
  t.Helper()
  require.Error(t, err)
  require.Equal(t, kind, apperr.KindOf(err))
  var ae *apperr.Error
  require.ErrorAs(t, err, &ae)
  return ae
}
