package services

import (
  "context"
  "strconv"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"

  "github.com/r7ala/r7ala-backend/internal/apperr"
  "github.com/r7ala/r7ala-backend/internal/logger"
  "github.com/r7ala/r7ala-backend/internal/repos"
  "github.com/r7ala/r7ala-backend/internal/requestdata"
)

type JWTClaims struct {
  jwt.RegisteredClaims
  Roles   []string    `json:"roles,omitempty"`
}

// AuthService is the identity boundary the chat core consumes: it turns a
// bearer token into a request principal, and issues tokens on login so the
// system is exercisable end to end.
type AuthService interface {
  Login(ctx context.Context, email, password string) (string, error)
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  IssueAccessToken(userID uint, roles []string) (string, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  jwtSecretKey  string
  accessTTL     time.Duration
}

func NewAuthService(
  db            *gorm.DB,
  log           *logger.Logger,
  userRepo      repos.UserRepo,
  jwtSecretKey  string,
  accessTTL     time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:           db,
    log:          serviceLog,
    userRepo:     userRepo,
    jwtSecretKey: jwtSecretKey,
    accessTTL:    accessTTL,
  }
}

func (as *authService) Login(ctx context.Context, email, password string) (string, error) {
  if email == "" || password == "" {
    return "", apperr.Validation("Email and password are required.")
  }
  user, err := as.userRepo.GetByEmail(ctx, nil, email)
  if err != nil {
    return "", apperr.Internal("Failed to look up user.", err)
  }
  if user == nil {
    return "", apperr.Unauthorized("Invalid email or password.")
  }
  if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
    as.log.Debug("password mismatch on login", "email", email)
    return "", apperr.Unauthorized("Invalid email or password.")
  }
  token, err := as.IssueAccessToken(user.ID, user.RoleNames())
  if err != nil {
    return "", apperr.Internal("Failed to issue access token.", err)
  }
  return token, nil
}

func (as *authService) IssueAccessToken(userID uint, roles []string) (string, error) {
  now := time.Now().UTC()
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   strconv.FormatUint(uint64(userID), 10),
      IssuedAt:  jwt.NewNumericDate(now),
      ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
    },
    Roles: roles,
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken validates the token and returns a context carrying the
// authenticated principal as requestdata.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  claims := &JWTClaims{}
  token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, apperr.Unauthorized("Unexpected token signing method.")
    }
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil || !token.Valid {
    as.log.Debug("token validation failed", "error", err)
    return ctx, apperr.Unauthorized("Invalid or expired token.")
  }
  userID, err := strconv.ParseUint(claims.Subject, 10, 64)
  if err != nil || userID == 0 {
    return ctx, apperr.Unauthorized("Invalid token subject.")
  }
  rd := &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      uint(userID),
    Roles:       claims.Roles,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
