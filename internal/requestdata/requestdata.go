package requestdata

import (
  "context"
)

type key struct{}

var requestDataKey key

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
  return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
  val := ctx.Value(requestDataKey)
  if rd, ok := val.(*RequestData); ok {
    return rd
  }
  return nil
}

// RequestData carries the authenticated principal for the current request.
type RequestData struct {
  TokenString     string
  UserID          uint
  Roles           []string
}

func (rd *RequestData) HasRole(role string) bool {
  for _, r := range rd.Roles {
    if r == role {
      return true
    }
  }
  return false
}
