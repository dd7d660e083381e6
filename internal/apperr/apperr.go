package apperr

import (
  "errors"
  "net/http"
)

type Kind int

const (
  KindUnauthorized Kind = iota + 1
  KindForbidden
  KindNotFound
  KindConflict
  KindValidation
  KindInternal
)

// Error is the error shape every service returns. Message is safe to show to
// the caller; Err (if any) is the underlying cause and stays in the logs.
// ChatID is only set on duplicate-chat conflicts so the 409 body can point
// the client at the existing thread.
type Error struct {
  Kind      Kind
  Message   string
  ChatID    uint
  Err       error
}

func (e *Error) Error() string {
  if e.Err != nil {
    return e.Message + ": " + e.Err.Error()
  }
  return e.Message
}

func (e *Error) Unwrap() error {
  return e.Err
}

func Unauthorized(msg string) *Error {
  return &Error{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
  return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) *Error {
  return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string, chatID uint) *Error {
  return &Error{Kind: KindConflict, Message: msg, ChatID: chatID}
}

func Validation(msg string) *Error {
  return &Error{Kind: KindValidation, Message: msg}
}

func Internal(msg string, err error) *Error {
  return &Error{Kind: KindInternal, Message: msg, Err: err}
}

func (k Kind) HTTPStatus() int {
  switch k {
  case KindUnauthorized:
    return http.StatusUnauthorized
  case KindForbidden:
    return http.StatusForbidden
  case KindNotFound:
    return http.StatusNotFound
  case KindConflict:
    return http.StatusConflict
  case KindValidation:
    return http.StatusBadRequest
  default:
    return http.StatusInternalServerError
  }
}

// KindOf reports the Kind carried by err, or KindInternal for anything that
// is not an *Error.
func KindOf(err error) Kind {
  var ae *Error
  if errors.As(err, &ae) {
    return ae.Kind
  }
  return KindInternal
}
