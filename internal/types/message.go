package types

import (
  "time"
)

type Message struct {
  ID          uint            `gorm:"primaryKey" json:"id"`
  ChatID      uint            `gorm:"index;not null" json:"chatID"`
  Chat        *Chat           `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChatID;references:ID" json:"chat,omitempty"`
  SenderID    uint            `gorm:"index;not null" json:"senderID"`
  Sender      *User           `gorm:"foreignKey:SenderID;references:ID" json:"sender,omitempty"`

  Content     string          `gorm:"type:varchar(1000);not null" json:"content"`
  SentAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"sentAt"`
  IsRead      bool            `gorm:"not null;default:false;column:is_read" json:"isRead"`
}

func (Message) TableName() string {
  return "message"
}

// MessageRecord is the wire shape of a message, both for HTTP responses and
// for the message-created push payload.
type MessageRecord struct {
  ID          uint            `json:"id"`
  ChatID      uint            `json:"chatId"`
  SenderID    uint            `json:"senderId"`
  SenderName  string          `json:"senderName"`
  Content     string          `json:"content"`
  SentAt      time.Time       `json:"sentAt"`
  IsRead      bool            `json:"isRead"`
}

// MessageDeletedEvent is the message-deleted push payload.
type MessageDeletedEvent struct {
  MessageID   uint            `json:"messageId"`
  ChatID      uint            `json:"chatId"`
}
