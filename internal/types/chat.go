package types

import (
  "time"
)

// Chat is one conversation between a user and a tour guide. The composite
// unique index makes the one-thread-per-pair invariant hold even when two
// create requests race past the existence pre-check.
type Chat struct {
  ID            uint            `gorm:"primaryKey" json:"id"`
  UserID        uint            `gorm:"not null;uniqueIndex:uq_chat_user_tour_guide" json:"userID"`
  User          *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  TourGuideID   uint            `gorm:"not null;uniqueIndex:uq_chat_user_tour_guide" json:"tourGuideID"`
  TourGuide     *TourGuide      `gorm:"constraint:OnDelete:CASCADE;foreignKey:TourGuideID;references:ID" json:"tourGuide,omitempty"`

  CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`

  Messages      []*Message      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChatID;references:ID" json:"messages,omitempty"`
}

func (Chat) TableName() string {
  return "chat"
}

// ChatSummary is the denormalized list view of a Chat, computed for one
// requester (the unread flag is relative to who is asking).
type ChatSummary struct {
  ID                              uint            `json:"id"`
  UserID                          uint            `json:"userID"`
  UserName                        string          `json:"userName"`
  TourGuideID                     uint            `json:"tourGuideID"`
  TourGuideName                   string          `json:"tourGuideName"`
  TourGuideProfilePictureURL      string          `json:"tourGuideProfilePictureURL"`
  CreatedAt                       time.Time       `json:"createdAt"`
  LastMessageContent              *string         `json:"lastMessageContent"`
  LastMessageSentAt               *time.Time      `json:"lastMessageSentAt"`
  HasUnreadMessages               bool            `json:"hasUnreadMessages"`
}
