package types

import (
  "time"

  "gorm.io/datatypes"
)

// TourGuide wraps a distinct User row; chats always pair a plain user with
// the guide's backing account.
type TourGuide struct {
  ID                  uint                      `gorm:"primaryKey" json:"id"`
  UserID              uint                      `gorm:"index;not null" json:"userID"`
  User                *User                     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

  Bio                 string                    `gorm:"type:varchar(1000);column:bio" json:"bio"`
  YearsOfExperience   int                       `gorm:"column:years_of_experience" json:"yearsOfExperience"`
  Languages           datatypes.JSON            `gorm:"column:languages" json:"languages"`
  HourlyRate          float64                   `gorm:"column:hourly_rate" json:"hourlyRate"`
  IsAvailable         bool                      `gorm:"not null;default:true;column:is_available" json:"isAvailable"`
  ProfilePictureURL   string                    `gorm:"column:profile_picture_url" json:"profilePictureURL"`

  CreatedAt           time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
  UpdatedAt           time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (TourGuide) TableName() string {
  return "tour_guide"
}
