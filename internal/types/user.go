package types

import (
  "encoding/json"
  "time"

  "gorm.io/datatypes"
)

type User struct {
  ID                  uint                      `gorm:"primaryKey" json:"id"`
  FirstName           string                    `gorm:"not null;column:first_name" json:"firstName"`
  LastName            string                    `gorm:"not null;column:last_name" json:"lastName"`
  Email               string                    `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Password            string                    `gorm:"not null;column:password" json:"-"`
  ProfilePictureURL   string                    `gorm:"column:profile_picture_url" json:"profilePictureURL"`
  Roles               datatypes.JSON            `gorm:"column:roles" json:"roles"`

  CreatedAt           time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
  UpdatedAt           time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (User) TableName() string {
  return "user"
}

// RoleNames unpacks the JSON role column; a missing or malformed column
// yields no roles rather than an error.
func (u *User) RoleNames() []string {
  if len(u.Roles) == 0 {
    return nil
  }
  var roles []string
  if err := json.Unmarshal(u.Roles, &roles); err != nil {
    return nil
  }
  return roles
}
