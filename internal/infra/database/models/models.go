package models

import (
	"time"
)

type GearRecord struct {
	ID             string    `json:"id" gorm:"primaryKey;type:text"`
	Name           string    `json:"name" gorm:"type:text;not null"`
	Description    string    `json:"description" gorm:"type:text;not null"`
	ImageReference string    `json:"imageReference" gorm:"->;<-:create;type:text"`
	Owner          string    `json:"owner" gorm:"type:text;index;not null"`
	CDate          time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Rider struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	DisplayName string    `json:"displayName" gorm:"type:text"`
	LastSeen    time.Time `json:"lastSeen" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}
