package model

import "time"

// Event 动态流中的活动
// swagger:model Event
type Event struct {
	UUIDBase
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Location      string    `gorm:"size:255;not null" json:"location"`
	ImageURL      string    `gorm:"size:512" json:"imageUrl"`
	StartDateTime time.Time `gorm:"index;not null" json:"startDateTime"`
	EndDateTime   time.Time `gorm:"index;not null" json:"endDateTime"`
	UserID        string    `gorm:"size:64;index;not null" json:"userId"`
}

func (Event) TableName() string {
	return "events"
}
