package store

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Name         string `gorm:"size:255" json:"name"`
	BirthDate    *time.Time
	BirthTime    string `gorm:"size:16"`
	BirthPlace   string `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Partner struct {
	ID           string `gorm:"primaryKey;size:36"`
	UserID       string `gorm:"uniqueIndex;size:36;not null"`
	Name         string `gorm:"size:255;not null"`
	BirthDate    *time.Time
	BirthTime    string `gorm:"size:16"`
	BirthPlace   string `gorm:"size:255"`
	Relationship string `gorm:"size:64"`
	StartDate    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Breakup struct {
	ID              string `gorm:"primaryKey;size:36"`
	UserID          string `gorm:"index;size:36;not null"`
	PartnerName     string `gorm:"size:255"`
	BreakupDate     time.Time
	AutoDeleteDate  time.Time
	WeeklyCheckDone datatypes.JSON
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index;size:36;not null" json:"-"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type TarotReading struct {
	ID             string `gorm:"primaryKey;size:36"`
	UserID         string `gorm:"index;size:36;not null"`
	Question       string `gorm:"type:text"`
	CardsDrawn     datatypes.JSON
	Interpretation string `gorm:"type:text"`
	CreatedAt      time.Time
}
