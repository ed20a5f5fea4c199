package store

import "time"

// User holds a participant's aggregate race statistics.
type User struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	Username   string    `gorm:"size:100;not null" json:"username"`
	TotalRaces int       `gorm:"column:total_races;not null;default:0;index" json:"totalRaces"`
	BestWPM    int       `gorm:"column:best_wpm;not null;default:0" json:"bestWpm"`
	AverageWPM float64   `gorm:"column:average_wpm;not null;default:0" json:"averageWpm"`
	TotalChars int       `gorm:"column:total_chars;not null;default:0" json:"totalChars"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	TypeStats []TypeStat `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TypeStat is one credited race result.
type TypeStat struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	UserID    string    `gorm:"size:64;not null;index" json:"-"`
	WPM       int       `gorm:"column:wpm;not null" json:"wpm"`
	Accuracy  int       `gorm:"not null" json:"accuracy"`
	WordCount int       `gorm:"not null" json:"wordCount"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

type LeaderboardEntry struct {
	UserID     string  `json:"userId"`
	Username   string  `json:"username"`
	BestWPM    int     `json:"bestWpm"`
	AverageWPM float64 `json:"averageWpm"`
	TotalRaces int     `json:"totalRaces"`
}

type Profile struct {
	User
	Latest *TypeStat `json:"latest,omitempty"`
}
