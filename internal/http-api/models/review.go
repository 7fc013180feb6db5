package models

import "time"

type Review struct {
	ID      int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID int64  `json:"title_id" gorm:"not null;uniqueIndex:idx_reviews_title_author"`
	UserID  string `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_title_author"`
	Text    string `json:"text" gorm:"type:text;not null"`
	// one review per user per title is enforced by idx_reviews_title_author,
	// the service pre-check alone is not atomic under concurrent submissions
	Score     int       `json:"score" gorm:"not null;check:score >= 1 AND score <= 10"`
	CreatedAt time.Time `json:"pub_date" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"-" gorm:"autoUpdateTime"`

	// Associations
	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Title Title `json:"title,omitempty" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}
