package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Book struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ISBN        string         `json:"isbn" gorm:"uniqueIndex;not null"`
	Title       string         `json:"title" gorm:"not null"`
	Genre       string         `json:"genre"`
	Description string         `json:"description"`
	AuthorID    uint           `json:"authorId" gorm:"not null;index"`
	ImagePath   *string        `json:"imagePath"`
	Tags        datatypes.JSON `json:"tags" gorm:"type:jsonb"` // ["classic", "war"]
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
