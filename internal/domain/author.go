package domain

import "time"

type Author struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FirstName string    `json:"firstName" gorm:"not null"`
	LastName  string    `json:"lastName" gorm:"not null"`
	BirthDate time.Time `json:"birthDate"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName is the "First Last" form used by the author filter on book listings.
func (a *Author) FullName() string {
	return a.FirstName + " " + a.LastName
}
