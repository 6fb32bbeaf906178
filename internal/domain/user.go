package domain

import "time"

// User Model
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`                                   // Primary key
	Username  string    `json:"username" gorm:"size:50;uniqueIndex;not null"`           // Unique username
	Email     string    `json:"email" gorm:"size:255;uniqueIndex;not null"`             // Unique email
	Password  string    `json:"-" gorm:"not null"`                                      // Hashed password, never serialized
	Todos     []Todo    `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE"` // One-to-many relationship with Todo
	CreatedAt time.Time `json:"createdAt"`                                              // Set by the store on insert
	UpdatedAt time.Time `json:"updatedAt"`                                              // Set by the store on update
}
