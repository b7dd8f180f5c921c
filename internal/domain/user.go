package domain

// User Model
type User struct {
	ID       uint      `gorm:"primaryKey" json:"id"`                                   // Primary key
	Username string    `gorm:"not null" json:"username"`                               // Display name
	Email    string    `gorm:"unique;not null" json:"email"`                           // Unique login email
	Password string    `gorm:"not null" json:"-"`                                      // Bcrypt hash, never serialized
	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // One-to-many relationship with Comment
}
