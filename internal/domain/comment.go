package domain

// Comment Model
type Comment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`          // Primary key
	UserID    uint   `gorm:"not null;index" json:"user_id"` // Foreign key to the authoring User
	ArcadeID  uint   `gorm:"not null;index" json:"arcade_id"` // Foreign key to the reviewed Arcade
	Comment   string `gorm:"not null" json:"comment"`       // Review text
	Rating    int    `gorm:"not null" json:"rating"`        // Rating 1-5
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
