package domain

// Arcade Model
type Arcade struct {
	ID               uint      `gorm:"primaryKey" json:"id"`          // Primary key
	Name             string    `gorm:"not null" json:"name"`          // Arcade name
	Address          string    `json:"address"`                       // Street address
	DaysOpen         string    `json:"days_open"`                     // e.g. "Mon-Sat"
	HoursOfOperation string    `json:"hours_of_operation"`            // e.g. "12pm-2am"
	ServesAlcohol    bool      `json:"serves_alcohol"`                // Whether the arcade has a bar
	Comments         []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // One-to-many relationship with Comment
}
