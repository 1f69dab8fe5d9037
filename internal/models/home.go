package models

import "time"

// Home is a rental property owned by one user.
// Implements the Ownable interface for ownership-based authorization.
type Home struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"index;not null" json:"user_id"`

	Name    string `gorm:"size:255;not null" json:"name"`
	Address string `gorm:"size:500" json:"address,omitempty"`

	// Summary counters rewritten each time the home detail is loaded.
	RoomTotal      int `gorm:"not null;default:0" json:"room_total"`
	RoomTotalEmpty int `gorm:"not null;default:0" json:"room_total_empty"`

	Rooms []Room `gorm:"foreignKey:HomeID" json:"rooms,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (h *Home) GetUserID() uint {
	return h.UserID
}

// CountRooms returns the number of rooms and of inactive (empty) rooms.
func CountRooms(rooms []Room) (total, empty int) {
	for _, r := range rooms {
		total++
		if !r.IsActive {
			empty++
		}
	}
	return total, empty
}
