package models

import "time"

type Room struct {
	RoomID          int64      `json:"room_id" db:"room_id"`
	Title           string     `json:"title" db:"title"`
	Hashtags        []string   `json:"hashtags" db:"-"`
	StartAt         *time.Time `json:"start_at" db:"start_at"`
	MaxParticipants int        `json:"max_participants" db:"max_participants"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// RoomCreate is a room creation request as it comes from a client.
// Start time is passed separately, already parsed.
type RoomCreate struct {
	Title           string   `validate:"required"`
	Hashtags        []string `validate:"dive,hashtag"`
	MaxParticipants int      `validate:"gte=1"`
}
