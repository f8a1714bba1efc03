package models

import "time"

// UserMetaData is the read and notification state of a single participant.
// It is owned by its Participant and copied by value.
type UserMetaData struct {
	FirstJoinMessageID   *int64    `json:"first_join_message_id" db:"first_join_message_id"`
	LastSeenMessageID    *int64    `json:"last_seen_message_id" db:"last_seen_message_id"`
	IsMuted              bool      `json:"is_muted" db:"is_muted"`
	NotificationsEnabled bool      `json:"notifications_enabled" db:"notifications_enabled"`
	JoinedAt             time.Time `json:"joined_at" db:"joined_at"`
}

// Participant is a (room, user) membership record. A record with DeletedAt
// set is a departed member and gets reactivated on rejoin.
type Participant struct {
	ParticipantID int64      `json:"participant_id" db:"participant_id"`
	RoomID        int64      `json:"room_id" db:"room_id"`
	UserID        int64      `json:"user_id" db:"user_id"`
	IsAdmin       bool       `json:"is_admin" db:"is_admin"`
	DeletedAt     *time.Time `json:"deleted_at" db:"deleted_at"`
	MetaData      UserMetaData
}

func (p *Participant) IsActive() bool {
	return p.DeletedAt == nil
}
