package models

import "time"

// Message ids are assigned in insertion order, so MessageID is also
// the position of a message inside its room.
type Message struct {
	MessageID   int64     `db:"message_id"`
	RoomID      int64     `db:"room_id"`
	FromUser    int64     `db:"from_user"`
	SendingTime time.Time `db:"sending_time"`
	Text        string    `db:"text"`
}
