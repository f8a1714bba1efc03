package models

import "time"

type UpdateMeta struct {
	Timestamp time.Time
}

type RoomCreated struct {
	UpdateMeta
	RoomID    int64
	Title     string
	CreatorID int64
}

type MemberJoined struct {
	UpdateMeta
	RoomID   int64
	UserID   int64
	IsAdmin  bool
	Rejoined bool
}

type MemberLeft struct {
	UpdateMeta
	RoomID int64
	UserID int64
}

type MemberPromoted struct {
	UpdateMeta
	RoomID  int64
	UserID  int64
	ActorID int64
}
