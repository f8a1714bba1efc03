package storage

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/practice-sem-2/chat-service/internal/models"
)

var (
	ErrRoomNotFound       = errors.New("room with provided room_id does not exist")
	ErrInvalidRoom        = errors.New("room violates table constraints")
	ErrDuplicatedHashtags = errors.New("room hashtags must be unique")
)

const (
	RoomsTitleCheck           = "chat_rooms_title_check"
	RoomsMaxParticipantsCheck = "chat_rooms_max_participants_check"
	HashtagsRoomTagKey        = "chat_room_hashtags_room_id_tag_key"
)

type RoomsStorage struct {
	db Scope
}

func NewRoomsStorage(db Scope) *RoomsStorage {
	return &RoomsStorage{
		db: db,
	}
}

func (s *RoomsStorage) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	query, args, err := sq.Insert("chat_rooms").
		Columns("title", "start_at", "max_participants").
		Values(room.Title, room.StartAt, room.MaxParticipants).
		Suffix("RETURNING room_id, created_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	created := *room
	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&created.RoomID, &created.CreatedAt)

	if name := GetPgxConstraintName(err); name == RoomsTitleCheck || name == RoomsMaxParticipantsCheck {
		return nil, ErrInvalidRoom
	} else if err != nil {
		return nil, err
	}

	if err = s.addHashtags(ctx, created.RoomID, created.Hashtags); err != nil {
		return nil, err
	}

	return &created, nil
}

func (s *RoomsStorage) addHashtags(ctx context.Context, roomId int64, hashtags []string) error {
	if len(hashtags) == 0 {
		return nil
	}

	builder := sq.Insert("chat_room_hashtags").
		Columns("room_id", "position", "tag").
		PlaceholderFormat(sq.Dollar)

	for i, tag := range hashtags {
		builder = builder.Values(roomId, i, tag)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	if GetPgxConstraintName(err) == HashtagsRoomTagKey {
		return ErrDuplicatedHashtags
	}
	return err
}

func (s *RoomsStorage) GetRoom(ctx context.Context, roomId int64) (*models.Room, error) {
	query, args, err := sq.Select("room_id", "title", "start_at", "max_participants", "created_at").
		From("chat_rooms").
		Where(sq.Eq{"room_id": roomId}).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	room := models.Room{}
	err = s.db.GetContext(ctx, &room, query, args...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	} else if err != nil {
		return nil, err
	}

	query, args, err = sq.Select("tag").
		From("chat_room_hashtags").
		Where(sq.Eq{"room_id": roomId}).
		OrderBy("position").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	room.Hashtags = make([]string, 0)
	if err = s.db.SelectContext(ctx, &room.Hashtags, query, args...); err != nil {
		return nil, err
	}

	return &room, nil
}
