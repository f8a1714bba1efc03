package storage

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/practice-sem-2/chat-service/internal/models"
)

var (
	ErrMessageNotFound = errors.New("message does not exist")
)

const (
	MessagesRoomIdForeignKey = "chat_messages_room_id_fkey"
)

var messageColumns = []string{"message_id", "room_id", "from_user", "sending_time", "text"}

type MessagesStorage struct {
	db Scope
}

func NewMessagesStorage(db Scope) *MessagesStorage {
	return &MessagesStorage{
		db: db,
	}
}

// PutMessage stores a message and fills its MessageID.
// Membership logic never writes messages, it's used by message producers and tests.
func (s *MessagesStorage) PutMessage(ctx context.Context, message *models.Message) error {
	query, args, err := sq.Insert("chat_messages").
		Columns("room_id", "from_user", "sending_time", "text").
		Values(message.RoomID, message.FromUser, message.SendingTime, message.Text).
		Suffix("RETURNING message_id").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return err
	}

	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&message.MessageID)

	if GetPgxConstraintName(err) == MessagesRoomIdForeignKey {
		return ErrRoomNotFound
	}
	return err
}

func (s *MessagesStorage) selectOne(ctx context.Context, builder sq.SelectBuilder) (*models.Message, error) {
	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	msg := models.Message{}
	err = s.db.GetContext(ctx, &msg, query, args...)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindLatestMessage returns nil without error when the room has no messages.
func (s *MessagesStorage) FindLatestMessage(ctx context.Context, roomId int64) (*models.Message, error) {
	msg, err := s.selectOne(ctx, sq.Select(messageColumns...).
		From("chat_messages").
		Where(sq.Eq{"room_id": roomId}).
		OrderBy("message_id DESC").
		Limit(1))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return msg, err
}

func (s *MessagesStorage) GetMessage(ctx context.Context, roomId int64, messageId int64) (*models.Message, error) {
	msg, err := s.selectOne(ctx, sq.Select(messageColumns...).
		From("chat_messages").
		Where(sq.Eq{
			"room_id":    roomId,
			"message_id": messageId,
		}))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	return msg, err
}

// CountMessagesAfter counts room messages positioned after the given one.
// A nil position counts every message of the room.
func (s *MessagesStorage) CountMessagesAfter(ctx context.Context, roomId int64, position *int64, inclusive bool) (int64, error) {
	selector := sq.And{sq.Eq{"room_id": roomId}}
	if position != nil {
		if inclusive {
			selector = append(selector, sq.GtOrEq{"message_id": *position})
		} else {
			selector = append(selector, sq.Gt{"message_id": *position})
		}
	}

	query, args, err := sq.Select("count(*)").
		From("chat_messages").
		Where(selector).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return 0, err
	}

	var count int64
	err = s.db.GetContext(ctx, &count, query, args...)
	return count, err
}
