package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/practice-sem-2/chat-service/internal/models"
)

var (
	ErrParticipantConflict = errors.New("participant for provided room_id and user_id already exists")
	ErrParticipantNotFound = errors.New("participant does not exist")
	ErrRoomIsFull          = errors.New("room reached max participants count")
)

const (
	ParticipantsRoomUserKey = "chat_room_participants_room_id_user_id_key"
)

var participantColumns = []string{
	"participant_id",
	"room_id",
	"user_id",
	"is_admin",
	"deleted_at",
	"first_join_message_id",
	"last_seen_message_id",
	"is_muted",
	"notifications_enabled",
	"joined_at",
}

// Room still has free places when its active participants count is below max_participants.
const hasFreePlaces = `(SELECT count(*) FROM chat_room_participants a WHERE a.room_id = r.room_id AND a.deleted_at IS NULL) < r.max_participants`

type participantRow struct {
	ParticipantID        int64      `db:"participant_id"`
	RoomID               int64      `db:"room_id"`
	UserID               int64      `db:"user_id"`
	IsAdmin              bool       `db:"is_admin"`
	DeletedAt            *time.Time `db:"deleted_at"`
	FirstJoinMessageID   *int64     `db:"first_join_message_id"`
	LastSeenMessageID    *int64     `db:"last_seen_message_id"`
	IsMuted              bool       `db:"is_muted"`
	NotificationsEnabled bool       `db:"notifications_enabled"`
	JoinedAt             time.Time  `db:"joined_at"`
}

func (r *participantRow) toModel() *models.Participant {
	return &models.Participant{
		ParticipantID: r.ParticipantID,
		RoomID:        r.RoomID,
		UserID:        r.UserID,
		IsAdmin:       r.IsAdmin,
		DeletedAt:     r.DeletedAt,
		MetaData: models.UserMetaData{
			FirstJoinMessageID:   r.FirstJoinMessageID,
			LastSeenMessageID:    r.LastSeenMessageID,
			IsMuted:              r.IsMuted,
			NotificationsEnabled: r.NotificationsEnabled,
			JoinedAt:             r.JoinedAt,
		},
	}
}

type ParticipantsStorage struct {
	db Scope
}

func NewParticipantsStorage(db Scope) *ParticipantsStorage {
	return &ParticipantsStorage{
		db: db,
	}
}

// FindParticipantIncludingDeleted returns the record for the pair whatever
// its state, or nil if the user has never been in the room. The row stays
// locked until the surrounding transaction ends.
func (s *ParticipantsStorage) FindParticipantIncludingDeleted(ctx context.Context, roomId int64, userId int64) (*models.Participant, error) {
	query, args, err := sq.Select(participantColumns...).
		From("chat_room_participants").
		Where(sq.Eq{
			"room_id": roomId,
			"user_id": userId,
		}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	row := participantRow{}
	err = s.db.GetContext(ctx, &row, query, args...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// Save inserts a participant without ParticipantID and updates the existing
// row otherwise. Activating a participant (insert or clearing DeletedAt)
// fails with ErrRoomIsFull when the room has no free places.
func (s *ParticipantsStorage) Save(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	if p.ParticipantID == 0 {
		return s.insert(ctx, p)
	}
	return s.update(ctx, p)
}

func (s *ParticipantsStorage) insert(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	md := p.MetaData
	values := sq.Select().
		Column("r.room_id").
		Column("?::bigint", p.UserID).
		Column("?::boolean", p.IsAdmin).
		Column("?::timestamp", p.DeletedAt).
		Column("?::bigint", md.FirstJoinMessageID).
		Column("?::bigint", md.LastSeenMessageID).
		Column("?::boolean", md.IsMuted).
		Column("?::boolean", md.NotificationsEnabled).
		Column("?::timestamp", md.JoinedAt).
		From("chat_rooms r").
		Where(sq.Eq{"r.room_id": p.RoomID}).
		Where(hasFreePlaces)

	query, args, err := sq.Insert("chat_room_participants").
		Columns(participantColumns[1:]...).
		Select(values).
		Suffix("RETURNING participant_id").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	saved := *p
	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&saved.ParticipantID)

	if IsUniqueViolation(err, ParticipantsRoomUserKey) {
		return nil, ErrParticipantConflict
	} else if errors.Is(err, sql.ErrNoRows) {
		return nil, s.whyNotActivated(ctx, p.RoomID)
	} else if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *ParticipantsStorage) update(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	md := p.MetaData
	query, args, err := sq.Update("chat_room_participants").
		SetMap(map[string]interface{}{
			"is_admin":              p.IsAdmin,
			"deleted_at":            p.DeletedAt,
			"first_join_message_id": md.FirstJoinMessageID,
			"last_seen_message_id":  md.LastSeenMessageID,
			"is_muted":              md.IsMuted,
			"notifications_enabled": md.NotificationsEnabled,
			"joined_at":             md.JoinedAt,
		}).
		Where(sq.Eq{"participant_id": p.ParticipantID}).
		Where(sq.Or{
			sq.Eq{"deleted_at": nil},
			sq.Expr("?::timestamp IS NOT NULL", p.DeletedAt),
			sq.Expr("EXISTS (SELECT 1 FROM chat_rooms r WHERE r.room_id = chat_room_participants.room_id AND " + hasFreePlaces + ")"),
		}).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	count, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	if count == 0 {
		exists, err := s.exists(ctx, "chat_room_participants", sq.Eq{"participant_id": p.ParticipantID})
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrParticipantNotFound
		}
		return nil, ErrRoomIsFull
	}

	saved := *p
	return &saved, nil
}

func (s *ParticipantsStorage) whyNotActivated(ctx context.Context, roomId int64) error {
	exists, err := s.exists(ctx, "chat_rooms", sq.Eq{"room_id": roomId})
	if err != nil {
		return err
	}
	if !exists {
		return ErrRoomNotFound
	}
	return ErrRoomIsFull
}

func (s *ParticipantsStorage) exists(ctx context.Context, table string, selector sq.Sqlizer) (bool, error) {
	query, args, err := sq.Select("1").
		Prefix("SELECT EXISTS (").
		From(table).
		Where(selector).
		Suffix(")").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return false, err
	}

	ok := false
	err = s.db.GetContext(ctx, &ok, query, args...)
	return ok, err
}
