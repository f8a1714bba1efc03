package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/jmoiron/sqlx"
	"github.com/practice-sem-2/chat-service/internal/models"
)

type AtomicFunc func(Registry) error

type Registry interface {
	Atomic(ctx context.Context, fn AtomicFunc) error
	GetRoomsStore() RoomsStore
	GetParticipantsStore() ParticipantsStore
	GetMessagesStore() MessagesStore
	GetUpdatesStore() UpdatesStore
}

type RoomsStore interface {
	CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error)
	GetRoom(ctx context.Context, roomId int64) (*models.Room, error)
}

// ParticipantsStore keeps membership records. Lookups return soft-deleted
// records too, callers check Participant.IsActive.
type ParticipantsStore interface {
	FindParticipantIncludingDeleted(ctx context.Context, roomId int64, userId int64) (*models.Participant, error)
	Save(ctx context.Context, p *models.Participant) (*models.Participant, error)
}

type MessagesStore interface {
	FindLatestMessage(ctx context.Context, roomId int64) (*models.Message, error)
	GetMessage(ctx context.Context, roomId int64, messageId int64) (*models.Message, error)
	CountMessagesAfter(ctx context.Context, roomId int64, position *int64, inclusive bool) (int64, error)
}

type UpdatesStore interface {
	RoomCreated(room *models.RoomCreated) error
	MemberJoined(member *models.MemberJoined) error
	MemberLeft(member *models.MemberLeft) error
	MemberPromoted(member *models.MemberPromoted) error
}

type DefaultRegistry struct {
	db       *sqlx.DB
	scope    Scope
	producer sarama.SyncProducer
	cfg      *UpdatesStoreConfig
}

type Scope interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
	sqlx.Execer
	sqlx.Queryer
	Get(dest interface{}, query string, args ...interface{}) error
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func NewRegistry(db *sqlx.DB, p sarama.SyncProducer, cfg *UpdatesStoreConfig) *DefaultRegistry {
	return &DefaultRegistry{
		db:       db,
		scope:    db,
		producer: p,
		cfg:      cfg,
	}
}

func (r *DefaultRegistry) Atomic(ctx context.Context, fn AtomicFunc) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("rollback caused by error: \"%w\" failed: %v", err, rbErr)
			}
		} else {
			err = tx.Commit()
		}
	}()

	registry := DefaultRegistry{
		db:       r.db,
		scope:    tx,
		producer: r.producer,
		cfg:      r.cfg,
	}
	err = fn(&registry)
	return err
}

func (r *DefaultRegistry) GetRoomsStore() RoomsStore {
	return NewRoomsStorage(r.scope)
}

func (r *DefaultRegistry) GetParticipantsStore() ParticipantsStore {
	return NewParticipantsStorage(r.scope)
}

func (r *DefaultRegistry) GetMessagesStore() MessagesStore {
	return NewMessagesStorage(r.scope)
}

func (r *DefaultRegistry) GetUpdatesStore() UpdatesStore {
	return NewUpdatesStore(r.producer, r.cfg)
}
