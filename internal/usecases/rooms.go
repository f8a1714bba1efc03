package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/practice-sem-2/chat-service/internal/models"
	storage "github.com/practice-sem-2/chat-service/internal/storages"
)

type RoomsUsecase struct {
	registry   storage.Registry
	membership *MembershipUsecase
	validate   *validator.Validate
	now        func() time.Time
}

func NewRoomsUsecase(r storage.Registry, m *MembershipUsecase, v *validator.Validate) *RoomsUsecase {
	return &RoomsUsecase{
		registry:   r,
		membership: m,
		validate:   v,
		now:        utcNow,
	}
}

// CreateRoom validates the request and creates the room together with its
// creator as an admin participant. Nothing is stored if any step fails.
func (u *RoomsUsecase) CreateRoom(ctx context.Context, req models.RoomCreate, creatorId int64, startAt *time.Time) (room *models.Room, err error) {
	req.Title = strings.TrimSpace(req.Title)
	if err = u.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if startAt != nil && startAt.Before(u.now().Truncate(time.Second)) {
		return nil, fmt.Errorf("%w: start date time must not be in the past", ErrValidation)
	}

	err = u.registry.Atomic(ctx, func(r storage.Registry) error {
		var err error
		room, err = r.GetRoomsStore().CreateRoom(ctx, &models.Room{
			Title:           req.Title,
			Hashtags:        uniqueHashtags(req.Hashtags),
			StartAt:         startAt,
			MaxParticipants: req.MaxParticipants,
		})
		if err != nil {
			return err
		}

		_, err = u.membership.admit(ctx, r, creatorId, room.RoomID, true)
		if err != nil {
			return err
		}

		return r.GetUpdatesStore().RoomCreated(&models.RoomCreated{
			UpdateMeta: models.UpdateMeta{Timestamp: room.CreatedAt},
			RoomID:     room.RoomID,
			Title:      room.Title,
			CreatorID:  creatorId,
		})
	})

	if err != nil {
		return nil, err
	}
	return room, nil
}

func (u *RoomsUsecase) GetRoom(ctx context.Context, roomId int64) (*models.Room, error) {
	return u.registry.GetRoomsStore().GetRoom(ctx, roomId)
}
