package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/practice-sem-2/chat-service/internal/models"
	storage "github.com/practice-sem-2/chat-service/internal/storages"
	"github.com/sirupsen/logrus"
)

// MaxJoinAttempts bounds retries of a join that lost the race for
// inserting the (room, user) record.
const MaxJoinAttempts = 3

type MembershipUsecase struct {
	registry storage.Registry
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewMembershipUsecase(r storage.Registry, logger logrus.FieldLogger) *MembershipUsecase {
	return &MembershipUsecase{
		registry: r,
		logger:   logger,
		now:      utcNow,
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// Join admits user into the room. A departed member gets the old record
// back with fresh metadata, an active member gets the record unchanged.
func (u *MembershipUsecase) Join(ctx context.Context, userId int64, roomId int64) (p *models.Participant, err error) {
	for attempt := 1; attempt <= MaxJoinAttempts; attempt++ {
		err = u.registry.Atomic(ctx, func(r storage.Registry) error {
			var err error
			p, err = u.admit(ctx, r, userId, roomId, false)
			return err
		})

		if !errors.Is(err, storage.ErrParticipantConflict) {
			break
		}

		u.logger.
			WithField("room_id", roomId).
			WithField("user_id", userId).
			WithField("attempt", attempt).
			Warn("participant was inserted concurrently, retrying join")
	}

	if err != nil {
		return nil, err
	}
	return p, nil
}

// admit runs the join state machine inside the given registry scope.
func (u *MembershipUsecase) admit(ctx context.Context, r storage.Registry, userId int64, roomId int64, asAdmin bool) (*models.Participant, error) {
	latest, err := r.GetMessagesStore().FindLatestMessage(ctx, roomId)
	if err != nil {
		return nil, err
	}

	participants := r.GetParticipantsStore()
	existing, err := participants.FindParticipantIncludingDeleted(ctx, roomId, userId)
	if err != nil {
		return nil, err
	}

	if existing != nil && existing.IsActive() {
		return existing, nil
	}

	participant := models.Participant{
		RoomID: roomId,
		UserID: userId,
	}
	rejoined := existing != nil
	if rejoined {
		participant = *existing
		participant.DeletedAt = nil
	}

	now := u.now()
	participant.IsAdmin = asAdmin
	participant.MetaData = InitializeMetadata(latest, now)

	saved, err := participants.Save(ctx, &participant)
	if err != nil {
		return nil, err
	}

	u.logger.
		WithField("room_id", roomId).
		WithField("user_id", userId).
		WithField("rejoined", rejoined).
		Debug("participant joined room")

	err = r.GetUpdatesStore().MemberJoined(&models.MemberJoined{
		UpdateMeta: models.UpdateMeta{Timestamp: now},
		RoomID:     roomId,
		UserID:     userId,
		IsAdmin:    asAdmin,
		Rejoined:   rejoined,
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// Leave soft-deletes the membership. Leaving a room the user is not in
// (including a second leave) fails with ErrNotAMember.
func (u *MembershipUsecase) Leave(ctx context.Context, userId int64, roomId int64) error {
	return u.registry.Atomic(ctx, func(r storage.Registry) error {
		store := r.GetParticipantsStore()
		p, err := activeParticipant(ctx, store, roomId, userId)
		if err != nil {
			return err
		}

		now := u.now()
		p.DeletedAt = &now
		if _, err = store.Save(ctx, p); err != nil {
			return err
		}

		u.logger.
			WithField("room_id", roomId).
			WithField("user_id", userId).
			Debug("participant left room")

		return r.GetUpdatesStore().MemberLeft(&models.MemberLeft{
			UpdateMeta: models.UpdateMeta{Timestamp: now},
			RoomID:     roomId,
			UserID:     userId,
		})
	})
}

func (u *MembershipUsecase) PromoteToAdmin(ctx context.Context, actorId int64, targetId int64, roomId int64) error {
	return u.registry.Atomic(ctx, func(r storage.Registry) error {
		store := r.GetParticipantsStore()

		actor, err := store.FindParticipantIncludingDeleted(ctx, roomId, actorId)
		if err != nil {
			return err
		}
		if actor == nil || !actor.IsActive() || !actor.IsAdmin {
			return ErrNotAnAdmin
		}

		if actorId == targetId {
			return nil
		}

		target, err := activeParticipant(ctx, store, roomId, targetId)
		if err != nil {
			return err
		}
		if target.IsAdmin {
			return nil
		}

		target.IsAdmin = true
		if _, err = store.Save(ctx, target); err != nil {
			return err
		}

		return r.GetUpdatesStore().MemberPromoted(&models.MemberPromoted{
			UpdateMeta: models.UpdateMeta{Timestamp: u.now()},
			RoomID:     roomId,
			UserID:     targetId,
			ActorID:    actorId,
		})
	})
}

func activeParticipant(ctx context.Context, store storage.ParticipantsStore, roomId int64, userId int64) (*models.Participant, error) {
	p, err := store.FindParticipantIncludingDeleted(ctx, roomId, userId)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive() {
		return nil, ErrNotAMember
	}
	return p, nil
}
