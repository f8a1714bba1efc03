package usecases

import (
	"context"

	storage "github.com/practice-sem-2/chat-service/internal/storages"
)

type ReadPositionsUsecase struct {
	registry storage.Registry
}

func NewReadPositionsUsecase(r storage.Registry) *ReadPositionsUsecase {
	return &ReadPositionsUsecase{
		registry: r,
	}
}

// MarkRead moves the last seen pointer forward to messageId.
// Marking an older message is a no-op.
func (u *ReadPositionsUsecase) MarkRead(ctx context.Context, userId int64, roomId int64, messageId int64) error {
	return u.registry.Atomic(ctx, func(r storage.Registry) error {
		participants := r.GetParticipantsStore()
		p, err := activeParticipant(ctx, participants, roomId, userId)
		if err != nil {
			return err
		}

		msg, err := r.GetMessagesStore().GetMessage(ctx, roomId, messageId)
		if err != nil {
			return err
		}

		last := p.MetaData.LastSeenMessageID
		if last != nil && msg.MessageID <= *last {
			return nil
		}

		seen := msg.MessageID
		p.MetaData.LastSeenMessageID = &seen
		_, err = participants.Save(ctx, p)
		return err
	})
}

func (u *ReadPositionsUsecase) UnreadCount(ctx context.Context, userId int64, roomId int64) (int64, error) {
	p, err := activeParticipant(ctx, u.registry.GetParticipantsStore(), roomId, userId)
	if err != nil {
		return 0, err
	}

	messages := u.registry.GetMessagesStore()
	md := p.MetaData
	switch {
	case md.LastSeenMessageID != nil:
		return messages.CountMessagesAfter(ctx, roomId, md.LastSeenMessageID, false)
	case md.FirstJoinMessageID != nil:
		return messages.CountMessagesAfter(ctx, roomId, md.FirstJoinMessageID, true)
	default:
		// joined an empty room and has not read anything yet
		return messages.CountMessagesAfter(ctx, roomId, nil, false)
	}
}
