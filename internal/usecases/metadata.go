package usecases

import (
	"time"

	"github.com/practice-sem-2/chat-service/internal/models"
)

// InitializeMetadata builds the state of a freshly admitted participant.
// Both read pointers start at the latest room message, so nothing sent
// before the join is counted as unread.
func InitializeMetadata(latest *models.Message, joinedAt time.Time) models.UserMetaData {
	md := models.UserMetaData{
		IsMuted:              false,
		NotificationsEnabled: true,
		JoinedAt:             joinedAt,
	}

	if latest != nil {
		first := latest.MessageID
		last := latest.MessageID
		md.FirstJoinMessageID = &first
		md.LastSeenMessageID = &last
	}

	return md
}
