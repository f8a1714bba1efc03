package usecases

import (
	"errors"
	"fmt"

	storage "github.com/practice-sem-2/chat-service/internal/storages"
)

var (
	ErrValidation      = errors.New("invalid request")
	ErrNotAMember      = errors.New("user is not a room member")
	ErrForbidden       = errors.New("user is not authorized to this action")
	ErrNotAnAdmin      = fmt.Errorf("%w: user is not a room admin", ErrForbidden)
	ErrRoomIsFull      = storage.ErrRoomIsFull
	ErrRoomNotFound    = storage.ErrRoomNotFound
	ErrMessageNotFound = storage.ErrMessageNotFound
)
