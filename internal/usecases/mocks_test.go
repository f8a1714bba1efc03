package usecases

import (
	"context"

	"github.com/practice-sem-2/chat-service/internal/models"
	storage "github.com/practice-sem-2/chat-service/internal/storages"
	"github.com/stretchr/testify/mock"
)

type registryMock struct {
	rooms        *roomsMock
	participants *participantsMock
	messages     *messagesMock
	updates      *updatesMock
	atomicCalls  int
}

func newRegistryMock() *registryMock {
	return &registryMock{
		rooms:        &roomsMock{},
		participants: &participantsMock{},
		messages:     &messagesMock{},
		updates:      &updatesMock{},
	}
}

func (r *registryMock) Atomic(_ context.Context, fn storage.AtomicFunc) error {
	r.atomicCalls++
	return fn(r)
}

func (r *registryMock) GetRoomsStore() storage.RoomsStore {
	return r.rooms
}

func (r *registryMock) GetParticipantsStore() storage.ParticipantsStore {
	return r.participants
}

func (r *registryMock) GetMessagesStore() storage.MessagesStore {
	return r.messages
}

func (r *registryMock) GetUpdatesStore() storage.UpdatesStore {
	return r.updates
}

type roomsMock struct {
	mock.Mock
}

func (m *roomsMock) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	args := m.Called(ctx, room)
	created, _ := args.Get(0).(*models.Room)
	return created, args.Error(1)
}

func (m *roomsMock) GetRoom(ctx context.Context, roomId int64) (*models.Room, error) {
	args := m.Called(ctx, roomId)
	room, _ := args.Get(0).(*models.Room)
	return room, args.Error(1)
}

type participantsMock struct {
	mock.Mock
}

func (m *participantsMock) FindParticipantIncludingDeleted(ctx context.Context, roomId int64, userId int64) (*models.Participant, error) {
	args := m.Called(ctx, roomId, userId)
	p, _ := args.Get(0).(*models.Participant)
	return p, args.Error(1)
}

// Save echoes the participant back, assigning an id to new ones.
func (m *participantsMock) Save(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	args := m.Called(ctx, p)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	saved := *p
	if saved.ParticipantID == 0 {
		saved.ParticipantID = 1
	}
	return &saved, nil
}

func (m *participantsMock) saved(i int) *models.Participant {
	var calls []mock.Call
	for _, c := range m.Calls {
		if c.Method == "Save" {
			calls = append(calls, c)
		}
	}
	return calls[i].Arguments.Get(1).(*models.Participant)
}

type messagesMock struct {
	mock.Mock
}

func (m *messagesMock) FindLatestMessage(ctx context.Context, roomId int64) (*models.Message, error) {
	args := m.Called(ctx, roomId)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *messagesMock) GetMessage(ctx context.Context, roomId int64, messageId int64) (*models.Message, error) {
	args := m.Called(ctx, roomId, messageId)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *messagesMock) CountMessagesAfter(ctx context.Context, roomId int64, position *int64, inclusive bool) (int64, error) {
	args := m.Called(ctx, roomId, position, inclusive)
	return args.Get(0).(int64), args.Error(1)
}

type updatesMock struct {
	mock.Mock
}

func (m *updatesMock) RoomCreated(room *models.RoomCreated) error {
	return m.Called(room).Error(0)
}

func (m *updatesMock) MemberJoined(member *models.MemberJoined) error {
	return m.Called(member).Error(0)
}

func (m *updatesMock) MemberLeft(member *models.MemberLeft) error {
	return m.Called(member).Error(0)
}

func (m *updatesMock) MemberPromoted(member *models.MemberPromoted) error {
	return m.Called(member).Error(0)
}

func ptr(v int64) *int64 {
	return &v
}
