package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/practice-sem-2/chat-service/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const creatorId = int64(42)

type RoomsUsecaseTestSuite struct {
	suite.Suite
	registry *registryMock
	usecase  *RoomsUsecase
}

func TestRoomsUsecaseTestSuite(t *testing.T) {
	suite.Run(t, &RoomsUsecaseTestSuite{})
}

func (s *RoomsUsecaseTestSuite) SetupTest() {
	logger, _ := test.NewNullLogger()
	s.registry = newRegistryMock()
	s.usecase = NewRoomsUsecase(s.registry, NewMembershipUsecase(s.registry, logger), NewValidator())
	s.usecase.now = func() time.Time {
		return time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	}
}

func (s *RoomsUsecaseTestSuite) expectRoomCreated() {
	s.registry.rooms.On("CreateRoom", mock.Anything, mock.Anything).
		Return(&models.Room{
			RoomID:          100,
			Title:           "테스트방",
			Hashtags:        []string{"#tag1", "#tag2"},
			MaxParticipants: 10,
			CreatedAt:       time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		}, nil).Once()
}

func (s *RoomsUsecaseTestSuite) Test_CreateRoom() {
	start, err := ParseStartDateTime("2025-09-01T09:00:00")
	require.NoError(s.T(), err)

	s.expectRoomCreated()
	s.registry.messages.On("FindLatestMessage", mock.Anything, int64(100)).Return(nil, nil).Once()
	s.registry.participants.On("FindParticipantIncludingDeleted", mock.Anything, int64(100), creatorId).Return(nil, nil).Once()
	s.registry.participants.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	s.registry.updates.On("MemberJoined", mock.MatchedBy(func(m *models.MemberJoined) bool {
		return m.IsAdmin && m.UserID == creatorId
	})).Return(nil).Once()
	s.registry.updates.On("RoomCreated", &models.RoomCreated{
		UpdateMeta: models.UpdateMeta{Timestamp: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
		RoomID:     100,
		Title:      "테스트방",
		CreatorID:  creatorId,
	}).Return(nil).Once()

	room, err := s.usecase.CreateRoom(context.Background(), models.RoomCreate{
		Title:           "테스트방",
		Hashtags:        []string{"#tag1", "#tag2"},
		MaxParticipants: 10,
	}, creatorId, start)
	require.NoError(s.T(), err, "should correctly create room")
	assert.Equal(s.T(), int64(100), room.RoomID)

	requested := s.registry.rooms.Calls[0].Arguments.Get(1).(*models.Room)
	assert.Equal(s.T(), "테스트방", requested.Title)
	assert.Equal(s.T(), []string{"#tag1", "#tag2"}, requested.Hashtags)
	assert.Equal(s.T(), 10, requested.MaxParticipants)
	require.NotNil(s.T(), requested.StartAt)
	assert.Equal(s.T(), time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC), *requested.StartAt)

	creator := s.registry.participants.saved(0)
	assert.Equal(s.T(), creatorId, creator.UserID)
	assert.Equal(s.T(), int64(100), creator.RoomID)
	assert.True(s.T(), creator.IsAdmin, "creator should be an admin")
	assert.True(s.T(), creator.IsActive())

	assert.Equal(s.T(), 1, s.registry.atomicCalls, "room and creator should be created atomically")
	s.registry.rooms.AssertExpectations(s.T())
	s.registry.participants.AssertExpectations(s.T())
	s.registry.updates.AssertExpectations(s.T())
}

func (s *RoomsUsecaseTestSuite) Test_CreateRoom_DeduplicatesHashtags() {
	s.expectRoomCreated()
	s.registry.messages.On("FindLatestMessage", mock.Anything, int64(100)).Return(nil, nil).Once()
	s.registry.participants.On("FindParticipantIncludingDeleted", mock.Anything, int64(100), creatorId).Return(nil, nil).Once()
	s.registry.participants.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	s.registry.updates.On("MemberJoined", mock.Anything).Return(nil).Once()
	s.registry.updates.On("RoomCreated", mock.Anything).Return(nil).Once()

	_, err := s.usecase.CreateRoom(context.Background(), models.RoomCreate{
		Title:           "  room  ",
		Hashtags:        []string{"#b", "#a", "#b"},
		MaxParticipants: 1,
	}, creatorId, nil)
	require.NoError(s.T(), err)

	requested := s.registry.rooms.Calls[0].Arguments.Get(1).(*models.Room)
	assert.Equal(s.T(), "room", requested.Title, "title should be trimmed")
	assert.Equal(s.T(), []string{"#b", "#a"}, requested.Hashtags)
	assert.Nil(s.T(), requested.StartAt)
}

func (s *RoomsUsecaseTestSuite) Test_CreateRoom_ValidationErrors() {
	past := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		req     models.RoomCreate
		startAt *time.Time
	}{
		{"empty title", models.RoomCreate{Title: "", MaxParticipants: 1}, nil},
		{"blank title", models.RoomCreate{Title: "   ", MaxParticipants: 1}, nil},
		{"zero capacity", models.RoomCreate{Title: "room", MaxParticipants: 0}, nil},
		{"negative capacity", models.RoomCreate{Title: "room", MaxParticipants: -3}, nil},
		{"hashtag without hash", models.RoomCreate{Title: "room", Hashtags: []string{"tag"}, MaxParticipants: 1}, nil},
		{"hashtag with space", models.RoomCreate{Title: "room", Hashtags: []string{"#a b"}, MaxParticipants: 1}, nil},
		{"start in the past", models.RoomCreate{Title: "room", MaxParticipants: 1}, &past},
	}

	for _, c := range cases {
		s.Run(c.name, func() {
			_, err := s.usecase.CreateRoom(context.Background(), c.req, creatorId, c.startAt)
			assert.ErrorIs(s.T(), err, ErrValidation)
		})
	}

	assert.Equal(s.T(), 0, s.registry.atomicCalls, "nothing should be stored")
	s.registry.rooms.AssertNotCalled(s.T(), "CreateRoom", mock.Anything, mock.Anything)
}

func (s *RoomsUsecaseTestSuite) Test_CreateRoom_CreatorAdmissionFailure() {
	bang := errors.New("bang")
	s.expectRoomCreated()
	s.registry.messages.On("FindLatestMessage", mock.Anything, int64(100)).Return(nil, nil).Once()
	s.registry.participants.On("FindParticipantIncludingDeleted", mock.Anything, int64(100), creatorId).Return(nil, nil).Once()
	s.registry.participants.On("Save", mock.Anything, mock.Anything).Return(bang).Once()

	room, err := s.usecase.CreateRoom(context.Background(), models.RoomCreate{Title: "room", MaxParticipants: 1}, creatorId, nil)
	assert.ErrorIs(s.T(), err, bang, "error should reach the transaction so the room is rolled back")
	assert.Nil(s.T(), room)
	s.registry.updates.AssertNotCalled(s.T(), "RoomCreated", mock.Anything)
}

func TestParseStartDateTime(t *testing.T) {
	start, err := ParseStartDateTime("2025-09-01T09:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC), *start)

	start, err = ParseStartDateTime("2025-09-01T18:00:00+09:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC), *start)

	start, err = ParseStartDateTime("")
	assert.NoError(t, err)
	assert.Nil(t, start)

	for _, raw := range []string{"2025-09-01", "09:00 2025-09-01", "2025-13-01T09:00:00", "tomorrow"} {
		_, err = ParseStartDateTime(raw)
		assert.ErrorIs(t, err, ErrValidation, raw)
	}
}

func TestNewValidator_Hashtags(t *testing.T) {
	v := NewValidator()
	valid := []string{"#tag1", "#태그", "#snake_case"}
	invalid := []string{"", "#", "tag", "#with space", "##double", "#toolong_aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}

	for _, tag := range valid {
		assert.NoError(t, v.Var(tag, "hashtag"), tag)
	}
	for _, tag := range invalid {
		assert.Error(t, v.Var(tag, "hashtag"), tag)
	}
}
