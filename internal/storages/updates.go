package storage

import (
	"strconv"
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	"github.com/practice-sem-2/chat-service/internal/models"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	UpdateRoomCreated    = "room_created"
	UpdateMemberJoined   = "member_joined"
	UpdateMemberLeft     = "member_left"
	UpdateMemberPromoted = "member_promoted"
)

type UpdatesStorage struct {
	cfg      *UpdatesStoreConfig
	producer sarama.SyncProducer
}

type UpdatesStoreConfig struct {
	UpdatesTopic string
}

// NewProducerConfig is the producer setup updates are published with.
func NewProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Timeout = 10 * time.Second
	config.Producer.Return.Successes = true
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Offsets.AutoCommit.Enable = false
	return config
}

func NewUpdatesStore(p sarama.SyncProducer, cfg *UpdatesStoreConfig) *UpdatesStorage {
	return &UpdatesStorage{
		producer: p,
		cfg:      cfg,
	}
}

func (s *UpdatesStorage) putUpdate(topic, key string, event *structpb.Struct) error {
	bytes, err := proto.Marshal(event)
	if err != nil {
		return err
	}

	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(bytes),
	})

	return err
}

// Ids are passed as strings, protobuf Struct numbers are doubles.
func formatId(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (s *UpdatesStorage) newUpdate(kind string, meta models.UpdateMeta, payload map[string]interface{}) (*structpb.Struct, error) {
	ts := meta.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return structpb.NewStruct(map[string]interface{}{
		"update_id": uuid.NewString(),
		"type":      kind,
		"timestamp": ts.UTC().Unix(),
		"payload":   payload,
	})
}

func (s *UpdatesStorage) roomCreatedToProtobuf(room *models.RoomCreated) (*structpb.Struct, error) {
	return s.newUpdate(UpdateRoomCreated, room.UpdateMeta, map[string]interface{}{
		"room_id":    formatId(room.RoomID),
		"title":      room.Title,
		"creator_id": formatId(room.CreatorID),
	})
}

func (s *UpdatesStorage) memberJoinedToProtobuf(member *models.MemberJoined) (*structpb.Struct, error) {
	return s.newUpdate(UpdateMemberJoined, member.UpdateMeta, map[string]interface{}{
		"room_id":  formatId(member.RoomID),
		"user_id":  formatId(member.UserID),
		"is_admin": member.IsAdmin,
		"rejoined": member.Rejoined,
	})
}

func (s *UpdatesStorage) memberLeftToProtobuf(member *models.MemberLeft) (*structpb.Struct, error) {
	return s.newUpdate(UpdateMemberLeft, member.UpdateMeta, map[string]interface{}{
		"room_id": formatId(member.RoomID),
		"user_id": formatId(member.UserID),
	})
}

func (s *UpdatesStorage) memberPromotedToProtobuf(member *models.MemberPromoted) (*structpb.Struct, error) {
	return s.newUpdate(UpdateMemberPromoted, member.UpdateMeta, map[string]interface{}{
		"room_id":  formatId(member.RoomID),
		"user_id":  formatId(member.UserID),
		"actor_id": formatId(member.ActorID),
	})
}

func (s *UpdatesStorage) RoomCreated(room *models.RoomCreated) error {
	update, err := s.roomCreatedToProtobuf(room)
	if err != nil {
		return err
	}
	return s.putUpdate(s.cfg.UpdatesTopic, formatId(room.RoomID), update)
}

func (s *UpdatesStorage) MemberJoined(member *models.MemberJoined) error {
	update, err := s.memberJoinedToProtobuf(member)
	if err != nil {
		return err
	}
	return s.putUpdate(s.cfg.UpdatesTopic, formatId(member.RoomID), update)
}

func (s *UpdatesStorage) MemberLeft(member *models.MemberLeft) error {
	update, err := s.memberLeftToProtobuf(member)
	if err != nil {
		return err
	}
	return s.putUpdate(s.cfg.UpdatesTopic, formatId(member.RoomID), update)
}

func (s *UpdatesStorage) MemberPromoted(member *models.MemberPromoted) error {
	update, err := s.memberPromotedToProtobuf(member)
	if err != nil {
		return err
	}
	return s.putUpdate(s.cfg.UpdatesTopic, formatId(member.RoomID), update)
}
