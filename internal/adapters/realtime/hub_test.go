package realtime_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/adapters/realtime"
	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) SendMessage(ctx context.Context, senderID string, req dto.SendMessageRequest) (*domain.ChatMessage, bool, error) {
	args := m.Called(ctx, senderID, req)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.ChatMessage), args.Bool(1), args.Error(2)
}

func (m *MockChatService) MarkDelivered(ctx context.Context, receiverID, messageID string) error {
	args := m.Called(ctx, receiverID, messageID)
	return args.Error(0)
}

func (m *MockChatService) Typing(ctx context.Context, senderID, receiverID string) error {
	args := m.Called(ctx, senderID, receiverID)
	return args.Error(0)
}

func (m *MockChatService) PendingMessages(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatMessage), args.Error(1)
}

func (m *MockChatService) ListConversation(ctx context.Context, userID, partnerID string, params dto.ListMessagesParams) ([]domain.ChatMessage, *string, error) {
	args := m.Called(ctx, userID, partnerID, params)
	return args.Get(0).([]domain.ChatMessage), args.Get(1).(*string), args.Error(2)
}

func (m *MockChatService) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Conversation), args.Error(1)
}

var _ portssvc.ChatSvcFacade = (*MockChatService)(nil)

type HubTestSuite struct {
	suite.Suite
	hub    *realtime.Hub
	chat   *MockChatService
	server *httptest.Server
}

func (s *HubTestSuite) SetupTest() {
	hub, err := realtime.NewHub(8)
	s.Require().NoError(err)
	s.hub = hub
	s.chat = new(MockChatService)
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = s.hub.Serve(w, r, r.URL.Query().Get("user"), s.chat)
	}))
}

func (s *HubTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *HubTestSuite) dial(userID string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { conn.Close() })
	s.Require().Eventually(func() bool {
		return s.hub.ConnectionCount(userID) > 0
	}, 2*time.Second, 10*time.Millisecond)
	return conn
}

func (s *HubTestSuite) read(conn *websocket.Conn) realtime.Frame {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var frame realtime.Frame
	s.Require().NoError(conn.ReadJSON(&frame))
	return frame
}

func (s *HubTestSuite) TestJoin_RedeliversPending() {
	pending := []domain.ChatMessage{{MessageID: "m-1", SenderID: "u-2", ReceiverID: "u-1", Body: "hi"}}
	s.chat.On("PendingMessages", mock.Anything, "u-1").Return(pending, nil).Once()

	conn := s.dial("u-1")
	frame := s.read(conn)

	s.Equal(portssvc.ChatEventMessage, frame.Event)
	var msg domain.ChatMessage
	s.Require().NoError(json.Unmarshal(frame.Data, &msg))
	s.Equal("m-1", msg.MessageID)
}

func (s *HubTestSuite) TestSendMessage_Acked() {
	s.chat.On("PendingMessages", mock.Anything, "u-1").Return(nil, nil).Once()
	req := dto.SendMessageRequest{MessageID: "m-7", ReceiverID: "u-2", Body: "hello"}
	s.chat.On("SendMessage", mock.Anything, "u-1", req).
		Return(&domain.ChatMessage{MessageID: "m-7"}, true, nil).Once()

	conn := s.dial("u-1")
	s.Require().NoError(conn.WriteJSON(map[string]any{
		"event": "message",
		"data":  map[string]string{"messageID": "m-7", "receiverID": "u-2", "body": "hello"},
	}))
	frame := s.read(conn)

	s.Equal(portssvc.ChatEventAck, frame.Event)
	var ack realtime.Ack
	s.Require().NoError(json.Unmarshal(frame.Data, &ack))
	s.Equal(realtime.Ack{MessageID: "m-7", Status: "duplicate"}, ack)
	s.chat.AssertExpectations(s.T())
}

func (s *HubTestSuite) TestInvalidFrame_Rejected() {
	s.chat.On("PendingMessages", mock.Anything, "u-1").Return(nil, nil).Once()

	conn := s.dial("u-1")
	s.Require().NoError(conn.WriteJSON(map[string]any{
		"event": "message",
		"data":  map[string]string{"messageID": "m-7", "body": ""},
	}))
	frame := s.read(conn)

	s.Equal(portssvc.ChatEventError, frame.Event)
	var payload realtime.ErrorPayload
	s.Require().NoError(json.Unmarshal(frame.Data, &payload))
	s.Equal("BAD_FRAME", payload.Code)
	s.chat.AssertNotCalled(s.T(), "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HubTestSuite) TestDelivered_ForbiddenReported() {
	s.chat.On("PendingMessages", mock.Anything, "u-1").Return(nil, nil).Once()
	s.chat.On("MarkDelivered", mock.Anything, "u-1", "m-9").Return(apperrors.ErrForbidden).Once()

	conn := s.dial("u-1")
	s.Require().NoError(conn.WriteJSON(map[string]any{
		"event": "delivered",
		"data":  map[string]string{"messageID": "m-9"},
	}))
	frame := s.read(conn)

	var payload realtime.ErrorPayload
	s.Require().NoError(json.Unmarshal(frame.Data, &payload))
	s.Equal("FORBIDDEN", payload.Code)
	s.Equal("m-9", payload.MessageID)
}

func (s *HubTestSuite) TestPush_FansOutToEveryConnection() {
	s.chat.On("PendingMessages", mock.Anything, "u-1").Return(nil, nil).Twice()

	first := s.dial("u-1")
	second := s.dial("u-1")
	s.Require().Eventually(func() bool {
		return s.hub.ConnectionCount("u-1") == 2
	}, 2*time.Second, 10*time.Millisecond)

	queued := s.hub.Push("u-1", portssvc.ChatEventTyping, dto.TypingIndicator{SenderID: "u-2"})

	s.Equal(2, queued)
	s.Equal(portssvc.ChatEventTyping, s.read(first).Event)
	s.Equal(portssvc.ChatEventTyping, s.read(second).Event)
	s.Zero(s.hub.Push("nobody", portssvc.ChatEventTyping, dto.TypingIndicator{SenderID: "u-2"}))
}

func (s *HubTestSuite) TestDisconnect_Unregisters() {
	s.chat.On("PendingMessages", mock.Anything, "u-1").Return(nil, nil).Once()

	conn := s.dial("u-1")
	s.Require().NoError(conn.Close())

	s.Eventually(func() bool {
		return s.hub.ConnectionCount("u-1") == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub(t *testing.T) {
	suite.Run(t, new(HubTestSuite))
}
