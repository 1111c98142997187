package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fellowship_backend/pkg/logger"
	"fellowship_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	quizShardCount = 32
	presenceTTL    = 2 * time.Minute
	quizChannel    = "quiz_channel"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type QuizClient struct {
	Hub       *QuizHub
	Conn      *websocket.Conn
	Send      chan []byte
	UserID    uint
	SessionID uint
	Limiter   *rate.Limiter
}

// submitPayload 上行作答消息体
type submitPayload struct {
	QuestionID uint `json:"questionId"`
	Option     int  `json:"option"`
}

func (c *QuizClient) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.Uint("userId", c.UserID))
			}
			break
		}

		// 抢答场景下行量大、上行量小，限流主要防刷
		if !c.Limiter.Allow() {
			continue
		}

		var event QuizEvent
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}
		monitoring.QuizEventCounter.WithLabelValues(event.Type, "in").Inc()

		switch event.Type {
		case "submit_answer":
			raw, err := json.Marshal(event.Payload)
			if err != nil {
				continue
			}
			var payload submitPayload
			if err := json.Unmarshal(raw, &payload); err != nil {
				continue
			}
			if _, err := c.Hub.Quiz.SubmitAnswer(c.SessionID, c.UserID, payload.QuestionID, payload.Option); err != nil {
				c.Hub.pushError(c, err)
			}
		}
	}
}

func (c *QuizClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if n := len(c.Send); n > 0 {
				for i := 0; i < n; i++ {
					w.Write(<-c.Send)
				}
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type quizShard struct {
	clients map[uint]*QuizClient
	mu      sync.RWMutex
}

// QuizHub 比赛房间的 WebSocket 枢纽。连接按用户分片，
// 跨实例投递走 Redis 发布订阅，实现 QuizPublisher
type QuizHub struct {
	shards     [quizShardCount]*quizShard
	register   chan *QuizClient
	unregister chan *QuizClient
	Redis      *redis.Client
	Quiz       *LiveQuizService
	ctx        context.Context
}

func NewQuizHub(rdb *redis.Client, quiz *LiveQuizService) *QuizHub {
	h := &QuizHub{
		register:   make(chan *QuizClient),
		unregister: make(chan *QuizClient),
		Redis:      rdb,
		Quiz:       quiz,
		ctx:        context.Background(),
	}
	for i := 0; i < quizShardCount; i++ {
		h.shards[i] = &quizShard{
			clients: make(map[uint]*QuizClient),
		}
	}
	quiz.SetPublisher(h)
	return h
}

func (h *QuizHub) getShard(userID uint) *quizShard {
	return h.shards[userID%quizShardCount]
}

// quizPubSubMessage TargetUser 为 0 表示投给场次内的全部连接
type quizPubSubMessage struct {
	SessionID  uint            `json:"sessionId"`
	TargetUser uint            `json:"targetUser"`
	Payload    json.RawMessage `json:"payload"`
}

func (h *QuizHub) Run() {
	pubsub := h.Redis.Subscribe(h.ctx, quizChannel)
	go func() {
		ch := pubsub.Channel()
		for msg := range ch {
			var psMsg quizPubSubMessage
			if err := json.Unmarshal([]byte(msg.Payload), &psMsg); err != nil {
				logger.Log.Error("PubSub unmarshal error", zap.Error(err))
				continue
			}
			h.deliverLocal(psMsg.SessionID, psMsg.TargetUser, psMsg.Payload)
		}
	}()

	heartbeatTicker := time.NewTicker(1 * time.Minute)
	defer heartbeatTicker.Stop()

	for {
		select {
		case client := <-h.register:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			s.clients[client.UserID] = client
			s.mu.Unlock()
			h.Redis.Set(h.ctx, presenceKey(client.UserID), "true", presenceTTL)
			monitoring.QuizOnlineUsers.Inc()

		case client := <-h.unregister:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if current, ok := s.clients[client.UserID]; ok && current == client {
				delete(s.clients, client.UserID)
				close(client.Send)
				monitoring.QuizOnlineUsers.Dec()
			}
			s.mu.Unlock()
			h.Redis.Del(h.ctx, presenceKey(client.UserID))

		case <-heartbeatTicker.C:
			h.refreshPresence()
		}
	}
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("quiz:online:%d", userID)
}

// refreshPresence 为本实例在线用户批量续期
func (h *QuizHub) refreshPresence() {
	pipe := h.Redis.Pipeline()
	count := 0
	for i := 0; i < quizShardCount; i++ {
		s := h.shards[i]
		s.mu.RLock()
		for userID := range s.clients {
			pipe.Expire(h.ctx, presenceKey(userID), presenceTTL)
			count++
		}
		s.mu.RUnlock()
	}
	if count > 0 {
		pipe.Exec(h.ctx)
	}
}

// PublishToSession 广播给场次内全部连接（经 Redis 扇出到所有实例）
func (h *QuizHub) PublishToSession(sessionID uint, event QuizEvent) {
	h.publish(sessionID, 0, event)
}

// PublishToUser 定向投递，作答结果只回给提交者
func (h *QuizHub) PublishToUser(sessionID, userID uint, event QuizEvent) {
	h.publish(sessionID, userID, event)
}

func (h *QuizHub) publish(sessionID, targetUser uint, event QuizEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	psMsg := quizPubSubMessage{
		SessionID:  sessionID,
		TargetUser: targetUser,
		Payload:    payload,
	}
	raw, _ := json.Marshal(psMsg)
	if err := h.Redis.Publish(h.ctx, quizChannel, raw).Err(); err != nil {
		logger.Log.Error("quiz event publish failed",
			zap.Uint("sessionId", sessionID),
			zap.String("event", event.Type),
			zap.Error(err))
		// Redis 不可用时退化为本实例直投
		h.deliverLocal(sessionID, targetUser, payload)
	}
	monitoring.QuizEventCounter.WithLabelValues(event.Type, "out").Inc()
}

func (h *QuizHub) deliverLocal(sessionID, targetUser uint, payload []byte) {
	if targetUser != 0 {
		s := h.getShard(targetUser)
		s.mu.RLock()
		if client, ok := s.clients[targetUser]; ok && client.SessionID == sessionID {
			select {
			case client.Send <- payload:
			default:
			}
		}
		s.mu.RUnlock()
		return
	}

	for i := 0; i < quizShardCount; i++ {
		s := h.shards[i]
		s.mu.RLock()
		for _, client := range s.clients {
			if client.SessionID != sessionID {
				continue
			}
			select {
			case client.Send <- payload:
			default:
			}
		}
		s.mu.RUnlock()
	}
}

func (h *QuizHub) pushError(c *QuizClient, err error) {
	event := QuizEvent{
		Type:      "error",
		SessionID: c.SessionID,
		Payload:   map[string]string{"message": err.Error()},
	}
	payload, merr := json.Marshal(event)
	if merr != nil {
		return
	}
	select {
	case c.Send <- payload:
	default:
	}
}

func (h *QuizHub) IsUserOnline(userID uint) bool {
	s := h.getShard(userID)
	s.mu.RLock()
	_, ok := s.clients[userID]
	s.mu.RUnlock()
	if ok {
		return true
	}

	val, err := h.Redis.Get(h.ctx, presenceKey(userID)).Result()
	return err == nil && val == "true"
}

// Stop 关闭全部连接并清理在线标记
func (h *QuizHub) Stop() {
	var allUserIDs []uint
	for i := 0; i < quizShardCount; i++ {
		s := h.shards[i]
		s.mu.Lock()
		for userID, client := range s.clients {
			allUserIDs = append(allUserIDs, userID)
			close(client.Send)
			delete(s.clients, userID)
		}
		s.mu.Unlock()
	}

	if len(allUserIDs) > 0 {
		pipe := h.Redis.Pipeline()
		for _, userID := range allUserIDs {
			pipe.Del(h.ctx, presenceKey(userID))
		}
		pipe.Exec(h.ctx)
	}

	monitoring.QuizOnlineUsers.Set(0)
	logger.Log.Info("QuizHub stopped", zap.Int("closedConnections", len(allUserIDs)))
}

// ServeQuizWs 升级连接并挂进枢纽，调用方需已完成鉴权与参赛校验
func ServeQuizWs(hub *QuizHub, w http.ResponseWriter, r *http.Request, userID, sessionID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	client := &QuizClient{
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		UserID:    userID,
		SessionID: sessionID,
		Limiter:   rate.NewLimiter(rate.Limit(10), 20),
	}
	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}
