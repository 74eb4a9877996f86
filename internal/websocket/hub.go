package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans newly appended chat messages out to each user's websocket
// connections. The gate publishes on redis channel "chat:{username}"; the
// hub keeps one subscription per connected username.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*websocket.Conn
	redisClient *redis.Client
	jwtSecret   []byte
	cancelFuncs map[string]context.CancelFunc
}

func NewHub(redisClient *redis.Client, jwtSecret string) *Hub {
	return &Hub{
		connections: make(map[string][]*websocket.Conn),
		redisClient: redisClient,
		jwtSecret:   []byte(jwtSecret),
		cancelFuncs: make(map[string]context.CancelFunc),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	username, _ := claims["username"].(string)
	if username == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerConnection(username, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(username, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(username string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[username] = append(h.connections[username], conn)

	// First connection for this user starts the pub/sub subscription
	if len(h.connections[username]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[username] = cancel
		go h.subscribeToPubSub(ctx, username)
	}

	log.Printf("WebSocket connected: user %s (total: %d)", username, len(h.connections[username]))
}

func (h *Hub) unregisterConnection(username string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[username]
	for i, c := range conns {
		if c == conn {
			h.connections[username] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// Last connection gone: stop the subscription
	if len(h.connections[username]) == 0 {
		delete(h.connections, username)
		if cancel, ok := h.cancelFuncs[username]; ok {
			cancel()
			delete(h.cancelFuncs, username)
		}
	}

	log.Printf("WebSocket disconnected: user %s", username)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, username string) {
	pubsub := h.redisClient.Subscribe(ctx, "chat:"+username)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(username, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(username string, payload []byte) {
	h.mu.RLock()
	conns := append([]*websocket.Conn(nil), h.connections[username]...)
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("WebSocket write failed for user %s: %v", username, err)
		}
	}
}
