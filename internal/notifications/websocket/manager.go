package websocket

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"fairwork/labor-trust/labor-trust-backend/internal/notifications"
)

// Manager handles WebSocket connections for the reviewer feed
type Manager struct {
	connections map[string]*Connection
	mu          sync.RWMutex
	broadcast   chan notifications.WebSocketMessage
	stop        chan struct{}
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// Connection represents a connected reviewer client
type Connection struct {
	ID           string
	Conn         *websocket.Conn
	Send         chan notifications.WebSocketMessage
	LastActivity time.Time
	mu           sync.Mutex
}

// NewManager creates a new WebSocket manager
func NewManager(logger *zap.Logger) *Manager {
	m := &Manager{
		connections: make(map[string]*Connection),
		broadcast:   make(chan notifications.WebSocketMessage, 256),
		stop:        make(chan struct{}),
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// In production, implement proper origin checking
				return true
			},
		},
	}

	go m.run()
	return m
}

// HandleConnection upgrades an HTTP request and registers the client
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request) (*Connection, error) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:           uuid.New().String(),
		Conn:         conn,
		Send:         make(chan notifications.WebSocketMessage, 256),
		LastActivity: time.Now(),
	}

	m.mu.Lock()
	m.connections[connection.ID] = connection
	m.mu.Unlock()

	go m.readPump(connection)
	go m.writePump(connection)

	return connection, nil
}

// Broadcast queues a message for every connected client
func (m *Manager) Broadcast(msg notifications.WebSocketMessage) {
	select {
	case m.broadcast <- msg:
	default:
		m.logger.Warn("websocket broadcast queue full, message dropped",
			zap.String("type", msg.Type))
	}
}

func (m *Manager) run() {
	for {
		select {
		case msg := <-m.broadcast:
			m.mu.RLock()
			for _, conn := range m.connections {
				select {
				case conn.Send <- msg:
				default:
					// Slow consumer; drop rather than block the feed.
				}
			}
			m.mu.RUnlock()
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) readPump(conn *Connection) {
	defer func() {
		m.removeConnection(conn)
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(512)
	conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Debug("websocket read error", zap.Error(err))
			}
			break
		}
		conn.mu.Lock()
		conn.LastActivity = time.Now()
		conn.mu.Unlock()
	}
}

func (m *Manager) writePump(conn *Connection) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (m *Manager) removeConnection(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.connections[conn.ID]; ok {
		delete(m.connections, conn.ID)
		close(conn.Send)
	}
}

// Close shuts down the manager and all connections
func (m *Manager) Close() {
	close(m.stop)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, conn := range m.connections {
		conn.Conn.Close()
		close(conn.Send)
		delete(m.connections, id)
	}
}
