package handlers

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"frontier-realm/server/logger"
	"frontier-realm/server/network"
)

// ClientManager tracks the greeted clients of the shared world session
type ClientManager struct {
	clients map[string]*network.Connection // connection id to connection
	mutex   sync.RWMutex
	log     *logrus.Entry
}

// NewClientManager creates a new client manager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[string]*network.Connection),
		log:     logger.Log.WithFields(logrus.Fields{"component": "clients"}),
	}
}

// AddClient registers a connection for broadcasts
func (cm *ClientManager) AddClient(conn *network.Connection) {
	cm.mutex.Lock()
	cm.clients[conn.ID()] = conn
	n := len(cm.clients)
	cm.mutex.Unlock()
	cm.log.WithFields(logrus.Fields{"conn": conn.ID(), "clients": n}).Debug("Client registered.")
}

// RemoveClient forgets a connection
func (cm *ClientManager) RemoveClient(id string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.clients, id)
}

// Count returns the number of registered clients
func (cm *ClientManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.clients)
}

// BroadcastToAll sends a message to every registered client
func (cm *ClientManager) BroadcastToAll(msg interface{}) {
	cm.broadcast("", msg)
}

// BroadcastToOthers sends a message to every registered client except excludeID
func (cm *ClientManager) BroadcastToOthers(excludeID string, msg interface{}) {
	cm.broadcast(excludeID, msg)
}

func (cm *ClientManager) broadcast(excludeID string, msg interface{}) {
	cm.mutex.RLock()
	targets := make([]*network.Connection, 0, len(cm.clients))
	for id, conn := range cm.clients {
		if id != excludeID {
			targets = append(targets, conn)
		}
	}
	cm.mutex.RUnlock()

	for _, conn := range targets {
		err := conn.SendMessage(msg)
		if err == nil {
			continue
		}
		// A full buffer has already closed the connection.
		if errors.Is(err, network.ErrSendBufferFull) {
			cm.RemoveClient(conn.ID())
		}
		cm.log.WithError(err).WithField("conn", conn.ID()).Warn("Error broadcasting to client.")
	}
}
