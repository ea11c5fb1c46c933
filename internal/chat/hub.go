package chat

import (
	"log"
	"sync"
)

// JoinRoomRequest asks the hub to place a client into a room.
type JoinRoomRequest struct {
	Client      *Client
	RoomCode    string
	DisplayName string
}

// PublishRequest asks the hub to fan a chat message out to the sender's room.
type PublishRequest struct {
	Client *Client
	Body   string
}

// Hub owns all live chat connections and room membership. Room state itself
// (counts, history) lives in the injected Registry so the HTTP layer shares
// one view with the socket layer.
//
// All membership mutation happens on the Run loop; delivery is at send time
// with no queueing for members who disconnect mid-send.
type Hub struct {
	registry *Registry
	clients  map[*Client]bool
	members  map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	joinRoom   chan *JoinRoomRequest
	leaveRoom  chan *Client
	publish    chan *PublishRequest
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	stopOnce   sync.Once

	mu sync.RWMutex
}

func NewHub(registry *Registry) *Hub {
	return &Hub{
		registry:   registry,
		clients:    make(map[*Client]bool),
		members:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		joinRoom:   make(chan *JoinRoomRequest),
		leaveRoom:  make(chan *Client),
		publish:    make(chan *PublishRequest),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run is the hub event loop. It must run in its own goroutine before any
// client connects.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.members = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if _, ok := h.clients[client]; ok {
					h.handleLeave(client)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mu.Unlock()

		case req := <-h.joinRoom:
			h.mu.Lock()
			if !h.stopped {
				h.handleJoin(req)
			}
			h.mu.Unlock()

		case client := <-h.leaveRoom:
			h.mu.Lock()
			if !h.stopped {
				h.handleLeave(client)
			}
			h.mu.Unlock()

		case req := <-h.publish:
			h.mu.Lock()
			if !h.stopped {
				h.handlePublish(req)
			}
			h.mu.Unlock()
		}
	}
}

// Stop gracefully shuts down the hub and closes every client. Safe to call
// more than once, including concurrently.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client, tolerating a hub that is already stopping.
func (h *Hub) Unregister(client *Client) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()

	if stopped {
		return
	}

	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// handleJoin is called with h.mu held.
func (h *Hub) handleJoin(req *JoinRoomRequest) {
	if !h.registry.Exists(req.RoomCode) {
		// The room was never entered through the HTTP layer or has already
		// been torn down. The registry treats this as a silent no-op; the
		// socket gets an explicit error so the client can recover.
		req.Client.sendError("ROOM_NOT_FOUND", "Room does not exist")
		return
	}

	if req.Client.roomCode == req.RoomCode {
		// Duplicate join for the room the client is already in. Leaving
		// first would drop a sole member's count to zero and tear the room
		// down, so re-sync the history instead.
		req.Client.displayName = req.DisplayName
		if history, err := NewMessage(MessageTypeHistory, HistoryPayload{
			RoomCode: req.RoomCode,
			Messages: h.registry.History(req.RoomCode),
		}); err == nil {
			req.Client.Send(history)
		}
		return
	}

	if req.Client.roomCode != "" {
		h.handleLeave(req.Client)
	}

	req.Client.roomCode = req.RoomCode
	req.Client.displayName = req.DisplayName

	if h.members[req.RoomCode] == nil {
		h.members[req.RoomCode] = make(map[*Client]bool)
	}
	h.members[req.RoomCode][req.Client] = true
	h.registry.Join(req.RoomCode)

	// Replay the room history to the joiner only.
	if history, err := NewMessage(MessageTypeHistory, HistoryPayload{
		RoomCode: req.RoomCode,
		Messages: h.registry.History(req.RoomCode),
	}); err == nil {
		req.Client.Send(history)
	}

	h.broadcastToRoom(req.RoomCode, MessageTypeMemberJoined, MemberEventPayload{
		DisplayName: req.DisplayName,
		Members:     h.registry.Members(req.RoomCode),
	})

	log.Printf("chat: %s joined room %s", req.DisplayName, req.RoomCode)
}

// handleLeave is called with h.mu held.
func (h *Hub) handleLeave(client *Client) {
	code := client.roomCode
	if code == "" {
		return
	}
	client.roomCode = ""

	if clients, ok := h.members[code]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.members, code)
		}
	}
	h.registry.Leave(code)

	h.broadcastToRoom(code, MessageTypeMemberLeft, MemberEventPayload{
		DisplayName: client.displayName,
		Members:     h.registry.Members(code),
	})

	log.Printf("chat: %s left room %s", client.displayName, code)
}

// handlePublish is called with h.mu held. Messages from a client that is not
// in a room are dropped; lifecycle notices are never recorded into history.
func (h *Hub) handlePublish(req *PublishRequest) {
	code := req.Client.roomCode
	if code == "" {
		return
	}

	h.registry.RecordMessage(code, req.Client.displayName, req.Body)
	h.broadcastToRoom(code, MessageTypeChat, BroadcastChatPayload{
		Sender: req.Client.displayName,
		Body:   req.Body,
	})
}

// broadcastToRoom delivers an event to every current member of a room.
// Fire-and-forget: there is no acknowledgment and no retry.
func (h *Hub) broadcastToRoom(code string, msgType MessageType, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		log.Printf("ERROR [chat.Hub] failed to build %s event: %v", msgType, err)
		return
	}
	for client := range h.members[code] {
		client.Send(msg)
	}
}
