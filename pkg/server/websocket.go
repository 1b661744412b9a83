package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MASAKi-cell/personstore/pkg/people"
)

// writeWait bounds how long a snapshot write may block.
const writeWait = 10 * time.Second

// Command is a client-to-server frame on the websocket feed.
type Command struct {
	// Type is one of "load", "edit", "set", "cancel", "save".
	Type string `json:"type"`

	// ID is the selection for "edit"; absent means clear the selection.
	ID *int `json:"id,omitempty"`

	// Person is the in-progress record for "set".
	Person *people.Person `json:"person,omitempty"`
}

// handleWS upgrades the connection, sends the current snapshot, then pushes
// a fresh snapshot on every projection change while processing command
// frames from the client.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		server:    s,
		conn:      conn,
		snapshots: make(chan Snapshot, 1),
		done:      make(chan struct{}),
	}
	client.run(r)
}

// wsClient is one connected feed consumer.
type wsClient struct {
	server *Server
	conn   *websocket.Conn

	// snapshots holds at most the latest pending snapshot. Subscriptions
	// fire while the store holds its command lock, so they only enqueue;
	// the writer goroutine does the network I/O. A consumer that falls
	// behind sees the latest state, never a backlog.
	snapshots chan Snapshot
	done      chan struct{}
	closeOnce sync.Once
}

func (c *wsClient) run(r *http.Request) {
	s := c.server

	// Initial snapshot, then one per projection change.
	c.enqueue(s.snapshot())
	go c.writeLoop()

	push := func() { c.enqueue(s.snapshot()) }
	unsubs := []func(){
		s.store.People().Subscribe(func([]people.Person) { push() }),
		s.store.EditID().Subscribe(func(*int) { push() }),
		s.store.EditedPerson().Subscribe(func(*people.Person) { push() }),
	}
	defer func() {
		for _, unsub := range unsubs {
			unsub()
		}
		c.close()
	}()

	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("websocket read error", "error", err)
			}
			return
		}
		c.handle(r, cmd)
	}
}

func (c *wsClient) handle(r *http.Request, cmd Command) {
	s := c.server

	switch cmd.Type {
	case "load":
		list, err := s.svc.List(r.Context())
		if err != nil {
			s.logger.Error("load people failed", "error", err)
			return
		}
		s.store.LoadPeople(list)

	case "edit":
		s.store.EditPerson(cmd.ID)

	case "set":
		s.store.SetEditedPerson(cmd.Person)

	case "cancel":
		s.store.CancelEditPerson()

	case "save":
		s.store.SaveEditPerson(r.Context())

	default:
		s.logger.Warn("unknown websocket command", "type", cmd.Type)
	}
}

// enqueue makes snap the pending snapshot, replacing an undelivered one.
// It never blocks, so projection subscribers return without waiting on the
// consumer.
func (c *wsClient) enqueue(snap Snapshot) {
	for {
		select {
		case <-c.done:
			return
		case c.snapshots <- snap:
			return
		default:
		}
		// Channel full: drop the stale snapshot and retry.
		select {
		case <-c.snapshots:
		default:
		}
	}
}

// writeLoop drains pending snapshots onto the connection. Errors close the
// connection; the read loop then returns and tears the client down.
func (c *wsClient) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case snap := <-c.snapshots:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(snap); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
