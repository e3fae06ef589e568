// Package ipcpeer adapts one accepted IPC connection into a request
// handler and, after a WATCH request, into a hub.Subscriber that streams
// accepted-entry events.
package ipcpeer

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"grabd/internal/engine"
	"grabd/internal/hub"
	"grabd/internal/message"
	"grabd/internal/wire"
)

var nextID atomic.Uint64

// Peer wraps a single IPC connection.
type Peer struct {
	id   string
	conn *wire.Conn
	eng  *engine.Engine
	h    *hub.Hub

	sendCh chan *message.Message

	mu          sync.Mutex
	watching    bool
	closed      bool
	connectedAt time.Time
	lastSeen    atomic.Int64 // UnixNano
}

// New creates a Peer for conn.
func New(conn net.Conn, eng *engine.Engine, h *hub.Hub) *Peer {
	now := time.Now()
	p := &Peer{
		id:          fmt.Sprintf("ipc-%d", nextID.Add(1)),
		conn:        wire.New(conn),
		eng:         eng,
		h:           h,
		sendCh:      make(chan *message.Message, 64),
		connectedAt: now,
	}
	p.lastSeen.Store(now.UnixNano())
	return p
}

func (p *Peer) ID() string { return p.id }

// Info implements hub.Subscriber.
func (p *Peer) Info() message.SubscriberInfo {
	return message.SubscriberInfo{
		ID:          p.id,
		Addr:        p.conn.RemoteAddr().String(),
		ConnectedAt: p.connectedAt,
		LastSeen:    time.Unix(0, p.lastSeen.Load()),
	}
}

// Send implements hub.Subscriber: queues an accepted-entry event for the
// write loop. Never blocks; a slow watcher drops events rather than
// stalling the capture pipeline.
func (p *Peer) Send(ev hub.Event) {
	p.enqueue(&message.Message{
		Type:    message.TypeEvent,
		Entries: []message.Entry{message.FromHistory(ev.Entry)},
	})
}

// enqueue hands msg to the write loop without blocking. Dropped if the
// channel is full or the peer is shutting down.
func (p *Peer) enqueue(msg *message.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.sendCh <- msg:
	default:
		slog.Warn("send channel full, dropping message", "peer", p.id)
	}
}

// Serve answers requests on the connection until it closes. Blocks; call
// in a goroutine.
func (p *Peer) Serve() {
	defer p.conn.Close()
	log := slog.With("peer", p.id)

	defer func() {
		p.mu.Lock()
		watching := p.watching
		p.mu.Unlock()
		if watching {
			p.h.Unsubscribe(p)
		}
		// Release the write loop; Send checks closed under the same lock,
		// so no event can race the close.
		p.mu.Lock()
		p.closed = true
		close(p.sendCh)
		p.mu.Unlock()
	}()

	for {
		msg, err := p.conn.ReadMsg()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Debug("connection closed", "err", err)
			}
			return
		}
		p.lastSeen.Store(time.Now().UnixNano())

		var reply *message.Message
		switch msg.Type {
		case message.TypeList:
			reply = p.handleList(msg)
		case message.TypeQuick:
			reply = p.handleQuick()
		case message.TypeGet:
			reply = p.handleGet(msg)
		case message.TypeRecopy:
			reply = p.handleRecopy(msg)
		case message.TypeRemove:
			reply = p.handleRemove(msg)
		case message.TypeStatus:
			reply = p.handleStatus()
		case message.TypeWatch:
			// Acknowledge before subscribing so the OK cannot trail an
			// event on the wire.
			if err := p.conn.WriteMsg(&message.Message{Type: message.TypeOK}); err != nil {
				log.Debug("write failed", "err", err)
				return
			}
			p.startWatch()
			continue
		default:
			reply = message.Errorf("unexpected message type %q", msg.Type)
		}

		// Once the write loop owns the connection, replies go through it
		// too; before that, writing directly is safe.
		p.mu.Lock()
		watching := p.watching
		p.mu.Unlock()
		if watching {
			p.enqueue(reply)
			continue
		}
		if err := p.conn.WriteMsg(reply); err != nil {
			log.Debug("write failed", "err", err)
			return
		}
	}
}

func (p *Peer) handleList(msg *message.Message) *message.Message {
	limit := msg.Limit
	if limit <= 0 {
		limit = 50
	}
	entries := p.eng.Store().List(limit, msg.Offset)
	return &message.Message{
		Type:    message.TypeEntries,
		Entries: message.FromHistorySlice(entries),
	}
}

func (p *Peer) handleQuick() *message.Message {
	snap := p.eng.Cache().Snapshot()
	return &message.Message{
		Type: message.TypeSnapshot,
		Snapshot: &message.Snapshot{
			Logs:    message.FromHistorySlice(snap.Logs),
			Prompts: message.FromHistorySlice(snap.Prompts),
			Images:  message.FromHistorySlice(snap.Images),
			Other:   message.FromHistorySlice(snap.Other),
		},
	}
}

func (p *Peer) handleGet(msg *message.Message) *message.Message {
	entry, ok := p.eng.Store().Get(msg.ID)
	if !ok {
		return message.Errorf("entry %s not found", msg.ID)
	}
	return &message.Message{
		Type:    message.TypeEntries,
		Entries: []message.Entry{message.FromHistory(entry)},
	}
}

func (p *Peer) handleRecopy(msg *message.Message) *message.Message {
	if err := p.eng.Recopy(msg.ID); err != nil {
		return message.Errorf("recopy: %v", err)
	}
	return &message.Message{Type: message.TypeOK}
}

func (p *Peer) handleRemove(msg *message.Message) *message.Message {
	if !p.eng.Remove(msg.ID) {
		return message.Errorf("entry %s not found", msg.ID)
	}
	return &message.Message{Type: message.TypeOK}
}

func (p *Peer) handleStatus() *message.Message {
	return &message.Message{
		Type:        message.TypeStatusResponse,
		Backend:     p.eng.BackendName(),
		Total:       p.eng.Store().Len(),
		Subscribers: p.h.Subscribers(),
	}
}

// startWatch registers with the hub and starts the write loop that streams
// events until the connection closes.
func (p *Peer) startWatch() {
	p.mu.Lock()
	if p.watching {
		p.mu.Unlock()
		return
	}
	p.watching = true
	p.mu.Unlock()

	p.h.Subscribe(p)
	go func() {
		for msg := range p.sendCh {
			if err := p.conn.WriteMsg(msg); err != nil {
				p.conn.Close()
				return
			}
		}
	}()
}

// Compile-time check that Peer satisfies hub.Subscriber.
var _ hub.Subscriber = (*Peer)(nil)
