package main

import (
	"fmt"

	"grabd/internal/ipc"
	"grabd/internal/message"
	"grabd/internal/wire"
)

// request sends one message to the running daemon and returns its reply.
// An ERROR reply is surfaced as a Go error so callers only handle the
// success shape.
func request(msg *message.Message) (*message.Message, error) {
	conn, err := ipc.Dial()
	if err != nil {
		return nil, fmt.Errorf("no running grabd daemon (%s): %w", ipc.SocketPath(), err)
	}
	defer conn.Close()

	wc := wire.New(conn)
	if err := wc.WriteMsg(msg); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	reply, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	if reply.Type == message.TypeError {
		return nil, fmt.Errorf("%s", reply.Error)
	}
	return reply, nil
}
