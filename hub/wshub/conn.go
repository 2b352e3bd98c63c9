package wshub

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sebitommy123/SA/hub"
	"github.com/sebitommy123/SA/log"
)

const writeTimeout = 10 * time.Second

// conn adapts a websocket connection to hub.Conn, framing hub.Msg values as
// "subject[#token]\npayload" text frames.
type conn struct {
	id    int64
	wc    *websocket.Conn
	route chan<- *hub.Msg
	send  chan *hub.Msg
}

func newConn(id int64, wc *websocket.Conn, send chan *hub.Msg) *conn {
	return &conn{id: id, wc: wc, send: send}
}

func (c *conn) ID() int64             { return c.id }
func (c *conn) Chan() chan<- *hub.Msg { return c.send }

func (c *conn) read() error {
	for {
		op, r, err := c.wc.NextReader()
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil // ignore error client disconnected
			}
			if cerr, ok := err.(*websocket.CloseError); ok && cerr.Code == 1001 {
				return nil // ignore error client disconnected
			}
			return fmt.Errorf("wshub client next reader: %w", err)
		}
		if op == websocket.BinaryMessage {
			return errors.New("wshub client unexpected binary message")
		}
		if op != websocket.TextMessage {
			continue
		}
		m, err := readMsg(r)
		if err != nil {
			return fmt.Errorf("wshub msg read failed: %w", err)
		}
		m.From = c
		c.route <- m
	}
}

// readAll reads messages until the connection closes and sends each onto r,
// used by the debug client side (hub/wshub.Client.Connect).
func (c *conn) readAll(r chan<- *hub.Msg) error {
	c.route = r
	return c.read()
}

// writeAll drains c.send to the websocket until the channel is closed or
// the hub sends its nil sign-off message, pinging periodically to keep the
// connection alive.
func (c *conn) writeAll(id int64, lg log.Logger) {
	defer c.wc.Close()
	t := time.NewTicker(60 * time.Second)
	defer t.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok || msg == nil {
				c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
				c.wc.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.writeMsg(msg); err != nil {
				lg.Error("wshub client write failed", "err", err)
				return
			}
		case <-t.C:
			c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.wc.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

func readMsg(r io.Reader) (*hub.Msg, error) {
	var b bytes.Buffer
	_, err := b.ReadFrom(r)
	if err != nil {
		return nil, err
	}
	var tok, body []byte
	head := b.Bytes()
	idx := bytes.IndexByte(head, '\n')
	if idx >= 0 {
		head, body = head[:idx], head[idx+1:]
	}
	idx = bytes.IndexByte(head, '#')
	if idx >= 0 {
		head, tok = head[:idx], head[idx+1:]
	}
	if len(head) == 0 {
		return nil, errors.New("message without subject")
	}
	return &hub.Msg{
		Subj: string(head),
		Tok:  copyBytes(tok),
		Raw:  copyBytes(body),
	}, nil
}

func (c *conn) writeMsg(msg *hub.Msg) error {
	var b bytes.Buffer
	if err := writeMsgTo(&b, msg); err != nil {
		return err
	}
	c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.wc.WriteMessage(websocket.TextMessage, b.Bytes())
}

func writeMsgTo(b *bytes.Buffer, m *hub.Msg) error {
	_, err := b.WriteString(m.Subj)
	if err != nil {
		return err
	}
	if len(m.Tok) != 0 {
		b.WriteByte('#')
		_, err = b.Write(m.Tok)
		if err != nil {
			return err
		}
	}
	if len(m.Raw) != 0 {
		b.WriteByte('\n')
		_, err = b.Write(m.Raw)
		return err
	}
	if m.Data != nil {
		b.WriteByte('\n')
		return json.NewEncoder(b).Encode(m.Data)
	}
	return nil
}

func copyBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	res := make([]byte, len(b))
	copy(res, b)
	return res
}
