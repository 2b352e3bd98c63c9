package wshub

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sebitommy123/SA/hub"
	"github.com/sebitommy123/SA/log"
)

// Serve upgrades incoming requests to the debug websocket stream: each
// client signs on to h and receives a copy of every subsequent Event
// broadcast.
func Serve(h *hub.Hub, lg log.Logger) http.HandlerFunc {
	upgr := &websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		wc, err := upgr.Upgrade(w, r, nil)
		if err != nil {
			lg.Error("hub ws upgrade failed", "err", err)
			return
		}
		id := hub.NextID()
		c := newConn(id, wc, make(chan *hub.Msg, 32))
		c.route = h.Chan()
		hub.Signon(h, c)
		go c.writeAll(id, lg)
		err = c.read()
		hub.Signoff(h, c)
		if err != nil {
			lg.Error("hub ws read failed", "err", err)
		}
	}
}
