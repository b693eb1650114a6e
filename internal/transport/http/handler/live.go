package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leanderkretschmer/lotify/internal/application/delivery"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// LiveHandler upgrades to a websocket and runs the delivery loop for the
// connection's public key.
type LiveHandler struct {
	loop     *delivery.Loop
	registry *delivery.Registry
}

func NewLiveHandler(loop *delivery.Loop, registry *delivery.Registry) *LiveHandler {
	return &LiveHandler{loop: loop, registry: registry}
}

func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	publicKey := chi.URLParam(r, "publicKey")

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("ws accept for %s: %v", publicKey, err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "delivery aborted")

	// CloseRead cancels the context as soon as the peer disconnects, which
	// in turn cancels the loop mid-wait.
	ctx := c.CloseRead(r.Context())

	sink := &wsSink{conn: c}
	h.registry.Register(publicKey, sink)
	defer h.registry.Deregister(publicKey, sink)

	err = h.loop.Run(ctx, publicKey, sink)
	switch {
	case errors.Is(err, context.Canceled):
		c.Close(websocket.StatusNormalClosure, "")
	case err != nil:
		log.Printf("ws delivery for %s: %v", publicKey, err)
	}
}

// wsSink transmits delivery payloads as JSON text frames.
type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) Send(ctx context.Context, p delivery.Payload) error {
	return wsjson.Write(ctx, s.conn, p)
}
