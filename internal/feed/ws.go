package feed

import (
	"io"
	"log"

	"golang.org/x/net/websocket"

	"taskdesk-backend/internal/auth"
)

// ServeWS streams the authenticated user's change events over a websocket
// as JSON frames. The auth middleware must run before this handler.
func ServeWS(hub *Hub) websocket.Handler {
	return func(ws *websocket.Conn) {
		defer ws.Close()

		userID, ok := auth.UserIDFromContext(ws.Request().Context())
		if !ok {
			return
		}

		ch := hub.Subscribe(userID)
		defer hub.Unsubscribe(userID, ch)

		// Drain the client side so a closed peer unblocks the send loop.
		go func() {
			_, _ = io.Copy(io.Discard, ws)
			hub.Unsubscribe(userID, ch)
		}()

		for ev := range ch {
			if err := websocket.JSON.Send(ws, ev); err != nil {
				log.Printf("[WARN] feed send user=%s: %v", userID, err)
				return
			}
		}
	}
}
