package remote

import (
	"net/http"
	"time"

	"airadio/internal/radio/session"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	// the remote is meant for the local network
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// command is what a websocket client may send.
type command struct {
	Action  string   `json:"action"`
	Volume  *float64 `json:"volume,omitempty"`
	Minutes *float64 `json:"minutes,omitempty"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("ws upgrade failed")
		return
	}

	l := s.controls.Subscribe(16)
	done := make(chan struct{})

	go s.readPump(conn, done)
	s.writePump(conn, l.C, done)
	s.controls.Unsubscribe(l)
}

// writePump forwards status snapshots until the feed closes or the client
// goes away.
func (s *Server) writePump(conn *websocket.Conn, feed <-chan session.Status, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case st, ok := <-feed:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := conn.WriteJSON(st); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.WithError(err).Debug("ws read failed")
			}
			return
		}
		s.apply(cmd)
	}
}

func (s *Server) apply(cmd command) {
	switch cmd.Action {
	case "skip":
		s.controls.Skip()
	case "favorite":
		s.controls.Favorite()
	case "mute":
		s.controls.ToggleMute()
	case "volume":
		if cmd.Volume == nil {
			s.log.Debug("ws volume command without a volume")
			return
		}
		s.controls.SetVolume(*cmd.Volume)
	case "sleep":
		var d time.Duration
		if cmd.Minutes != nil && *cmd.Minutes > 0 {
			d = time.Duration(*cmd.Minutes * float64(time.Minute))
		}
		s.controls.SetSleepTimer(d)
	case "close":
		s.controls.Close()
	default:
		s.log.WithField("action", cmd.Action).Debug("Unknown ws command")
	}
}
