package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/middlewares"
	"github.com/ye11ow-banana/main-be/services"
)

const wsPingInterval = 25 * time.Second

type RealtimeController struct {
	log      *logger.Logger
	rt       *services.RealtimeHub
	upgrader websocket.Upgrader
}

func NewRealtimeController(log *logger.Logger, rt *services.RealtimeHub, origins []string) *RealtimeController {
	allowed := map[string]bool{}
	for _, o := range origins {
		allowed[o] = true
	}
	return &RealtimeController{
		log: log,
		rt:  rt,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// DaysWS streams day.updated events of the authenticated user.
func (rc *RealtimeController) DaysWS(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	conn, err := rc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		rc.log.Debug("websocket upgrade failed", "error", err)
		return
	}
	cl := &services.WSClient{UserID: user.ID, Conn: conn}
	rc.rt.Register(cl)

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(wsPingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := cl.Write(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// read loop ends on client close or error
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			rc.rt.Unregister(cl)
			return
		}
	}
}
