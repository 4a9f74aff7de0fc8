package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/the-lightning-land/wifid/eventloop"
	"github.com/the-lightning-land/wifid/network"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	eventBufferSize = 32
)

type wifiEventMessage struct {
	Id    string      `json:"id"`
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func (a *Api) handleGetWifiEvents() http.HandlerFunc {
	upgrader := &websocket.Upgrader{}

	return func(w http.ResponseWriter, r *http.Request) {
		// listeners are in place before the client sees the upgrade
		id := uuid.New().String()
		events := make(chan *wifiEventMessage, eventBufferSize)
		closed := make(chan struct{})

		var subs []*eventloop.Subscription
		for _, name := range network.Events() {
			name := name
			subs = append(subs, a.loop.On(name, func(args ...interface{}) {
				msg := &wifiEventMessage{
					Id:    id,
					Event: name,
				}

				if len(args) > 0 {
					msg.Data = args[0]
				}

				select {
				case events <- msg:
				default:
					a.log.Warnf("Dropping %v event for client %v", name, id)
				}
			}))
		}

		cancel := func() {
			for _, sub := range subs {
				sub.Cancel()
			}
		}

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cancel()
			a.log.Errorf("Could not upgrade connection: %v", err)
			return
		}

		a.log.Debugf("Client %v subscribed to wifi events", id)

		// read pump
		go func() {
			defer func() {
				cancel()
				close(closed)
				c.Close()

				a.log.Debugf("Client %v unsubscribed from wifi events", id)
			}()

			c.SetReadLimit(512)
			c.SetReadDeadline(time.Now().Add(pongWait))
			c.SetPongHandler(func(string) error {
				c.SetReadDeadline(time.Now().Add(pongWait))
				return nil
			})

			for {
				_, _, err := c.ReadMessage()
				if err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
						a.log.Errorf("unexpected websocket closure: %v", err)
					}
					break
				}
			}
		}()

		// write pump
		go func() {
			defer c.Close()

			ticker := time.NewTicker(pingPeriod)
			defer ticker.Stop()

			for {
				select {
				case msg := <-events:
					c.SetWriteDeadline(time.Now().Add(writeWait))

					err := c.WriteJSON(msg)
					if err != nil {
						return
					}
				case <-ticker.C:
					c.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-closed:
					c.SetWriteDeadline(time.Now().Add(writeWait))
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}
		}()
	}
}
