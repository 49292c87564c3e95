package session

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/daily-hug/internal/service/conversation"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func stateMessage(state conversation.State) outgoingMessage {
	return outgoingMessage{Type: "state", Data: state, Timestamp: time.Now().Unix()}
}

func errorMessage(message string) outgoingMessage {
	return outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
}

// handleWebSocket 推送会话状态，并接收用户消息
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	controller, err := h.sessions.Controller(sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 所有数据帧都经由 writeLoop 写出，gorilla 连接只允许一个并发写者。
	outbound := make(chan outgoingMessage, 16)
	send := func(msg outgoingMessage) {
		select {
		case outbound <- msg:
		case <-ctx.Done():
		}
	}

	unsubscribe := controller.Subscribe(func(state conversation.State) {
		send(stateMessage(state))
	})
	defer unsubscribe()

	go writeLoop(ctx, cancel, conn, outbound)
	go pingLoop(ctx, conn)

	send(stateMessage(controller.State()))

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		switch msg.Type {
		case "message":
			go func(text string) {
				err := h.sessions.Submit(ctx, sessionID, text)
				if err == nil || errors.Is(err, conversation.ErrEmptyInput) {
					return
				}
				send(errorMessage(err.Error()))
			}(msg.Text)
		default:
			send(errorMessage("unsupported message type: " + msg.Type))
		}
	}
}

func writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, outbound <-chan outgoingMessage) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-outbound:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("[websocket] write %s failed: %v", msg.Type, err)
				return
			}
		}
	}
}

// pingLoop 定期发送ping消息
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
