package devbridge

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

// request and response mirror the wsbridge frame shapes.
type request struct {
	ID     uint64            `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

type response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Handler returns an http.Handler that upgrades the request to a WebSocket
// and serves the bridge wire protocol against the backend.
func Handler(backend *Backend) http.Handler {
	upgrader := websocket.Upgrader{
		// Dev harness only; the real bridge never crosses origins.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			backend.logger.Error("bridge upgrade failed", "error", err)
			return
		}
		defer ws.Close()
		serve(backend, ws)
	})
}

func serve(backend *Backend, ws *websocket.Conn) {
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var req request
		if err := json.Unmarshal(msg, &req); err != nil {
			backend.logger.Error("bridge frame decode error", "error", err)
			continue
		}

		resp := response{ID: req.ID}
		result, err := backend.Handle(req.Method, req.Params)
		if err != nil {
			resp.Error = err.Error()
		} else if result != nil {
			raw, err := json.Marshal(result)
			if err != nil {
				resp.Error = err.Error()
			} else {
				resp.Result = raw
			}
		}

		data, err := json.Marshal(resp)
		if err != nil {
			backend.logger.Error("bridge response encode error", "error", err)
			continue
		}
		if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
