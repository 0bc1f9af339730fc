package net

import (
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"time"

	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/observability"
	"horde-hunt/server/internal/room"
	"horde-hunt/server/internal/telemetry"
	"horde-hunt/server/logging"
)

const maxConfigBody = 64 << 10

// Rooms is the room registry surface the HTTP API needs.
type Rooms interface {
	Create(id string) (*room.Room, error)
	List() []room.Info
	Config(id string) (config.Config, error)
	UpdateConfig(id string, override []byte) (config.Config, error)
}

// LogStats exposes the event router counters.
type LogStats interface {
	Stats() logging.RouterStats
}

type HTTPHandlerConfig struct {
	ClientDir string
	Logger    telemetry.Logger
	WebSocket nethttp.Handler
	Counters  *telemetry.Counters
	Logging   LogStats
	Started   time.Time

	Observability observability.Config
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func NewHTTPHandler(rooms Rooms, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	started := cfg.Started
	if started.IsZero() {
		started = time.Now()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string            `json:"status"`
			ServerTime int64             `json:"serverTime"`
			Uptime     float64           `json:"uptimeSeconds"`
			Rooms      []room.Info       `json:"rooms"`
			Telemetry  map[string]uint64 `json:"telemetry"`
			Logging    any               `json:"logging,omitempty"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Uptime:     time.Since(started).Seconds(),
			Rooms:      rooms.List(),
			Telemetry:  cfg.Counters.Snapshot(),
		}
		if cfg.Logging != nil {
			payload.Logging = cfg.Logging.Stats()
		}
		writeJSON(w, logger, nethttp.StatusOK, payload)
	})

	mux.HandleFunc("/rooms", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.Method {
		case nethttp.MethodGet:
			writeJSON(w, logger, nethttp.StatusOK, struct {
				Rooms []room.Info `json:"rooms"`
			}{Rooms: rooms.List()})
		case nethttp.MethodPost:
			var req struct {
				ID string `json:"id"`
			}
			if r.Body != nil {
				defer r.Body.Close()
				if err := json.NewDecoder(io.LimitReader(r.Body, maxConfigBody)).Decode(&req); err != nil && err != io.EOF {
					httpError(w, logger, "invalid payload", nethttp.StatusBadRequest)
					return
				}
			}
			created, err := rooms.Create(req.ID)
			switch {
			case errors.Is(err, room.ErrRoomExists):
				httpError(w, logger, err.Error(), nethttp.StatusConflict)
				return
			case errors.Is(err, config.ErrInvalidRoomID):
				httpError(w, logger, err.Error(), nethttp.StatusBadRequest)
				return
			case err != nil:
				httpError(w, logger, err.Error(), nethttp.StatusInternalServerError)
				return
			}
			info, err := created.Info()
			if err != nil {
				httpError(w, logger, err.Error(), nethttp.StatusInternalServerError)
				return
			}
			writeJSON(w, logger, nethttp.StatusCreated, struct {
				Status string    `json:"status"`
				Room   room.Info `json:"room"`
			}{Status: "ok", Room: info})
		default:
			httpError(w, logger, "method not allowed", nethttp.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/rooms/{id}/config", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := r.PathValue("id")
		switch r.Method {
		case nethttp.MethodGet:
			current, err := rooms.Config(id)
			if err != nil {
				httpError(w, logger, err.Error(), statusFor(err))
				return
			}
			writeJSON(w, logger, nethttp.StatusOK, current)
		case nethttp.MethodPost:
			defer r.Body.Close()
			body, err := io.ReadAll(io.LimitReader(r.Body, maxConfigBody))
			if err != nil {
				httpError(w, logger, "failed to read body", nethttp.StatusBadRequest)
				return
			}
			merged, err := rooms.UpdateConfig(id, body)
			if err != nil {
				httpError(w, logger, err.Error(), statusFor(err))
				return
			}
			logger.Printf("room %s config updated", id)
			writeJSON(w, logger, nethttp.StatusOK, struct {
				Status string        `json:"status"`
				Config config.Config `json:"config"`
			}{Status: "ok", Config: merged})
		default:
			httpError(w, logger, "method not allowed", nethttp.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/config/schema", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		data, err := config.SchemaJSON()
		if err != nil {
			httpError(w, logger, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/schema+json")
		w.Write(data)
	})

	if cfg.Observability.Mount(mux) {
		logger.Printf("pprof endpoints enabled")
	}

	if cfg.WebSocket != nil {
		mux.Handle("/ws", cfg.WebSocket)
	}

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return nethttp.StatusNotFound
	case errors.Is(err, config.ErrInvalidOverride), errors.Is(err, config.ErrInvalidRoomID):
		return nethttp.StatusBadRequest
	case errors.Is(err, room.ErrStopped):
		return nethttp.StatusServiceUnavailable
	default:
		return nethttp.StatusInternalServerError
	}
}

func writeJSON(w nethttp.ResponseWriter, logger telemetry.Logger, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Printf("failed to encode response: %v", err)
		nethttp.Error(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, logger telemetry.Logger, msg string, code int) {
	writeJSON(w, logger, code, errorResponse{Status: "error", Error: msg})
}
