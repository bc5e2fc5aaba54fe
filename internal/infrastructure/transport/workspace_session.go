package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"devkit/app/usecase"
	"devkit/internal/domain/entity"
	"devkit/internal/infrastructure/metrics"
)

const (
	writeWait       = 10 * time.Second
	defaultPongWait = 60 * time.Second
	maxMessageSize  = 1 << 20
)

// Client message types.
const (
	msgSelect = "select"
	msgSubmit = "submit"
	msgSwap   = "swap"
	msgClear  = "clear"
)

type clientMessage struct {
	Type    string          `json:"type"`
	Tool    entity.ToolType `json:"tool,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type serverMessage struct {
	Type    string            `json:"type"`
	Current entity.ToolType   `json:"current,omitempty"`
	View    *entity.ViewState `json:"view,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// workspaceSession is one browser tab: a Workspace driven over a websocket.
// Submissions run concurrently; results are applied only if their view token
// is still current.
type workspaceSession struct {
	conn     *websocket.Conn
	tools    usecase.ToolUsecase
	logger   *slog.Logger
	pongWait time.Duration

	mu        sync.Mutex
	workspace *entity.Workspace

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

func newWorkspaceSession(conn *websocket.Conn, tools usecase.ToolUsecase, logger *slog.Logger, pongWait time.Duration) *workspaceSession {
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	return &workspaceSession{
		conn:      conn,
		tools:     tools,
		logger:    logger,
		pongWait:  pongWait,
		workspace: entity.NewWorkspace(),
	}
}

func (s *workspaceSession) run(ctx context.Context) {
	metrics.IncWorkspaceSessions()
	defer metrics.DecWorkspaceSessions()

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.wg.Wait()
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.extendReadDeadline()
	s.conn.SetPongHandler(func(string) error {
		s.extendReadDeadline()
		return nil
	})

	s.mu.Lock()
	initial := s.stateLocked(s.workspace.Current)
	s.mu.Unlock()
	if err := s.send(initial); err != nil {
		return
	}

	s.wg.Add(1)
	go s.pingLoop(ctx)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", "err", err)
			}
			return
		}
		s.extendReadDeadline()

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = s.send(serverMessage{Type: "error", Error: fmt.Sprintf("malformed message: %v", err)})
			continue
		}
		if err := s.handle(ctx, msg); err != nil {
			_ = s.send(serverMessage{Type: "error", Error: err.Error()})
		}
	}
}

func (s *workspaceSession) extendReadDeadline() {
	_ = s.conn.SetReadDeadline(time.Now().Add(s.pongWait))
}

// pingLoop keeps the read deadline moving for live clients; a peer that stops
// answering is dropped once pongWait passes.
func (s *workspaceSession) pingLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.pongWait * 9 / 10)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *workspaceSession) handle(ctx context.Context, msg clientMessage) error {
	switch msg.Type {
	case msgSelect:
		s.mu.Lock()
		err := s.workspace.Select(msg.Tool)
		state := s.stateLocked(msg.Tool)
		s.mu.Unlock()
		if err != nil {
			return err
		}
		return s.send(state)
	case msgSubmit:
		return s.submit(ctx, msg)
	case msgSwap:
		s.mu.Lock()
		err := s.workspace.SwapConversion()
		state := s.stateLocked(entity.ToolYAMLJSON)
		s.mu.Unlock()
		if err != nil {
			return err
		}
		return s.send(state)
	case msgClear:
		s.mu.Lock()
		tool := s.toolOrCurrent(msg.Tool)
		view, err := s.workspace.View(tool)
		if err == nil {
			view.Clear()
		}
		state := s.stateLocked(tool)
		s.mu.Unlock()
		if err != nil {
			return err
		}
		return s.send(state)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

func (s *workspaceSession) submit(ctx context.Context, msg clientMessage) error {
	s.mu.Lock()
	tool := s.toolOrCurrent(msg.Tool)
	view, err := s.workspace.View(tool)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	payload := msg.Payload
	if tool == entity.ToolBase64 {
		payload = s.workspace.ApplyBase64Mode(payload)
	}
	token, err := view.Begin(payload)
	state := s.stateLocked(tool)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if err := s.send(state); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		res, err := s.tools.Invoke(ctx, tool, payload)
		if err != nil {
			res = entity.NewFailure(tool, err.Error())
		}

		s.mu.Lock()
		if !view.Settle(token, res) {
			s.mu.Unlock()
			metrics.IncStaleResult(string(tool))
			s.logger.Debug("dropped stale result", "tool", tool, "request_id", res.RequestID)
			return
		}
		state := s.stateLocked(tool)
		s.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		_ = s.send(state)
	}()
	return nil
}

func (s *workspaceSession) toolOrCurrent(tool entity.ToolType) entity.ToolType {
	if tool == "" {
		return s.workspace.Current
	}
	return tool
}

// stateLocked must be called with mu held.
func (s *workspaceSession) stateLocked(tool entity.ToolType) serverMessage {
	msg := serverMessage{Type: "state", Current: s.workspace.Current}
	if view, err := s.workspace.View(tool); err == nil {
		snap := view.Snapshot()
		msg.View = &snap
	}
	return msg
}

func (s *workspaceSession) send(msg serverMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Warn("websocket write failed", "err", err)
		return err
	}
	return nil
}
