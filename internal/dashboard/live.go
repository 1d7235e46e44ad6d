package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/conc"

	"github.com/drew/studydash/internal/charts"
	"github.com/drew/studydash/internal/groups"
	"github.com/drew/studydash/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

// Message types on the live channel
const (
	MsgSelect     = "select"
	MsgToggle     = "toggle"
	MsgClose      = "close"
	MsgOutside    = "outside"
	MsgTimer      = "timer"
	MsgLoading    = "loading"
	MsgTransition = "transition"
	MsgDropdown   = "dropdown"
	MsgError      = "error"
)

// ClientMessage is what the browser sends
type ClientMessage struct {
	Type  string `json:"type"`
	Group string `json:"group,omitempty"`
}

// TimerMessage carries the live timer caption
type TimerMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// LoadingMessage announces that a selection started
type LoadingMessage struct {
	Type  string      `json:"type"`
	Group model.Group `json:"group"`
}

// DropdownMessage reports the dropdown state
type DropdownMessage struct {
	Type string `json:"type"`
	Open bool   `json:"open"`
}

// ErrorMessage reports a rejected client message
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ItemMessage is one dropdown entry
type ItemMessage struct {
	Group  model.Group `json:"group"`
	Label  string      `json:"label"`
	Active bool        `json:"active"`
}

// PanelMessage is the group information panel
type PanelMessage struct {
	Visible     bool     `json:"visible"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Icons       []string `json:"icons,omitempty"`
	Count       int      `json:"count"`
}

// TransitionMessage is a finished group selection
type TransitionMessage struct {
	Type       string                   `json:"type"`
	Group      model.Group              `json:"group"`
	Label      string                   `json:"label"`
	Generation uint64                   `json:"generation"`
	Items      []ItemMessage            `json:"items"`
	Destroyed  []string                 `json:"destroyed"`
	Canvases   map[string]string        `json:"canvases"`
	Panel      PanelMessage             `json:"panel"`
	Charts     map[string]*charts.Chart `json:"charts"`
	Failed     []string                 `json:"failed,omitempty"`
	Open       bool                     `json:"open"`
}

func newTransitionMessage(t *groups.Transition) TransitionMessage {
	msg := TransitionMessage{
		Type:       MsgTransition,
		Group:      t.Group,
		Label:      t.Label,
		Generation: t.Generation,
		Destroyed:  t.Destroyed,
		Canvases:   t.Canvases,
		Charts:     t.Charts,
		Open:       t.Open,
		Panel: PanelMessage{
			Visible:     t.Panel.Visible,
			Name:        t.Panel.Info.Name,
			Description: t.Panel.Info.Description,
			Icons:       t.Panel.Info.Icons,
			Count:       t.Panel.Info.Count,
		},
	}
	if msg.Destroyed == nil {
		msg.Destroyed = []string{}
	}
	for _, item := range t.Items {
		msg.Items = append(msg.Items, ItemMessage{Group: item.Group, Label: item.Label, Active: item.Active})
	}
	for canvas := range t.Errors {
		msg.Failed = append(msg.Failed, canvas)
	}
	sort.Strings(msg.Failed)
	return msg
}

// handleLive upgrades to the live channel. The group query parameter is
// the group the page was rendered for.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	cfg, backend := s.current()
	logger := loggerFrom(r.Context(), s.logger)

	group, err := model.ParseGroup(r.URL.Query().Get("group"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("live upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	catalog, order := cfg.Catalog()
	renderers := charts.GroupRenderers()
	canvases := make([]string, len(renderers))
	for i, rd := range renderers {
		canvases[i] = charts.CanvasID(rd, group)
	}

	start, known := ParseStart(cfg.Server.StudyStart)
	lc := &liveConn{
		conn:   conn,
		logger: logger,
		orch: groups.New(catalog, renderers, backend, groups.Options{
			Order:      order,
			Canvases:   canvases,
			Selected:   group,
			Drawn:      canvases,
			LoadingMin: cfg.LoadingMin(),
			Logger:     logger,
		}),
		interval: cfg.TimerInterval(),
		timer:    func() string { return TimerText(start, known, s.now()) },
		out:      make(chan any, 16),
		selects:  make(chan model.Group, 1),
	}

	logger.Debug("live channel opened", "group", group)
	lc.run(r.Context())
	logger.Debug("live channel closed")
}

// liveConn is one browser's live channel. Only the writer goroutine
// writes to conn.
type liveConn struct {
	conn     *websocket.Conn
	logger   *slog.Logger
	orch     *groups.Orchestrator
	interval time.Duration
	timer    func() string
	out      chan any
	// selects holds at most one pending selection
	selects chan model.Group
}

func (c *liveConn) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop(cancel)
	}()

	var wg conc.WaitGroup
	wg.Go(func() { c.timerLoop(ctx) })
	wg.Go(func() { c.selectLoop(ctx) })

	c.readLoop(ctx)

	cancel()
	wg.Wait()
	close(c.out)
	<-writerDone
}

// send queues msg for the writer, giving up once the channel is closing
func (c *liveConn) send(ctx context.Context, msg any) {
	select {
	case c.out <- msg:
	case <-ctx.Done():
	}
}

func (c *liveConn) readLoop(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("live read failed", "err", err)
			}
			return
		}

		switch msg.Type {
		case MsgSelect:
			group, err := model.ParseGroup(msg.Group)
			if err != nil {
				c.send(ctx, ErrorMessage{Type: MsgError, Message: err.Error()})
				continue
			}
			c.send(ctx, LoadingMessage{Type: MsgLoading, Group: group})
			c.queueSelect(group)
		case MsgToggle:
			c.orch.Toggle()
			c.send(ctx, DropdownMessage{Type: MsgDropdown, Open: c.orch.Open()})
		case MsgClose:
			c.orch.Close()
			c.send(ctx, DropdownMessage{Type: MsgDropdown, Open: c.orch.Open()})
		case MsgOutside:
			c.orch.OutsideClick()
			c.send(ctx, DropdownMessage{Type: MsgDropdown, Open: c.orch.Open()})
		case MsgTimer:
			c.send(ctx, TimerMessage{Type: MsgTimer, Text: c.timer()})
		default:
			c.send(ctx, ErrorMessage{Type: MsgError, Message: "unknown message type " + msg.Type})
		}
	}
}

// queueSelect hands group to the select loop, replacing a selection that
// is still waiting. Only the read loop calls it.
func (c *liveConn) queueSelect(group model.Group) {
	select {
	case dropped := <-c.selects:
		c.logger.Debug("dropping superseded group selection", "group", dropped)
	default:
	}
	c.selects <- group
}

// selectLoop runs queued selections one at a time
func (c *liveConn) selectLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case group := <-c.selects:
			c.selectGroup(ctx, group)
		}
	}
}

// selectGroup runs one selection. A selection overtaken by a newer one
// sends nothing.
func (c *liveConn) selectGroup(ctx context.Context, group model.Group) {
	t, err := c.orch.Select(ctx, group)
	if err != nil {
		if errors.Is(err, groups.ErrUnknownGroup) {
			c.send(ctx, ErrorMessage{Type: MsgError, Message: err.Error()})
			return
		}
		c.logger.Error("group selection failed", "group", group, "err", err)
		c.send(ctx, ErrorMessage{Type: MsgError, Message: "group selection failed"})
		return
	}
	if t.Stale {
		return
	}
	c.send(ctx, newTransitionMessage(t))
}

func (c *liveConn) timerLoop(ctx context.Context) {
	c.send(ctx, TimerMessage{Type: MsgTimer, Text: c.timer()})
	if c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.send(ctx, TimerMessage{Type: MsgTimer, Text: c.timer()})
		}
	}
}

// writeLoop owns all writes. After a write error it closes the connection,
// which ends the read loop, and keeps draining until out is closed.
func (c *liveConn) writeLoop(cancel context.CancelFunc) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	failed := false
	fail := func(err error) {
		c.logger.Debug("live write failed", "err", err)
		failed = true
		cancel()
		c.conn.Close()
	}

	for {
		select {
		case msg, ok := <-c.out:
			if !ok {
				if !failed {
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				}
				return
			}
			if failed {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				fail(err)
			}
		case <-ping.C:
			if failed {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				fail(err)
			}
		}
	}
}
