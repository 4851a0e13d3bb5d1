package sts

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sts-risk-cli/internal/model"
	"github.com/sells-group/sts-risk-cli/internal/parse"
	"github.com/sells-group/sts-risk-cli/internal/record"
	"github.com/sells-group/sts-risk-cli/internal/resilience"
	"github.com/sells-group/sts-risk-cli/internal/schema"
)

// AdapterStream is the name of the websocket endpoint adapter.
const AdapterStream = "stream"

const (
	// settleDelay is how long the calculator needs after init before it
	// accepts an update.
	settleDelay = time.Second
	// maxReads bounds the messages read while waiting for results.
	maxReads = 30
)

// SessionState is the progress of one record's websocket session.
type SessionState int

const (
	StateOpened SessionState = iota
	StateInitialized
	StateUpdated
	StateListening
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateOpened:
		return "opened"
	case StateInitialized:
		return "initialized"
	case StateUpdated:
		return "updated"
	case StateListening:
		return "listening"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// envelope is the message frame the calculator exchanges.
type envelope struct {
	Method string         `json:"method"`
	Data   map[string]any `json:"data"`
}

// StreamAdapter runs the init/update handshake over one websocket per record.
type StreamAdapter struct {
	url         string
	origin      string
	referer     string
	userAgent   string
	dialer      *websocket.Dialer
	pacer       *Pacer
	readTimeout time.Duration

	settle   time.Duration
	maxReads int
}

// StreamOption configures a StreamAdapter.
type StreamOption func(*StreamAdapter)

// WithOrigin sets the Origin header sent on dial.
func WithOrigin(origin string) StreamOption {
	return func(a *StreamAdapter) { a.origin = origin }
}

// WithReferer sets the Referer header and the page the session claims to be on.
func WithReferer(referer string) StreamOption {
	return func(a *StreamAdapter) { a.referer = referer }
}

// WithStreamUserAgent sets the User-Agent header sent on dial.
func WithStreamUserAgent(ua string) StreamOption {
	return func(a *StreamAdapter) { a.userAgent = ua }
}

// WithStreamPacer shares a pacer with other workers.
func WithStreamPacer(p *Pacer) StreamOption {
	return func(a *StreamAdapter) { a.pacer = p }
}

// WithReadTimeout bounds each read on the connection.
func WithReadTimeout(d time.Duration) StreamOption {
	return func(a *StreamAdapter) { a.readTimeout = d }
}

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) StreamOption {
	return func(a *StreamAdapter) { a.dialer = d }
}

// NewStreamAdapter creates a StreamAdapter dialing endpoint.
func NewStreamAdapter(endpoint string, opts ...StreamOption) *StreamAdapter {
	a := &StreamAdapter{
		url:         endpoint,
		userAgent:   "stsrisk/1.0",
		dialer:      websocket.DefaultDialer,
		pacer:       NewPacer(DefaultPacing),
		readTimeout: 30 * time.Second,
		settle:      settleDelay,
		maxReads:    maxReads,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Adapter.
func (a *StreamAdapter) Name() string { return AdapterStream }

// Send implements Adapter.
func (a *StreamAdapter) Send(ctx context.Context, rec *record.Canonical) (model.Reply, error) {
	if err := a.pacer.Wait(ctx); err != nil {
		return model.Reply{}, err
	}

	header := http.Header{}
	if a.origin != "" {
		header.Set("Origin", a.origin)
	}
	if a.referer != "" {
		header.Set("Referer", a.referer)
	}
	header.Set("User-Agent", a.userAgent)

	conn, resp, err := a.dialer.DialContext(ctx, a.url, header)
	if err != nil {
		te := &TransportError{Adapter: AdapterStream, Err: err}
		if resp != nil {
			te.StatusCode = resp.StatusCode
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return model.Reply{}, resilience.NewTransientError(te, resp.StatusCode)
			}
		}
		return model.Reply{}, te
	}
	s := &session{conn: conn, id: rec.ID()}
	s.advance(StateOpened)
	defer s.close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := s.write(envelope{Method: "init", Data: InitPayload(rec.Registry(), a.referer)}); err != nil {
		return model.Reply{}, err
	}
	s.advance(StateInitialized)

	if err := pause(ctx, a.settle); err != nil {
		return model.Reply{}, err
	}

	if err := s.write(envelope{Method: "update", Data: UpdatePayload(rec)}); err != nil {
		return model.Reply{}, err
	}
	s.advance(StateUpdated)
	s.advance(StateListening)

	for attempt := 1; attempt <= a.maxReads; attempt++ {
		_ = conn.SetReadDeadline(time.Now().Add(a.readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return model.Reply{}, eris.Wrap(ctx.Err(), "sts: stream cancelled")
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return model.Reply{}, eris.Wrapf(ErrProtocolTimeout, "read timed out after %d messages", attempt-1)
			}
			return model.Reply{}, &TransportError{Adapter: AdapterStream, Err: err}
		}

		for _, fragment := range candidateFragments(msg) {
			res, err := parse.Embedded(fragment)
			if err != nil || len(res.Outcome) == 0 {
				continue
			}
			zap.L().Debug("sts: stream reply matched",
				zap.String("patient_id", rec.ID()),
				zap.Int("attempt", attempt),
			)
			return model.Reply{Shape: model.ReplyEmbedded, Body: []byte(fragment)}, nil
		}
	}
	return model.Reply{}, eris.Wrapf(ErrProtocolTimeout, "%d messages read", a.maxReads)
}

type session struct {
	conn  *websocket.Conn
	id    string
	state SessionState
}

func (s *session) advance(to SessionState) {
	s.state = to
	zap.L().Debug("sts: stream session", zap.String("patient_id", s.id), zap.Stringer("state", to))
}

func (s *session) write(msg envelope) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return eris.Wrapf(err, "sts: encode %s message", msg.Method)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return &TransportError{Adapter: AdapterStream, Err: eris.Wrapf(err, "write %s", msg.Method)}
	}
	return nil
}

func (s *session) close() {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = s.conn.Close()
	s.advance(StateClosed)
}

// InitPayload declares every stream input with its empty placeholder plus the
// client metadata the calculator expects from a browser session.
func InitPayload(reg *schema.Registry, referer string) map[string]any {
	data := clientData(referer)
	for _, in := range reg.StreamInputs() {
		switch in.Shape {
		case schema.StreamList, schema.StreamGroup:
			data[in.Name] = []string{}
		case schema.StreamBool:
			data[in.Name] = false
		default:
			data[in.Name] = nil
		}
	}
	return data
}

func clientData(referer string) map[string]any {
	u, err := url.Parse(referer)
	if err != nil || referer == "" {
		u = &url.URL{Scheme: "https", Host: "riskcalc.sts.org", Path: "/stswebriskcalc/"}
	}
	return map[string]any{
		".clientdata_output_results_hidden": false,
		".clientdata_pixelratio":            1,
		".clientdata_url_protocol":          u.Scheme + ":",
		".clientdata_url_hostname":          u.Hostname(),
		".clientdata_url_port":              u.Port(),
		".clientdata_url_pathname":          u.Path,
		".clientdata_url_search":            "",
		".clientdata_url_hash_initial":      "",
		".clientdata_url_hash":              "",
		".clientdata_singletons":            "",
		".clientdata_allowDataUriScheme":    true,
	}
}

// UpdatePayload maps the non-empty fields of rec to stream inputs. Empty
// fields are omitted.
func UpdatePayload(rec *record.Canonical) map[string]any {
	reg := rec.Registry()
	data := make(map[string]any)
	for _, in := range reg.StreamInputs() {
		switch in.Shape {
		case schema.StreamScalar:
			if v := rec.Get(in.Fields[0]); v != "" {
				data[in.Name] = v
			}
		case schema.StreamList:
			if v := rec.Get(in.Fields[0]); v != "" {
				data[in.Name] = []string{v}
			}
		case schema.StreamBool:
			if rec.Get(in.Fields[0]) == schema.FlagYes {
				data[in.Name] = true
			}
		case schema.StreamGroup:
			var members []string
			for _, name := range in.Fields {
				spec, _ := reg.SpecFor(name)
				v := rec.Get(name)
				switch {
				case v == "":
				case spec.Stream.Member != "":
					if v == schema.FlagYes {
						members = append(members, spec.Stream.Member)
					}
				default:
					members = append(members, v)
				}
			}
			if len(members) > 0 {
				data[in.Name] = members
			}
		}
	}
	return data
}

// candidateFragments returns the html payloads of a message shaped like a
// results reply: an object with an "errors" key and values.<output>.html
// strings. Anything else yields nothing.
func candidateFragments(msg []byte) []string {
	var frame struct {
		Errors json.RawMessage            `json:"errors"`
		Values map[string]json.RawMessage `json:"values"`
	}
	if err := json.Unmarshal(msg, &frame); err != nil || frame.Errors == nil {
		return nil
	}

	outputs := make([]string, 0, len(frame.Values))
	for k := range frame.Values {
		outputs = append(outputs, k)
	}
	sort.Strings(outputs)

	var out []string
	for _, k := range outputs {
		var v struct {
			HTML *string `json:"html"`
		}
		if err := json.Unmarshal(frame.Values[k], &v); err != nil || v.HTML == nil {
			continue
		}
		out = append(out, *v.HTML)
	}
	return out
}
