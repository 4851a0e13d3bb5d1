package sts

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/sts-risk-cli/internal/model"
	"github.com/sells-group/sts-risk-cli/internal/record"
	"github.com/sells-group/sts-risk-cli/internal/resilience"
)

// AdapterRequest is the name of the form endpoint adapter.
const AdapterRequest = "request"

const maxReplyBytes = 1 << 20

// RequestAdapter posts every wire field as a form and returns the JSON reply.
type RequestAdapter struct {
	url       string
	userAgent string
	client    *http.Client
	pacer     *Pacer
	postDelay time.Duration
	retry     resilience.RetryConfig
}

// RequestOption configures a RequestAdapter.
type RequestOption func(*RequestAdapter)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) RequestOption {
	return func(a *RequestAdapter) { a.client = c }
}

// WithRequestPacer shares a pacer with other workers.
func WithRequestPacer(p *Pacer) RequestOption {
	return func(a *RequestAdapter) { a.pacer = p }
}

// WithPostDelay sets the fixed wait after each reply.
func WithPostDelay(d time.Duration) RequestOption {
	return func(a *RequestAdapter) { a.postDelay = d }
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) RequestOption {
	return func(a *RequestAdapter) { a.retry = cfg }
}

// WithRequestUserAgent sets the User-Agent header.
func WithRequestUserAgent(ua string) RequestOption {
	return func(a *RequestAdapter) { a.userAgent = ua }
}

// NewRequestAdapter creates a RequestAdapter posting to endpoint.
func NewRequestAdapter(endpoint string, opts ...RequestOption) *RequestAdapter {
	a := &RequestAdapter{
		url:       endpoint,
		userAgent: "stsrisk/1.0",
		client:    &http.Client{Timeout: 30 * time.Second},
		pacer:     NewPacer(DefaultPacing),
		postDelay: DefaultPacing,
		retry:     resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.retry.OnRetry == nil {
		a.retry.OnRetry = resilience.RetryLogger(AdapterRequest)
	}
	return a
}

// Name implements Adapter.
func (a *RequestAdapter) Name() string { return AdapterRequest }

// Form encodes rec with every non-internal registry field, empty or not.
func Form(rec *record.Canonical) url.Values {
	form := make(url.Values)
	for _, name := range rec.Registry().WireNames() {
		form.Set(name, rec.Get(name))
	}
	return form
}

// Send implements Adapter.
func (a *RequestAdapter) Send(ctx context.Context, rec *record.Canonical) (model.Reply, error) {
	payload := Form(rec).Encode()

	body, err := resilience.DoVal(ctx, a.retry, func(ctx context.Context) ([]byte, error) {
		if err := a.pacer.Wait(ctx); err != nil {
			return nil, err
		}
		return a.post(ctx, payload)
	})
	if err != nil {
		return model.Reply{}, err
	}
	a.pacer.OnSuccess()

	zap.L().Debug("sts: request reply",
		zap.String("patient_id", rec.ID()),
		zap.Int("bytes", len(body)),
	)

	if err := pause(ctx, a.postDelay); err != nil {
		return model.Reply{}, err
	}
	return model.Reply{Shape: model.ReplyDirect, Body: body}, nil
}

func (a *RequestAdapter) post(ctx context.Context, payload string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, strings.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "sts: create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		te := &TransportError{Adapter: AdapterRequest, Err: err}
		if resilience.IsTransient(err) {
			return nil, resilience.NewTransientError(te, 0)
		}
		return nil, te
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxReplyBytes))
		te := &TransportError{Adapter: AdapterRequest, StatusCode: resp.StatusCode}
		if resp.StatusCode == http.StatusTooManyRequests {
			a.pacer.OnRateLimit()
		}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(te, resp.StatusCode)
		}
		return nil, te
	}

	r, err := decodeCharset(resp.Header.Get("Content-Type"), io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, &TransportError{Adapter: AdapterRequest, Err: eris.Wrap(err, "read reply")}
	}
	return body, nil
}

// decodeCharset converts a reply body to UTF-8 based on its Content-Type.
func decodeCharset(contentType string, body io.Reader) (io.Reader, error) {
	if contentType == "" {
		return body, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body, nil
	}
	cs := strings.ToLower(params["charset"])
	if cs == "" || cs == "utf-8" || cs == "utf8" {
		return body, nil
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return nil, eris.Wrapf(err, "sts: unsupported charset %q", cs)
	}
	return enc.NewDecoder().Reader(body), nil
}
