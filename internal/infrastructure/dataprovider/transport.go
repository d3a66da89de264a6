package dataprovider

import (
	"context"
	"fmt"
	"time"

	"whale_analyzer/internal/infrastructure/resilience"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxErrorBodyLen = 256

// Settings holds the per-vendor connection settings.
type Settings struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type request struct {
	method  string
	url     string
	label   string // loggable identity of the call; never contains credentials
	headers map[string]string
	body    []byte
}

// httpTransport executes vendor requests with fasthttp and decodes JSON bodies.
type httpTransport struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

func newHTTPTransport(timeout time.Duration, logger *zap.Logger) *httpTransport {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &httpTransport{
		client: &fasthttp.Client{
			Name:                "whale-analyzer",
			MaxIdleConnDuration: 30 * time.Second,
		},
		timeout: timeout,
		logger:  logger,
	}
}

func (t *httpTransport) getJSON(ctx context.Context, r request, out any) error {
	r.method = fasthttp.MethodGet
	return t.doJSON(ctx, r, out)
}

func (t *httpTransport) postJSON(ctx context.Context, r request, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body for %s: %w", r.label, err)
	}
	r.method = fasthttp.MethodPost
	r.body = body
	return t.doJSON(ctx, r, out)
}

// doJSON runs a single attempt. The attempt is bounded by the per-call timeout
// or by ctx's deadline, whichever comes first.
func (t *httpTransport) doJSON(ctx context.Context, r request, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(r.url)
	req.Header.SetMethod(r.method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if r.body != nil {
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(r.body)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := time.Now().Add(t.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	t.logger.Debug("Sending provider request", zap.String("call", r.label))
	if err := t.client.DoDeadline(req, resp, deadline); err != nil {
		t.logger.Debug("Provider request failed", zap.String("call", r.label), zap.Error(err))
		return fmt.Errorf("failed to execute request %s: %w", r.label, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		body := string(rawBody)
		if len(body) > maxErrorBodyLen {
			body = body[:maxErrorBodyLen]
		}
		t.logger.Debug("Provider returned non-OK status",
			zap.String("call", r.label),
			zap.Int("statusCode", resp.StatusCode()),
			zap.String("responseBody", body))
		return &resilience.HTTPStatusError{StatusCode: resp.StatusCode(), URL: r.label, Body: body}
	}

	if err := json.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("malformed response from %s: %w", r.label, err)
	}
	return nil
}
