package providers

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"

	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	defaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	defaultMaxBodyBytes = 2 << 20
)

// Header is a single request header.
type Header struct {
	Name  string
	Value string
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	UserAgent    string
	MaxBodyBytes int64
	HTTPClient   *http.Client
	Logger       *logrus.Logger
}

// Client performs the single outbound GET of an adapter call. Retries are
// disabled here: retry policy belongs to the dispatcher.
type Client struct {
	http         *retryablehttp.Client
	userAgent    string
	maxBodyBytes int64
}

// NewClient builds a client. Zero options give sane defaults.
func NewClient(opts ClientOptions) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.CheckRetry = retryablehttp.DefaultRetryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.HTTPClient != nil {
		rc.HTTPClient = opts.HTTPClient
	} else {
		rc.HTTPClient = newPooledHTTPClient()
	}
	if opts.Logger != nil {
		rc.Logger = leveledLogger{opts.Logger}
	} else {
		rc.Logger = nil
	}

	c := &Client{http: rc, userAgent: opts.UserAgent, maxBodyBytes: opts.MaxBodyBytes}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.maxBodyBytes <= 0 {
		c.maxBodyBytes = defaultMaxBodyBytes
	}
	return c
}

func newPooledHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: transport}
}

// Get issues one GET and returns the body decoded to UTF-8. Failures come
// back as *Error with their kind already classified.
func (c *Client) Get(ctx context.Context, id suggest.ProviderID, url string, headers ...Header) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Provider: id, Kind: suggest.ErrUpstreamUnavailable, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/javascript, */*;q=0.1")
	for _, h := range headers {
		req.Header.Set(h.Name, h.Value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, transportError(ctx, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &Error{Provider: id, Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode}
	}

	limited := io.LimitReader(resp.Body, c.maxBodyBytes)
	var body io.Reader = limited
	if decoded, derr := charset.NewReader(limited, resp.Header.Get("Content-Type")); derr == nil {
		body = decoded
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, transportError(ctx, id, fmt.Errorf("read body: %w", err))
	}
	return b, nil
}

// leveledLogger adapts logrus to retryablehttp's LeveledLogger.
type leveledLogger struct {
	log *logrus.Logger
}

func (l leveledLogger) fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}

func (l leveledLogger) Error(msg string, kv ...interface{}) {
	l.log.WithFields(l.fields(kv)).Error(msg)
}

func (l leveledLogger) Warn(msg string, kv ...interface{}) {
	l.log.WithFields(l.fields(kv)).Warn(msg)
}

// Info is demoted to debug: retryablehttp logs every request at info.
func (l leveledLogger) Info(msg string, kv ...interface{}) {
	l.log.WithFields(l.fields(kv)).Debug(msg)
}

func (l leveledLogger) Debug(msg string, kv ...interface{}) {
	l.log.WithFields(l.fields(kv)).Debug(msg)
}
