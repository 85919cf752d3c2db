package hibp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
)

const (
	DefaultBaseURL   = "https://api.pwnedpasswords.com"
	DefaultUserAgent = "golang-pwdcheck/1.0"
)

var rangePrefix = regexp.MustCompile("^[A-F\\d]{5}$")

// RangeFetcher returns the raw body of a range query.
type RangeFetcher interface {
	Range(ctx context.Context, prefix string) ([]byte, error)
}

type Options struct {
	// BaseURL of the Pwned Passwords API, without the /range path.
	BaseURL   string
	UserAgent string
	// RetryMax is the number of retries on connection errors, 429 and 5xx responses.
	RetryMax  int
	RetryWait time.Duration
	Timeout   time.Duration
	// Padding asks the API to pad responses with zero count entries.
	Padding bool
}

type Client struct {
	baseURL   string
	userAgent string
	padding   bool
	http      *retryablehttp.Client
	stat      *Stats
}

func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		padding:   opts.Padding,
		http:      initHttpClient(opts),
	}

	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}

	return c
}

// WithStats records every completed request in s.
func (c *Client) WithStats(s *Stats) *Client {
	c.stat = s
	return c
}

func initHttpClient(opts Options) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	// Retries are logged by us, the default logger is too noisy for an interactive tool.
	client.Logger = nil
	client.RetryMax = opts.RetryMax
	if opts.RetryWait > 0 {
		client.RetryWaitMin = opts.RetryWait
		client.RetryWaitMax = 4 * opts.RetryWait
	}

	// Keep the last response so non-200 statuses are reported with their code instead of a
	// generic "giving up" error.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			log.Debug().Msgf("retrying %s (attempt %d)", req.URL.Path, attempt)
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       10 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   runtime.GOMAXPROCS(0) + 1,
	}

	// A custom TLS config turns off the automatic HTTP/2 upgrade, so it is configured here.
	// Idle connections are pinged so a dead one is dropped before a lookup is sent on it.
	if h2, err := http2.ConfigureTransports(transport); err != nil {
		log.Warn().Err(err).Msg("HTTP/2 disabled for range requests")
	} else {
		h2.ReadIdleTimeout = 30 * time.Second
		h2.PingTimeout = 10 * time.Second
	}

	client.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}

	return client
}

func (c *Client) rangeHttpRequest(ctx context.Context, prefix string) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/range/%s", c.baseURL, prefix),
		nil,
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	if c.padding {
		req.Header.Set("Add-Padding", "true")
	}
	return req, nil
}

// Range queries the API with a 5 character hash prefix and returns the newline delimited
// SUFFIX:COUNT body.
func (c *Client) Range(ctx context.Context, prefix string) ([]byte, error) {
	prefix = strings.ToUpper(prefix)
	if !rangePrefix.MatchString(prefix) {
		return nil, ErrInvalidPrefix
	}

	timer := time.Now()
	req, err := c.rangeHttpRequest(ctx, prefix)
	if err != nil {
		return nil, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if res != nil {
			_ = res.Body.Close()
		}
		return nil, errors.Wrapf(ErrUnreachable, "range %s: %s", prefix, err)
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Warn().Err(err).Msgf("error closing body for range %s", prefix)
		}
	}(res.Body)

	if c.stat != nil {
		c.stat.RequestComplete(res, time.Since(timer).Milliseconds())
	}

	if res.StatusCode != http.StatusOK {
		return nil, &APIError{Prefix: prefix, StatusCode: res.StatusCode}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrUnreachable, "reading range %s: %s", prefix, err)
	}

	log.Debug().Msgf("range %s: %d bytes in %v", prefix, len(body), time.Since(timer))
	return body, nil
}
