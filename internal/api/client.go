// internal/api/client.go
//
// HTTP client for the remote nasabah API.
//
// Context
// -------
// Every screen of the portal is a thin layer over six upstream operations.
// The endpoint table below fixes method, path, and body encoding per
// operation, so no caller can send registration as URL-encoded (and lose the
// photo) or course selection as a form.
//
// Every reply is the envelope `{status, message, data}`.  Only
// `status == true` on a 2xx response is success.  All failures come back as
// *Error with a Kind, so handlers can tell a remote rejection from a dead
// network and 401 from both.
//
// Identical concurrent GETs (same operation, path, and token) share one
// round trip through singleflight.  The shared request is detached from the
// caller that started it, so one browser tab going away does not fail the
// others waiting on the same reply.
//
// Notes
// -----
// • Transport is go-cleanhttp's pooled client, never http.DefaultClient.
// • Bodies larger than maxReplyBytes are cut off and fail to decode.
// • Oxford commas, two spaces after periods.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/nasabah/internal/logger"
	"github.com/yanizio/nasabah/internal/metrics"
)

const maxReplyBytes = 4 << 20

// Op names an upstream operation.
type Op string

const (
	OpRegister      Op = "register"
	OpLogin         Op = "login"
	OpProfile       Op = "profile"
	OpUpdateProfile Op = "update_profile"
	OpCourses       Op = "courses"
	OpSelectCourses Op = "select_courses"
)

type encoding int

const (
	encNone encoding = iota
	encForm
	encMultipart
	encJSON
)

type endpoint struct {
	method string
	path   string // may contain one %s for a path argument
	enc    encoding
}

var endpoints = map[Op]endpoint{
	OpRegister:      {http.MethodPost, "/register", encMultipart},
	OpLogin:         {http.MethodPost, "/login", encForm},
	OpProfile:       {http.MethodGet, "/profil", encNone},
	OpUpdateProfile: {http.MethodPut, "/update/%s", encForm},
	OpCourses:       {http.MethodGet, "/getmatkul", encNone},
	OpSelectCourses: {http.MethodPost, "/selectmatkul", encJSON},
}

// Options configure a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; defaults to a cleanhttp pooled client
}

// Client is safe for concurrent use.
type Client struct {
	base string
	http *http.Client
	sf   singleflight.Group
}

// New returns a Client for opts.BaseURL.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: bad base url %q", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = cleanhttp.DefaultPooledClient()
		hc.Timeout = opts.Timeout
	}
	return &Client{base: strings.TrimRight(opts.BaseURL, "/"), http: hc}, nil
}

/*──────────────────────────── request body ─────────────────────────────────*/

// payload carries whichever body the endpoint's encoding calls for.
type payload struct {
	form  url.Values
	files map[string]*Upload
	json  any
}

func (p payload) encode(enc encoding) (io.Reader, string, error) {
	switch enc {
	case encNone:
		return nil, "", nil
	case encForm:
		return strings.NewReader(p.form.Encode()), "application/x-www-form-urlencoded", nil
	case encJSON:
		b, err := json.Marshal(p.json)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	case encMultipart:
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for k, vs := range p.form {
			for _, v := range vs {
				if err := mw.WriteField(k, v); err != nil {
					return nil, "", err
				}
			}
		}
		for field, up := range p.files {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, up.Filename))
			ct := up.ContentType
			if ct == "" {
				ct = "application/octet-stream"
			}
			h.Set("Content-Type", ct)
			part, err := mw.CreatePart(h)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(up.Data); err != nil {
				return nil, "", err
			}
		}
		if err := mw.Close(); err != nil {
			return nil, "", err
		}
		return &buf, mw.FormDataContentType(), nil
	}
	return nil, "", fmt.Errorf("api: unknown encoding %d", enc)
}

/*──────────────────────────── round trip ───────────────────────────────────*/

type rawReply struct {
	status int
	body   []byte
}

// call performs op and decodes the envelope's data into T.
func call[T any](ctx context.Context, c *Client, op Op, token string, arg string, p payload) (Reply[T], error) {
	var out Reply[T]

	ep, ok := endpoints[op]
	if !ok {
		return out, fmt.Errorf("api: unknown operation %q", op)
	}
	path := ep.path
	if strings.Contains(path, "%s") {
		path = fmt.Sprintf(path, url.PathEscape(arg))
	}

	start := time.Now()
	raw, err := c.roundTrip(ctx, op, ep, path, token, p)
	metrics.UpstreamLatency.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())

	out, err = decode[T](op, raw, err)
	outcome := "ok"
	var ae *Error
	if errors.As(err, &ae) {
		outcome = ae.Kind.String()
	}
	metrics.UpstreamCalls.WithLabelValues(string(op), outcome).Inc()

	logger.FromContext(ctx).Debugw("upstream call",
		"op", op, "method", ep.method, "path", path,
		"status", raw.status, "outcome", outcome,
		"ms", time.Since(start).Milliseconds(),
	)
	return out, err
}

func (c *Client) roundTrip(ctx context.Context, op Op, ep endpoint, path, token string, p payload) (rawReply, error) {
	do := func(ctx context.Context) (rawReply, error) {
		body, ctype, err := p.encode(ep.enc)
		if err != nil {
			return rawReply{}, err
		}
		req, err := http.NewRequestWithContext(ctx, ep.method, c.base+path, body)
		if err != nil {
			return rawReply{}, err
		}
		req.Header.Set("Accept", "application/json")
		if ctype != "" {
			req.Header.Set("Content-Type", ctype)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return rawReply{}, err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
		if err != nil {
			return rawReply{status: resp.StatusCode}, err
		}
		return rawReply{status: resp.StatusCode, body: b}, nil
	}

	if ep.method != http.MethodGet {
		return do(ctx)
	}

	// The shared call must outlive whichever caller started it; each caller
	// stops waiting on its own context instead.
	key := string(op) + "|" + path + "|" + token
	ch := c.sf.DoChan(key, func() (any, error) {
		return do(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		raw, _ := res.Val.(rawReply)
		return raw, res.Err
	case <-ctx.Done():
		return rawReply{}, ctx.Err()
	}
}

// decode maps a raw reply onto Reply[T] or *Error.
func decode[T any](op Op, raw rawReply, netErr error) (Reply[T], error) {
	var out Reply[T]

	if netErr != nil {
		return out, &Error{Op: op, Kind: Transport, StatusCode: raw.status, Err: netErr}
	}

	var env envelope
	decErr := json.Unmarshal(raw.body, &env)

	if raw.status == http.StatusUnauthorized {
		return out, &Error{Op: op, Kind: Unauthorized, StatusCode: raw.status, Message: env.Message}
	}
	if decErr != nil {
		return out, &Error{Op: op, Kind: Transport, StatusCode: raw.status,
			Err: fmt.Errorf("undecodable reply: %w", decErr)}
	}
	if raw.status < 200 || raw.status > 299 || !env.Status {
		return out, &Error{Op: op, Kind: Rejected, StatusCode: raw.status, Message: env.Message}
	}

	out.Message = env.Message
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, &out.Data); err != nil {
			return out, &Error{Op: op, Kind: Transport, StatusCode: raw.status, Message: env.Message,
				Err: fmt.Errorf("undecodable data: %w", err)}
		}
	}
	return out, nil
}
