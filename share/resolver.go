// Package share turns a finished letter into a shareable URL, preferring a
// server-minted short link and falling back to the self-contained long form.
package share

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/spf13/viper"

	"everink.io/ember/codec"
	"everink.io/ember/common/logging"
	cst "everink.io/ember/constants"
	le "everink.io/ember/errors"
	md "everink.io/ember/models"
)

// Status reports how a share URL came to be.
type Status string

const (
	// StatusPending means no resolution has completed yet (or one is in flight).
	StatusPending Status = "pending"
	// StatusSuccess means the URL is a short link minted by the store.
	StatusSuccess Status = "success"
	// StatusFailed means shortening failed and the URL is the long fallback.
	StatusFailed Status = "failed"
)

// defaultTimeout bounds how long a shorten attempt may take before the long
// URL takes over, so the share screen never hangs on a dead store.
const defaultTimeout = 10 * time.Second

// Result is a shareable URL plus how it was obtained.
type Result struct {
	URL    string
	Status Status
}

// Resolver obtains share URLs against one origin. At most one resolution is
// in flight at a time; duplicate triggers while pending are no-ops.
type Resolver struct {
	origin *url.URL
	hc     *http.Client

	mu       sync.Mutex
	inflight bool
}

// NewResolver builds a Resolver for the given origin, e.g.
// "https://ember.example". Timeout zero falls back to the environment's
// EMBER_SHORTEN_TIMEOUT, then to the built-in default.
func NewResolver(origin string, timeout time.Duration) (*Resolver, *le.LetterErr) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, le.ErrBadInput(fmt.Sprintf("invalid origin %q", origin)).WithCause(err)
	}
	if timeout <= 0 {
		timeout = viper.GetDuration(cst.EnvShortenTimeout)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Resolver{
		origin: u,
		hc:     &http.Client{Timeout: timeout},
	}, nil
}

// Resolve encodes the letter, tries to mint a short link and reports the
// resulting URL. Shortening failures of any kind degrade to the long URL
// with StatusFailed; only an encoding failure yields no URL at all. A call
// made while another resolution is pending returns StatusPending untouched.
func (r *Resolver) Resolve(ctx context.Context, letter *md.Letter, senderName string) (Result, *le.LetterErr) {
	clog := logging.WithFuncName()
	r.mu.Lock()
	if r.inflight {
		r.mu.Unlock()
		clog.Debug("share resolution already in flight, ignoring duplicate trigger")
		return Result{Status: StatusPending}, nil
	}
	r.inflight = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.inflight = false
		r.mu.Unlock()
	}()

	token, err := codec.Encode(letter)
	if err != nil {
		clog.WithError(err).Error("error encoding letter")
		return Result{}, err
	}

	id, serr := r.createShortLink(ctx, token)
	if serr != nil {
		clog.WithError(serr).Warn("short link failed, falling back to long URL")
		return Result{URL: r.longURL(token, senderName), Status: StatusFailed}, nil
	}
	short := *r.origin
	short.Path = "/l/" + id
	return Result{URL: short.String(), Status: StatusSuccess}, nil
}

func (r *Resolver) createShortLink(ctx context.Context, token string) (string, *le.LetterErr) {
	body, err := json.Marshal(map[string]string{"data": token})
	if err != nil {
		return "", le.ErrServiceFailure("error marshalling create request").WithCause(err)
	}
	endpoint := *r.origin
	endpoint.Path = "/api/letter"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return "", le.ErrServiceFailure("error building create request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.hc.Do(req)
	if err != nil {
		return "", le.ErrServiceFailure("error calling letter store").WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", le.ErrServiceFailure(fmt.Sprintf("letter store responded %d", resp.StatusCode))
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", le.ErrServiceFailure("error decoding create response").WithCause(err)
	}
	if out.ID == "" {
		return "", le.ErrServiceFailure("letter store returned no id")
	}
	return out.ID, nil
}

// longURL builds the self-contained fallback URL carrying the whole token.
// The sender name value gets percent-encoded before the query itself is
// encoded, matching what the page-side parameter reader expects.
func (r *Resolver) longURL(token, senderName string) string {
	long := *r.origin
	q := url.Values{}
	q.Set(cst.ParamLetter, token)
	if senderName != "" {
		q.Set(cst.ParamFrom, url.QueryEscape(senderName))
	}
	long.RawQuery = q.Encode()
	return long.String()
}
