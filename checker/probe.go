package checker

import (
	"context"
	"net/http"

	"github.com/lukemcguire/linkbadger/result"
)

// probeResult is the raw answer to one HEAD request.
type probeResult struct {
	status int
	err    error
}

// probe sends one HEAD request for rawURL, following redirects, bounded by
// the configured timeout. Cancellation of ctx does not abort a probe that has
// already started.
func (c *Checker) probe(ctx context.Context, rawURL string) (res probeResult) {
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		return probeResult{err: err}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Referer", c.cfg.Referer)

	resp, err := c.client.Do(req)
	if err != nil {
		return probeResult{err: err}
	}
	// A HEAD response has no body to read; closing only releases the connection.
	_ = resp.Body.Close()

	return probeResult{status: resp.StatusCode}
}

// sharedProbe returns the probe result for rawURL, reusing a finished or
// in-flight probe of the same URL when ShareProbes is set.
func (c *Checker) sharedProbe(ctx context.Context, rawURL string) probeResult {
	if !c.cfg.ShareProbes {
		return c.probe(ctx, rawURL)
	}
	if cached, ok := c.probes.Load(rawURL); ok {
		return cached.(probeResult)
	}
	v, _, _ := c.inflight.Do(rawURL, func() (any, error) {
		res := c.probe(ctx, rawURL)
		c.probes.Store(rawURL, res)
		return res, nil
	})
	return v.(probeResult)
}

// classify turns a probe result into an outcome for (rawURL, file).
func classify(res probeResult, rawURL, file string) result.Outcome {
	o := result.Outcome{File: file, URL: rawURL}
	switch {
	case res.err != nil:
		o.Kind = result.KindException
		o.Error = res.err.Error()
		o.ErrorCategory = result.ClassifyError(res.err, 0)
	case res.status >= 200 && res.status < 300:
		o.Kind = result.KindWorking
		o.StatusCode = res.status
	default:
		o.Kind = result.KindBroken
		o.StatusCode = res.status
		o.ErrorCategory = result.ClassifyError(nil, res.status)
	}
	return o
}
