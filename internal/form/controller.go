// internal/form/controller.go
//
// Forms subsystem: submission state machine.
//
// Context
//   Every screen submits the same way.  The Controller owns that flow so
//   each component only supplies the upstream call:
//
//      Idle → Validating → Submitting → Succeeded
//                 │             └─────→ Failed
//                 └→ Idle (token or field rules failed, nothing sent)
//
//   •  The CSRF token is checked first; a bad token is a form-level error.
//   •  Field rules run next.  On failure the errors land in the State and
//      one error notice is raised.
//   •  Before the upstream call the Guard key (session id plus form id) is
//      acquired.  A second submission under the same key is refused with
//      ErrInFlight and never reaches the network.  The key is released
//      whatever the call returns.
//   •  The call runs on a context detached from the request, so a browser
//      that navigates away abandons the call instead of cancelling it.
//   •  No retry happens here.  Failure is terminal for that attempt.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"

	"github.com/yanizio/nasabah/internal/logger"
	"github.com/yanizio/nasabah/internal/message"
	"github.com/yanizio/nasabah/internal/metrics"
)

// Phase is a submission state.
type Phase int

const (
	Idle Phase = iota
	Validating
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ErrInFlight is returned when the same form is already being submitted for
// the same session.
var ErrInFlight = errors.New("form: submission already in flight")

// ErrBadToken is returned when the CSRF token does not verify.
var ErrBadToken = errors.New("form: invalid csrf token")

// Default notice texts, used when the form definition sets none.
const (
	DefaultLoading = "Submitting..."
	DefaultSuccess = "Saved."
	DefaultFailure = "Submission failed."
	DefaultNetwork = "Network error occurred"
)

// SubmitFunc performs the upstream call.  It returns the server's message on
// success.
type SubmitFunc func(ctx context.Context) (message string, err error)

// Result is what one Submit call ended with.
type Result struct {
	Phase   Phase
	Errors  Errors // field errors when validation failed
	Message string // the notice text shown last
	Err     error  // Errors, ErrBadToken, ErrInFlight, or the upstream error
}

// OK reports whether the submission succeeded.
func (r Result) OK() bool { return r.Phase == Succeeded }

// remoteError is satisfied by the API client's error type.
type remoteError interface {
	RemoteMessage() string
	Transport() bool
}

// Controller drives submissions.  Safe for concurrent use.
type Controller struct {
	rules *Rules
	guard Guard
}

// NewController returns a controller using rules (nil selects English).
func NewController(rules *Rules) *Controller {
	if rules == nil {
		rules = defaultRules
	}
	return &Controller{rules: rules}
}

// Rules exposes the rule set, e.g. for form-level messages.
func (c *Controller) Rules() *Rules { return c.rules }

// Busy reports whether key has a submission outstanding.
func (c *Controller) Busy(key string) bool { return c.guard.Busy(key) }

// Submit runs the full flow for st.  binding is the value the CSRF token was
// bound to and key identifies the in-flight slot, normally
// "<session id>:<form id>".
func (c *Controller) Submit(ctx context.Context, key, binding string, st *State, n message.Notifier, fn SubmitFunc) Result {
	fd := st.Def()
	log := logger.FromContext(ctx).With("form", fd.ID)

	st.phase = Validating

	if !VerifyToken(st.Token(), binding) {
		fe := c.rules.FormError("csrf")
		st.errs = Errors{fe}
		st.phase = Idle
		n.Error(fe.Message)
		metrics.Submissions.WithLabelValues(fd.ID, "bad_token").Inc()
		log.Infow("csrf token rejected")
		return Result{Phase: Idle, Errors: st.errs, Message: fe.Message, Err: ErrBadToken}
	}

	if errs := c.rules.Validate(fd, st); len(errs) > 0 {
		st.errs = errs
		st.phase = Idle
		text := errs.Combined()
		n.Error(text)
		metrics.Submissions.WithLabelValues(fd.ID, "invalid").Inc()
		log.Debugw("validation failed", "fields", len(errs))
		return Result{Phase: Idle, Errors: errs, Message: text, Err: errs}
	}
	st.errs = nil

	if !c.guard.Acquire(key) {
		st.phase = Idle
		text := c.rules.msg("inflight")
		n.Error(text)
		metrics.GuardRejections.WithLabelValues(fd.ID).Inc()
		log.Infow("submission refused, one already in flight")
		return Result{Phase: Idle, Message: text, Err: ErrInFlight}
	}
	defer c.guard.Release(key)

	st.phase = Submitting
	n.Loading(or(fd.Messages.Loading, DefaultLoading))

	remoteMsg, err := fn(context.WithoutCancel(ctx))
	n.Dismiss()

	if err != nil {
		st.phase = Failed
		text := failureText(fd, err)
		n.Error(text)
		metrics.Submissions.WithLabelValues(fd.ID, Failed.String()).Inc()
		log.Infow("submission failed", "err", err)
		return Result{Phase: Failed, Message: text, Err: err}
	}

	st.phase = Succeeded
	text := or(remoteMsg, fd.Messages.Success, DefaultSuccess)
	n.Success(text)
	if fd.ResetOnSuccess {
		st.Reset()
	}
	metrics.Submissions.WithLabelValues(fd.ID, Succeeded.String()).Inc()
	log.Debugw("submission succeeded")
	return Result{Phase: Succeeded, Message: text}
}

func failureText(fd *FormDef, err error) string {
	var re remoteError
	if errors.As(err, &re) {
		if re.Transport() {
			return or(fd.Messages.Network, DefaultNetwork)
		}
		if m := re.RemoteMessage(); m != "" {
			return m
		}
	}
	return or(fd.Messages.Failure, DefaultFailure)
}

// or returns the first non-empty string.
func or(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
