package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/mailblast/internal/pkg/logger"
	"github.com/ignite/mailblast/internal/recipient"
	"github.com/ignite/mailblast/internal/smtp"
	"github.com/ignite/mailblast/internal/template"
)

// =====================================================
// Sequential Dispatch Loop
// =====================================================

// ErrVerifyFailed means the SMTP credentials could not open a session, so no
// messages were attempted.
var ErrVerifyFailed = errors.New("smtp verification failed")

const (
	defaultPause       = 100 * time.Millisecond
	defaultSendTimeout = 30 * time.Second
)

// Dispatcher runs bulk sends one recipient at a time, pacing deliveries and
// publishing progress along the way.
type Dispatcher struct {
	transport   smtp.Transport
	publisher   Publisher
	liquid      *template.LiquidService
	pause       time.Duration
	sendTimeout time.Duration
}

// New creates a Dispatcher with the default inter-send pause.
func New(transport smtp.Transport, publisher Publisher) *Dispatcher {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Dispatcher{
		transport:   transport,
		publisher:   publisher,
		liquid:      template.NewLiquidService(),
		pause:       defaultPause,
		sendTimeout: defaultSendTimeout,
	}
}

// SetPause overrides the delay between consecutive sends. Zero disables
// pacing.
func (d *Dispatcher) SetPause(pause time.Duration) {
	if pause >= 0 {
		d.pause = pause
	}
}

// SetSendTimeout overrides the per-message delivery deadline.
func (d *Dispatcher) SetSendTimeout(timeout time.Duration) {
	if timeout > 0 {
		d.sendTimeout = timeout
	}
}

// Dispatch validates the run inputs, verifies the SMTP session, then sends to
// every recipient in order. One failed delivery never stops the run; the
// report carries an outcome per recipient in input order. No events are
// published until validation and verification pass.
func (d *Dispatcher) Dispatch(ctx context.Context, runID string, creds smtp.Credentials, tmpl Template, recipients []recipient.Recipient) (report *Report, err error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, recipient.ErrNoRecipients
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	if verr := d.transport.Verify(ctx, creds); verr != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerifyFailed, verr)
	}

	total := len(recipients)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("dispatch run panicked", "runID", runID, "panic", fmt.Sprint(r))
			d.publisher.Publish(Event{
				RunID: runID,
				Type:  EventAborted,
				Total: total,
				Error: fmt.Sprintf("internal error: %v", r),
			})
			report = nil
			err = fmt.Errorf("dispatch aborted: %v", r)
		}
	}()

	logger.Info("dispatch run started", "runID", runID, "total", total)
	d.publisher.Publish(Event{RunID: runID, Type: EventStarted, Total: total})

	rep := &Report{RunID: runID, Total: total, Outcomes: make([]Outcome, 0, total)}
	for i, rcpt := range recipients {
		outcome := d.sendOne(ctx, runID, creds, tmpl, rcpt)
		if outcome.Status == StatusSuccess {
			rep.Successful++
		} else {
			rep.Failed++
		}
		rep.Outcomes = append(rep.Outcomes, outcome)

		d.publisher.Publish(Event{
			RunID:      runID,
			Type:       EventItemCompleted,
			Total:      total,
			Current:    i + 1,
			Email:      rcpt.Email,
			Status:     outcome.Status,
			Successful: rep.Successful,
			Failed:     rep.Failed,
			Error:      outcome.Error,
		})

		if d.pause > 0 && i < total-1 {
			select {
			case <-time.After(d.pause):
			case <-ctx.Done():
			}
		}
	}

	d.publisher.Publish(Event{
		RunID:      runID,
		Type:       EventFinished,
		Total:      total,
		Successful: rep.Successful,
		Failed:     rep.Failed,
		Outcomes:   rep.Outcomes,
		Message:    fmt.Sprintf("Sent %d/%d emails successfully", rep.Successful, total),
	})
	logger.Info("dispatch run finished", "runID", runID, "successful", rep.Successful, "failed", rep.Failed)

	return rep, nil
}

// sendOne renders and delivers to a single recipient. A panic while
// rendering or sending is contained to this recipient's outcome.
func (d *Dispatcher) sendOne(ctx context.Context, runID string, creds smtp.Credentials, tmpl Template, rcpt recipient.Recipient) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{
				Email:  rcpt.Email,
				Status: StatusFailed,
				Error:  fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	vars := make(map[string]string, len(rcpt.Variables)+1)
	vars["email"] = rcpt.Email
	for k, v := range rcpt.Variables {
		vars[k] = v
	}

	// Tags are stripped from the template before substitution, so variable
	// values reach the plain-text part verbatim even when they contain markup.
	textSource := tmpl.Text
	if textSource == "" {
		textSource = template.StripTags(tmpl.HTML)
	}

	msg := &smtp.Message{
		From:     tmpl.From,
		FromName: tmpl.FromName,
		To:       rcpt.Email,
		Subject:  d.render(runID+":subject", tmpl.Engine, tmpl.Subject, vars),
		HTML:     d.render(runID+":html", tmpl.Engine, tmpl.HTML, vars),
		Text:     d.render(runID+":text", tmpl.Engine, textSource, vars),
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	res, err := d.transport.Send(sendCtx, creds, msg)
	if err != nil {
		logger.Warn("send failed", "runID", runID, "to", rcpt.Email, "error", err.Error())
		return Outcome{Email: rcpt.Email, Status: StatusFailed, Error: err.Error()}
	}
	if !res.Success {
		detail := res.ErrorDetail
		if detail == "" {
			detail = "send rejected"
		}
		logger.Warn("send rejected", "runID", runID, "to", rcpt.Email, "error", detail)
		return Outcome{Email: rcpt.Email, Status: StatusFailed, Error: detail}
	}
	return Outcome{Email: rcpt.Email, Status: StatusSuccess, MessageID: res.MessageID}
}

func (d *Dispatcher) render(cacheKey, engine, text string, vars map[string]string) string {
	if engine == "liquid" && d.liquid != nil {
		out, err := d.liquid.Render(cacheKey, text, vars)
		if err != nil {
			logger.Warn("liquid render failed, sending raw content", "error", err.Error())
		}
		return out
	}
	return template.Render(text, vars)
}
