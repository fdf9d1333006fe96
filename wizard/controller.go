package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"greenledger/backend/client"
	"greenledger/backend/logger"
	"greenledger/backend/models"
)

// DefaultPaymentDelay is the simulated payment processing time.
const DefaultPaymentDelay = 1500 * time.Millisecond

type ConnectionSubmitter interface {
	SubmitConnection(ctx context.Context, req models.CloudConnectionRequest) (models.ConnectionReceipt, error)
}

// Controller owns one connection dialog. Dispatch is safe for concurrent use;
// a submit that arrives while another is in flight is dropped by Reduce.
type Controller struct {
	mu    sync.Mutex
	state State

	submitter    ConnectionSubmitter
	paymentDelay time.Duration
	notify       func(Notice)
	lggr         logger.Logger
}

type Option func(*Controller)

func WithPaymentDelay(d time.Duration) Option {
	return func(c *Controller) { c.paymentDelay = d }
}

// WithNotify sets the callback for blocking acknowledgments.
func WithNotify(fn func(Notice)) Option {
	return func(c *Controller) { c.notify = fn }
}

func WithLogger(lggr logger.Logger) Option {
	return func(c *Controller) { c.lggr = lggr }
}

func NewController(v Variant, submitter ConnectionSubmitter, opts ...Option) *Controller {
	c := &Controller{
		state:        Initial(v),
		submitter:    submitter,
		paymentDelay: DefaultPaymentDelay,
		notify:       func(Notice) {},
		lggr:         logger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Dispatch applies ev, runs any resulting command to completion and returns the
// state afterwards. Commands run without the lock held.
func (c *Controller) Dispatch(ctx context.Context, ev Event) State {
	c.mu.Lock()
	next, cmd := Reduce(c.state, ev)
	c.state = next
	c.mu.Unlock()

	if cmd != nil {
		c.run(ctx, cmd)
	}
	return c.State()
}

func (c *Controller) run(ctx context.Context, cmd Command) {
	switch cmd := cmd.(type) {
	case StartPayment:
		t := time.NewTimer(c.paymentDelay)
		defer t.Stop()
		select {
		case <-t.C:
			c.Dispatch(ctx, PaymentCompleted{})
		case <-ctx.Done():
			c.Dispatch(ctx, PaymentAborted{})
		}

	case SendConnection:
		receipt, err := c.send(ctx, cmd)
		if err != nil {
			c.lggr.Warnw("connection submit failed", "provider", cmd.Provider, "err", err)
			c.Dispatch(ctx, SubmissionFailed{Message: client.MessageOf(err, MsgConnectionFailed)})
			return
		}
		c.Dispatch(ctx, SubmissionSucceeded{Message: successMessage(cmd.Provider, receipt)})

	case Notify:
		c.notify(cmd.Notice)
	}
}

func (c *Controller) send(ctx context.Context, cmd SendConnection) (models.ConnectionReceipt, error) {
	raw, err := json.Marshal(cmd.Credentials)
	if err != nil {
		return models.ConnectionReceipt{}, fmt.Errorf("encode credentials: %w", err)
	}
	return c.submitter.SubmitConnection(ctx, models.CloudConnectionRequest{
		Provider:       string(cmd.Provider),
		Credentials:    raw,
		UserEmail:      cmd.UserEmail,
		ConnectionName: cmd.ConnectionName,
	})
}

func successMessage(p models.Provider, r models.ConnectionReceipt) string {
	return fmt.Sprintf("Successfully connected to %s!\n\nConnection ID: %s\nStatus: %s\n\n"+
		"We'll start collecting your carbon data shortly and send you an email confirmation.",
		p.Label(), r.ID, r.Status)
}
