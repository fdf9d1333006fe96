package wizard

import (
	"context"
	"strings"
	"sync"

	"greenledger/backend/client"
	"greenledger/backend/logger"
	"greenledger/backend/models"
)

const (
	MsgWaitlistIncomplete = "Please fill in your name, email and company"
	MsgWaitlistFailed     = "Something went wrong. Please try again."
	MsgWaitlistJoined     = "Thanks! You're on the GreenLedger waitlist."
)

// Waitlist form fields, named as in the request body.
const (
	FieldName          = "name"
	FieldEmail         = "email"
	FieldCompany       = "company"
	FieldRole          = "role"
	FieldCloudProvider = "cloudProvider"
	FieldMonthlySpend  = "monthlySpend"
)

var WaitlistRequired = []string{FieldName, FieldEmail, FieldCompany}

// WaitlistState is the single step waitlist dialog.
type WaitlistState struct {
	Open       bool
	Fields     map[string]string
	Submitting bool
	LastError  string
}

func InitialWaitlist() WaitlistState {
	return WaitlistState{Fields: map[string]string{}}
}

// SubmitWaitlist asks for the form to be sent. The controller answers with
// SubmissionSucceeded or SubmissionFailed.
type SubmitWaitlist struct{}

func (SubmitWaitlist) isEvent() {}

type SendWaitlist struct{ Request models.WaitlistRequest }

func (SendWaitlist) isCommand() {}

// ReduceWaitlist handles Open, Close, SetField, SubmitWaitlist and the two
// submission outcomes. Other events leave the state unchanged.
func ReduceWaitlist(s WaitlistState, ev Event) (WaitlistState, Command) {
	s.Fields = cloneFields(s.Fields)

	switch ev.(type) {
	case Open:
		if s.Open {
			return s, nil
		}
		next := InitialWaitlist()
		next.Open = true
		return next, nil
	case Close:
		return InitialWaitlist(), nil
	}
	if !s.Open {
		return s, nil
	}

	switch ev := ev.(type) {
	case SetField:
		s.Fields[ev.Name] = ev.Value
	case SubmitWaitlist:
		if s.Submitting {
			return s, nil
		}
		if len(missing(s.Fields, WaitlistRequired)) > 0 {
			s.LastError = MsgWaitlistIncomplete
			return s, nil
		}
		s.Submitting = true
		s.LastError = ""
		return s, SendWaitlist{Request: models.WaitlistRequest{
			Name:          strings.TrimSpace(s.Fields[FieldName]),
			Email:         strings.TrimSpace(s.Fields[FieldEmail]),
			Company:       strings.TrimSpace(s.Fields[FieldCompany]),
			Role:          strings.TrimSpace(s.Fields[FieldRole]),
			CloudProvider: s.Fields[FieldCloudProvider],
			MonthlySpend:  s.Fields[FieldMonthlySpend],
		}}
	case SubmissionSucceeded:
		if !s.Submitting {
			return s, nil
		}
		return InitialWaitlist(), Notify{Notice{Message: ev.Message}}
	case SubmissionFailed:
		if !s.Submitting {
			return s, nil
		}
		s.Submitting = false
		s.LastError = ev.Message
		return s, Notify{Notice{Message: ev.Message, Failure: true}}
	}
	return s, nil
}

type WaitlistSubmitter interface {
	JoinWaitlist(ctx context.Context, req models.WaitlistRequest) (models.WaitlistEntry, error)
}

type WaitlistController struct {
	mu    sync.Mutex
	state WaitlistState

	submitter WaitlistSubmitter
	notify    func(Notice)
	lggr      logger.Logger
}

func NewWaitlistController(submitter WaitlistSubmitter, notify func(Notice), lggr logger.Logger) *WaitlistController {
	if notify == nil {
		notify = func(Notice) {}
	}
	if lggr == nil {
		lggr = logger.Nop()
	}
	return &WaitlistController{state: InitialWaitlist(), submitter: submitter, notify: notify, lggr: lggr}
}

func (c *WaitlistController) State() WaitlistState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Fields = cloneFields(s.Fields)
	return s
}

func (c *WaitlistController) Dispatch(ctx context.Context, ev Event) WaitlistState {
	c.mu.Lock()
	next, cmd := ReduceWaitlist(c.state, ev)
	c.state = next
	c.mu.Unlock()

	switch cmd := cmd.(type) {
	case SendWaitlist:
		if _, err := c.submitter.JoinWaitlist(ctx, cmd.Request); err != nil {
			c.lggr.Warnw("waitlist submit failed", "err", err)
			c.Dispatch(ctx, SubmissionFailed{Message: client.MessageOf(err, MsgWaitlistFailed)})
		} else {
			c.Dispatch(ctx, SubmissionSucceeded{Message: MsgWaitlistJoined})
		}
	case Notify:
		c.notify(cmd.Notice)
	}
	return c.State()
}
