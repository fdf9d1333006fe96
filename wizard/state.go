// Package wizard holds the client-side connection and waitlist dialogs as
// explicit state machines. Reduce is pure; Controller runs the side effects.
package wizard

import (
	"maps"

	"greenledger/backend/models"
)

type Variant int

const (
	// TwoStep is ProviderSelect -> CredentialEntry.
	TwoStep Variant = iota
	// WithPayment is Payment -> ProviderSelect -> CredentialEntry.
	WithPayment
)

type Step int

const (
	StepPayment Step = iota + 1
	StepProviderSelect
	StepCredentialEntry
)

func (s Step) String() string {
	switch s {
	case StepPayment:
		return "payment"
	case StepProviderSelect:
		return "provider-select"
	case StepCredentialEntry:
		return "credential-entry"
	}
	return "unknown"
}

// Form field names shared by the steps.
const (
	FieldCardholderName = "cardholderName"
	FieldCardNumber     = "cardNumber"
	FieldExpiry         = "expiry"
	FieldCVC            = "cvc"
	FieldUserEmail      = "userEmail"
	FieldConnectionName = "connectionName"
)

// PaymentFields must all be non-empty before the payment step completes.
var PaymentFields = []string{FieldCardholderName, FieldCardNumber, FieldExpiry, FieldCVC}

const (
	MsgPaymentIncomplete  = "Please fill in all payment fields"
	MsgPaymentInterrupted = "Payment was interrupted. Please try again."
	MsgInvalidEmail       = "Please enter a valid email address"
	MsgMissingCredentials = "Please fill in all credential fields"
	MsgConnectionFailed   = "Connection failed. Please check your credentials and try again."
)

// State is one open dialog. The zero Provider means none is selected.
type State struct {
	Variant  Variant
	Open     bool
	Step     Step
	Provider models.Provider
	Fields   map[string]string

	// Processing is set while the simulated payment delay runs.
	Processing bool
	Submitting bool
	LastError  string
}

// Initial returns the closed, empty state for v.
func Initial(v Variant) State {
	s := State{Variant: v, Step: StepProviderSelect, Fields: map[string]string{}}
	if v == WithPayment {
		s.Step = StepPayment
	}
	return s
}

// StepNumber is the 1-based position of the current step within the variant.
func (s State) StepNumber() int {
	if s.Variant == WithPayment {
		return int(s.Step)
	}
	return int(s.Step) - 1
}

func (s State) StepCount() int {
	if s.Variant == WithPayment {
		return 3
	}
	return 2
}

func (s State) clone() State {
	s.Fields = cloneFields(s.Fields)
	return s
}

func cloneFields(f map[string]string) map[string]string {
	if f == nil {
		return map[string]string{}
	}
	return maps.Clone(f)
}

// Event is an input to Reduce.
type Event interface{ isEvent() }

type (
	Open  struct{}
	Close struct{}
	// SetField records a form value; it never changes the step.
	SetField struct {
		Name  string
		Value string
	}
	SubmitPayment       struct{}
	PaymentCompleted    struct{}
	PaymentAborted      struct{}
	SelectProvider      struct{ Provider models.Provider }
	Back                struct{}
	SubmitCredentials   struct{}
	SubmissionSucceeded struct{ Message string }
	SubmissionFailed    struct{ Message string }
)

func (Open) isEvent()                {}
func (Close) isEvent()               {}
func (SetField) isEvent()            {}
func (SubmitPayment) isEvent()       {}
func (PaymentCompleted) isEvent()    {}
func (PaymentAborted) isEvent()      {}
func (SelectProvider) isEvent()      {}
func (Back) isEvent()                {}
func (SubmitCredentials) isEvent()   {}
func (SubmissionSucceeded) isEvent() {}
func (SubmissionFailed) isEvent()    {}

// Command is a side effect requested by Reduce. A nil Command means none.
type Command interface{ isCommand() }

type (
	// StartPayment runs the simulated payment delay, then PaymentCompleted.
	StartPayment struct{}
	// SendConnection submits the credentials once.
	SendConnection struct {
		Provider       models.Provider
		Credentials    models.Credentials
		UserEmail      string
		ConnectionName string
	}
	Notify struct{ Notice Notice }
)

func (StartPayment) isCommand()   {}
func (SendConnection) isCommand() {}
func (Notify) isCommand()         {}

// Notice is a blocking acknowledgment shown to the user.
type Notice struct {
	Message string
	Failure bool
}
