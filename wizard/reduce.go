package wizard

import (
	"strings"

	"greenledger/backend/models"
)

// Reduce applies ev to s and returns the next state plus the side effect the
// caller must run. It never mutates s.Fields.
func Reduce(s State, ev Event) (State, Command) {
	s = s.clone()
	switch ev.(type) {
	case Open:
		if s.Open {
			return s, nil
		}
		next := Initial(s.Variant)
		next.Open = true
		return next, nil
	case Close:
		return Initial(s.Variant), nil
	}
	if !s.Open {
		return s, nil
	}

	switch ev := ev.(type) {
	case SetField:
		s.Fields[ev.Name] = ev.Value
		return s, nil

	case SubmitPayment:
		if s.Step != StepPayment || s.Processing {
			return s, nil
		}
		if len(missing(s.Fields, PaymentFields)) > 0 {
			s.LastError = MsgPaymentIncomplete
			return s, nil
		}
		s.LastError = ""
		s.Processing = true
		return s, StartPayment{}

	case PaymentCompleted:
		if s.Step != StepPayment || !s.Processing {
			return s, nil
		}
		s.Processing = false
		s.Step = StepProviderSelect
		return s, nil

	case PaymentAborted:
		if !s.Processing {
			return s, nil
		}
		s.Processing = false
		s.LastError = MsgPaymentInterrupted
		return s, nil

	case SelectProvider:
		if s.Step != StepProviderSelect {
			return s, nil
		}
		p, ok := models.ParseProvider(string(ev.Provider))
		if !ok {
			return s, nil
		}
		s.Provider = p
		s.Step = StepCredentialEntry
		s.LastError = ""
		return s, nil

	case Back:
		switch {
		case s.Step == StepCredentialEntry && !s.Submitting:
			s.Provider = ""
			s.Step = StepProviderSelect
			s.LastError = ""
		case s.Step == StepProviderSelect && s.Variant == WithPayment:
			s.Step = StepPayment
			s.LastError = ""
		}
		return s, nil

	case SubmitCredentials:
		if s.Step != StepCredentialEntry || s.Submitting {
			return s, nil
		}
		creds := models.CredentialsFromFields(s.Provider, s.Fields)
		if err := models.ValidateCredentials(creds); err != nil {
			s.LastError = MsgMissingCredentials
			return s, nil
		}
		email := strings.TrimSpace(s.Fields[FieldUserEmail])
		if !strings.Contains(email, "@") {
			s.LastError = MsgInvalidEmail
			return s, nil
		}
		name := strings.TrimSpace(s.Fields[FieldConnectionName])
		if name == "" {
			name = s.Provider.DefaultConnectionName()
		}
		s.Submitting = true
		s.LastError = ""
		return s, SendConnection{Provider: s.Provider, Credentials: creds, UserEmail: email, ConnectionName: name}

	case SubmissionSucceeded:
		if !s.Submitting {
			return s, nil
		}
		return Initial(s.Variant), Notify{Notice{Message: ev.Message}}

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

func missing(fields map[string]string, names []string) []string {
	var out []string
	for _, n := range names {
		if strings.TrimSpace(fields[n]) == "" {
			out = append(out, n)
		}
	}
	return out
}
