package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"greenledger/backend/models"
	"greenledger/backend/wizard"
)

const (
	actionSubmit = "Submit"
	actionBack   = "Back"
	actionCancel = "Cancel"
)

// field is one prompt of a form step.
type field struct {
	name    string
	label   string
	secret  bool
	multi   bool
	options []option
}

type option struct {
	value string
	label string
}

var credentialFields = map[models.Provider][]field{
	models.ProviderAWS: {
		{name: "accessKey", label: "Access Key ID"},
		{name: "secretKey", label: "Secret Access Key", secret: true},
		{name: "region", label: "Region (e.g. us-east-1)"},
	},
	models.ProviderGCP: {
		{name: "projectId", label: "Project ID"},
		{name: "serviceAccountKey", label: "Service account JSON key", multi: true},
	},
	models.ProviderAzure: {
		{name: "subscriptionId", label: "Subscription ID"},
		{name: "tenantId", label: "Tenant ID"},
		{name: "clientId", label: "Client ID"},
		{name: "clientSecret", label: "Client Secret", secret: true},
	},
}

var paymentFields = []field{
	{name: wizard.FieldCardholderName, label: "Cardholder name"},
	{name: wizard.FieldCardNumber, label: "Card number"},
	{name: wizard.FieldExpiry, label: "Expiry (MM/YY)"},
	{name: wizard.FieldCVC, label: "CVC", secret: true},
}

var providerOptions = []option{
	{string(models.ProviderAWS), "Amazon Web Services (AWS)"},
	{string(models.ProviderGCP), "Google Cloud Platform (GCP)"},
	{string(models.ProviderAzure), "Microsoft Azure"},
}

var waitlistFields = []field{
	{name: wizard.FieldName, label: "Name"},
	{name: wizard.FieldEmail, label: "Work email"},
	{name: wizard.FieldCompany, label: "Company"},
	{name: wizard.FieldRole, label: "Role (optional)"},
	{name: wizard.FieldCloudProvider, label: "Primary cloud provider", options: []option{
		{"", "Skip"},
		{"aws", "Amazon Web Services (AWS)"},
		{"gcp", "Google Cloud Platform (GCP)"},
		{"azure", "Microsoft Azure"},
		{"multi", "Multiple providers"},
		{"other", "Other"},
	}},
	{name: wizard.FieldMonthlySpend, label: "Monthly cloud spend", options: []option{
		{"", "Skip"},
		{"<1k", "Less than $1,000"},
		{"1k-5k", "$1,000 - $5,000"},
		{"5k-25k", "$5,000 - $25,000"},
		{"25k-100k", "$25,000 - $100,000"},
		{"100k+", "$100,000+"},
	}},
}

func runConnect(ctx context.Context, ctrl *wizard.Controller) error {
	ctrl.Dispatch(ctx, wizard.Open{})
	for {
		s := ctrl.State()
		if !s.Open {
			return nil
		}
		if s.LastError != "" {
			fmt.Printf("! %s\n", s.LastError)
		}
		fmt.Printf("\nStep %d of %d\n", s.StepNumber(), s.StepCount())

		ev, err := connectStep(ctx, ctrl, s)
		if errors.Is(err, terminal.InterruptErr) {
			ev, err = wizard.Close{}, nil
		}
		if err != nil {
			return err
		}
		if _, ok := ev.(wizard.SubmitPayment); ok {
			fmt.Println("Processing payment...")
		}
		ctrl.Dispatch(ctx, ev)
	}
}

func connectStep(ctx context.Context, ctrl *wizard.Controller, s wizard.State) (wizard.Event, error) {
	switch s.Step {
	case wizard.StepPayment:
		if err := askFields(paymentFields, s.Fields, setter(ctx, ctrl.Dispatch)); err != nil {
			return nil, err
		}
		return chooseAction([]string{actionSubmit, actionCancel}, wizard.SubmitPayment{})

	case wizard.StepProviderSelect:
		opts := append([]option{}, providerOptions...)
		if s.Variant == wizard.WithPayment {
			opts = append(opts, option{actionBack, actionBack})
		}
		opts = append(opts, option{actionCancel, actionCancel})
		choice, err := askSelect("Choose your cloud provider", opts, "")
		if err != nil {
			return nil, err
		}
		switch choice {
		case actionBack:
			return wizard.Back{}, nil
		case actionCancel:
			return wizard.Close{}, nil
		}
		return wizard.SelectProvider{Provider: models.Provider(choice)}, nil

	case wizard.StepCredentialEntry:
		fmt.Printf("Connect %s\n", s.Provider.Label())
		fs := append([]field{{name: wizard.FieldUserEmail, label: "Your email"}}, credentialFields[s.Provider]...)
		if err := askFields(fs, s.Fields, setter(ctx, ctrl.Dispatch)); err != nil {
			return nil, err
		}
		return chooseAction([]string{actionSubmit, actionBack, actionCancel}, wizard.SubmitCredentials{})
	}
	return wizard.Close{}, nil
}

func runWaitlist(ctx context.Context, ctrl *wizard.WaitlistController) error {
	ctrl.Dispatch(ctx, wizard.Open{})
	for {
		s := ctrl.State()
		if !s.Open {
			return nil
		}
		if s.LastError != "" {
			fmt.Printf("! %s\n", s.LastError)
		}
		err := askFields(waitlistFields, s.Fields, setter(ctx, ctrl.Dispatch))
		var ev wizard.Event
		if err == nil {
			ev, err = chooseAction([]string{actionSubmit, actionCancel}, wizard.SubmitWaitlist{})
		}
		if errors.Is(err, terminal.InterruptErr) {
			ev, err = wizard.Close{}, nil
		}
		if err != nil {
			return err
		}
		ctrl.Dispatch(ctx, ev)
	}
}

// setter adapts a controller's Dispatch into a field recorder.
func setter[S any](ctx context.Context, dispatch func(context.Context, wizard.Event) S) func(name, value string) {
	return func(name, value string) {
		dispatch(ctx, wizard.SetField{Name: name, Value: value})
	}
}

// askFields prompts for each field, prefilled with its current value.
func askFields(fs []field, current map[string]string, set func(name, value string)) error {
	for _, f := range fs {
		v, err := ask(f, current[f.name])
		if err != nil {
			return err
		}
		set(f.name, v)
	}
	return nil
}

func ask(f field, current string) (string, error) {
	var (
		answer string
		prompt survey.Prompt
	)
	switch {
	case len(f.options) > 0:
		return askSelect(f.label, f.options, current)
	case f.secret:
		prompt = &survey.Password{Message: f.label + ":"}
	case f.multi:
		prompt = &survey.Multiline{Message: f.label + ":", Default: current}
	default:
		prompt = &survey.Input{Message: f.label + ":", Default: current}
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", err
	}
	if answer == "" && f.secret {
		// keep the secret typed on an earlier attempt
		answer = current
	}
	return answer, nil
}

func askSelect(message string, opts []option, current string) (string, error) {
	labels := make([]string, len(opts))
	sel := &survey.Select{Message: message, Options: labels}
	for i, o := range opts {
		labels[i] = o.label
		if current != "" && o.value == current {
			sel.Default = o.label
		}
	}
	var choice string
	if err := survey.AskOne(sel, &choice); err != nil {
		return "", err
	}
	return valueOf(opts, choice), nil
}

// valueOf maps a displayed label back to its option value.
func valueOf(opts []option, label string) string {
	for _, o := range opts {
		if o.label == label {
			return o.value
		}
	}
	return label
}

func chooseAction(actions []string, submit wizard.Event) (wizard.Event, error) {
	var choice string
	if err := survey.AskOne(&survey.Select{Message: "Next:", Options: actions, Default: actionSubmit}, &choice); err != nil {
		return nil, err
	}
	switch choice {
	case actionBack:
		return wizard.Back{}, nil
	case actionCancel:
		return wizard.Close{}, nil
	}
	return submit, nil
}
