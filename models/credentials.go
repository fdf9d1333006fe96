package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Provider string

const (
	ProviderAWS   Provider = "aws"
	ProviderGCP   Provider = "gcp"
	ProviderAzure Provider = "azure"
)

// Providers lists the supported providers in display order.
var Providers = []Provider{ProviderAWS, ProviderGCP, ProviderAzure}

// ParseProvider accepts only the exact lower-case provider names.
func ParseProvider(s string) (Provider, bool) {
	switch p := Provider(s); p {
	case ProviderAWS, ProviderGCP, ProviderAzure:
		return p, true
	}
	return "", false
}

// Label is the upper-case name used in default connection names and messages.
func (p Provider) Label() string { return strings.ToUpper(string(p)) }

// DefaultConnectionName is used when a submission carries no connection name.
func (p Provider) DefaultConnectionName() string { return p.Label() + " Connection" }

// Credentials is one of AWSCredentials, GCPCredentials or AzureCredentials.
type Credentials interface {
	Provider() Provider
	// Metadata is the non-secret projection stored next to the encrypted blob.
	Metadata() map[string]string
}

type AWSCredentials struct {
	AccessKey string `json:"accessKey" validate:"required"`
	SecretKey string `json:"secretKey" validate:"required"`
	Region    string `json:"region" validate:"required"`
}

type GCPCredentials struct {
	ProjectID         string `json:"projectId" validate:"required"`
	ServiceAccountKey string `json:"serviceAccountKey" validate:"required"`
}

type AzureCredentials struct {
	SubscriptionID string `json:"subscriptionId" validate:"required"`
	TenantID       string `json:"tenantId" validate:"required"`
	ClientID       string `json:"clientId" validate:"required"`
	ClientSecret   string `json:"clientSecret" validate:"required"`
}

func (AWSCredentials) Provider() Provider   { return ProviderAWS }
func (GCPCredentials) Provider() Provider   { return ProviderGCP }
func (AzureCredentials) Provider() Provider { return ProviderAzure }

func (c AWSCredentials) Metadata() map[string]string {
	return map[string]string{"region": c.Region}
}

func (c GCPCredentials) Metadata() map[string]string {
	return map[string]string{"project_id": c.ProjectID}
}

func (c AzureCredentials) Metadata() map[string]string {
	return map[string]string{"subscription_id": c.SubscriptionID}
}

// RequiredFields returns the JSON field names a provider's credentials must carry.
func RequiredFields(p Provider) []string {
	switch p {
	case ProviderAWS:
		return []string{"accessKey", "secretKey", "region"}
	case ProviderGCP:
		return []string{"projectId", "serviceAccountKey"}
	case ProviderAzure:
		return []string{"subscriptionId", "tenantId", "clientId", "clientSecret"}
	}
	return nil
}

var ErrInvalidCredentials = errors.New("invalid credentials format")

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// report json names so missing fields read the same as the request body
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
}

// DecodeCredentials decodes raw JSON into the variant for p and validates it.
// Errors wrap ErrInvalidCredentials.
func DecodeCredentials(p Provider, raw json.RawMessage) (Credentials, error) {
	var c Credentials
	switch p {
	case ProviderAWS:
		var v AWSCredentials
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		c = v
	case ProviderGCP:
		var v GCPCredentials
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		c = v
	case ProviderAzure:
		var v AzureCredentials
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		c = v
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidCredentials, p)
	}
	if err := ValidateCredentials(c); err != nil {
		return nil, err
	}
	return c, nil
}

// CredentialsFromFields builds the variant for p from a flat form-field map.
// Fields that do not belong to p are ignored.
func CredentialsFromFields(p Provider, fields map[string]string) Credentials {
	switch p {
	case ProviderAWS:
		return AWSCredentials{AccessKey: fields["accessKey"], SecretKey: fields["secretKey"], Region: fields["region"]}
	case ProviderGCP:
		return GCPCredentials{ProjectID: fields["projectId"], ServiceAccountKey: fields["serviceAccountKey"]}
	case ProviderAzure:
		return AzureCredentials{
			SubscriptionID: fields["subscriptionId"],
			TenantID:       fields["tenantId"],
			ClientID:       fields["clientId"],
			ClientSecret:   fields["clientSecret"],
		}
	}
	return nil
}

// ValidateCredentials checks that every required field of c is non-empty.
// The returned error wraps ErrInvalidCredentials and names the missing fields.
func ValidateCredentials(c Credentials) error {
	if c == nil {
		return fmt.Errorf("%w: no credentials", ErrInvalidCredentials)
	}
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return &MissingFieldsError{Fields: missing}
}

// MissingFieldsError lists the credential fields that were empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%v: missing %s", ErrInvalidCredentials, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error { return ErrInvalidCredentials }
