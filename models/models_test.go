package models

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in   string
		want Provider
		ok   bool
	}{
		{"aws", ProviderAWS, true},
		{"gcp", ProviderGCP, true},
		{"azure", ProviderAzure, true},
		{"AWS", "", false},
		{" aws ", "", false},
		{"Gcp", "", false},
		{"digitalocean", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseProvider(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultConnectionName(t *testing.T) {
	assert.Equal(t, "AWS Connection", ProviderAWS.DefaultConnectionName())
	assert.Equal(t, "AZURE Connection", ProviderAzure.DefaultConnectionName())
}

func TestDecodeCredentials_Valid(t *testing.T) {
	raw := json.RawMessage(`{"projectId":"carbon-prod","serviceAccountKey":"{\"type\":\"service_account\"}","extra":"dropped"}`)

	c, err := DecodeCredentials(ProviderGCP, raw)

	require.NoError(t, err)
	gcp, ok := c.(GCPCredentials)
	require.True(t, ok)
	assert.Equal(t, "carbon-prod", gcp.ProjectID)
	assert.Equal(t, map[string]string{"project_id": "carbon-prod"}, c.Metadata())
}

func TestDecodeCredentials_MissingField(t *testing.T) {
	raw := json.RawMessage(`{"accessKey":"AKIA","region":"eu-west-1"}`)

	_, err := DecodeCredentials(ProviderAWS, raw)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	var mf *MissingFieldsError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, []string{"secretKey"}, mf.Fields)
}

func TestDecodeCredentials_WrongShape(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"string", `"AKIA"`},
		{"number field", `{"subscriptionId":1,"tenantId":"t","clientId":"c","clientSecret":"s"}`},
		{"null", `null`},
		{"empty object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCredentials(ProviderAzure, json.RawMessage(tt.raw))
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestMetadata_OnlyRelevantField(t *testing.T) {
	aws := AWSCredentials{AccessKey: "a", SecretKey: "s", Region: "us-east-1"}
	az := AzureCredentials{SubscriptionID: "sub", TenantID: "t", ClientID: "c", ClientSecret: "s"}

	assert.Equal(t, map[string]string{"region": "us-east-1"}, aws.Metadata())
	assert.Equal(t, map[string]string{"subscription_id": "sub"}, az.Metadata())
}

func TestCredentialsFromFields(t *testing.T) {
	fields := map[string]string{"accessKey": "a", "secretKey": "s", "region": "r", "projectId": "ignored"}

	c := CredentialsFromFields(ProviderAWS, fields)

	assert.Equal(t, AWSCredentials{AccessKey: "a", SecretKey: "s", Region: "r"}, c)
	assert.NoError(t, ValidateCredentials(c))
	assert.Nil(t, CredentialsFromFields("", fields))
	assert.ErrorIs(t, ValidateCredentials(nil), ErrInvalidCredentials)
}

func TestIntakeError_Status(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ValidationError("x").Status())
	assert.Equal(t, http.StatusConflict, ConflictError("x", nil).Status())
	assert.Equal(t, http.StatusMethodNotAllowed, MethodNotAllowedError().Status())
	assert.Equal(t, http.StatusInternalServerError, ConfigurationError("x", nil).Status())
	assert.Equal(t, http.StatusInternalServerError, UnknownError("x", nil).Status())
}

func TestAsIntakeError(t *testing.T) {
	cause := errors.New("boom")

	ie := AsIntakeError(cause, "Internal server error")
	assert.Equal(t, KindUnknown, ie.Kind)
	assert.ErrorIs(t, ie, cause)

	v := ValidationError("bad")
	assert.Same(t, v, AsIntakeError(v, "ignored"))
}
