package provider

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAdapter struct {
	code string
}

func (a staticAdapter) Code() string { return a.code }

func (a staticAdapter) Ready() error { return nil }

func (a staticAdapter) Initiate(context.Context, *InitiateRequest) (*InitiateResponse, error) {
	return nil, nil
}

func (a staticAdapter) GetStatus(context.Context, string) (*StatusResponse, error) {
	return nil, nil
}

func (a staticAdapter) Cancel(context.Context, string) (*StatusResponse, error) {
	return nil, nil
}

func (a staticAdapter) VerifyWebhook([]byte, string, http.Header) (*Event, error) {
	return nil, nil
}

func (a staticAdapter) ParseWebhook(*Event) (*WebhookResult, error) {
	return nil, nil
}

func TestRegistryLookup(t *testing.T) {
	registry, err := NewRegistry(staticAdapter{code: "alpha"}, staticAdapter{code: "beta"})
	require.NoError(t, err)

	adapter, ok := registry.Get("alpha")
	assert.True(t, ok)
	assert.Equal(t, "alpha", adapter.Code())

	_, ok = registry.Get("ghost")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"alpha", "beta"}, registry.Codes())
}

func TestRegistryRejectsDuplicateCodes(t *testing.T) {
	_, err := NewRegistry(staticAdapter{code: "alpha"}, staticAdapter{code: "alpha"})
	require.Error(t, err)
}
