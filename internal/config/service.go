package config

import "time"

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	ClientURL   string `yaml:"client_url"`

	// CommissionRate is the platform cut applied once per completed payment,
	// e.g. 0.10 for 10%.
	CommissionRate float64 `yaml:"commission_rate"`

	Stripe   StripeConfig        `yaml:"stripe"`
	Gateways []RestGatewayConfig `yaml:"gateways"`
	Notify   NotifyConfig        `yaml:"notify"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

// RestGatewayConfig parameterizes one generic HTTP-templated gateway.
// Similar REST-style providers differ only in endpoints, auth header and
// their status vocabulary, so they share one adapter implementation.
type RestGatewayConfig struct {
	Code          string            `yaml:"code"`
	BaseURL       string            `yaml:"base_url"`
	APIKey        string            `yaml:"api_key"`
	WebhookSecret string            `yaml:"webhook_secret"`
	AuthHeader    string            `yaml:"auth_header"`
	InitiatePath  string            `yaml:"initiate_path"`
	StatusPath    string            `yaml:"status_path"`
	CancelPath    string            `yaml:"cancel_path"`
	CanCancel     bool              `yaml:"can_cancel"`
	StatusMap     map[string]string `yaml:"status_map"`
	Timeout       time.Duration     `yaml:"timeout"`
}

// NotifyConfig controls downstream notification delivery and its retry bound
type NotifyConfig struct {
	URL         string        `yaml:"url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}
