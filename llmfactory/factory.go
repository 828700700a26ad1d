// Package llmfactory creates OpenAI-compatible chat clients from
// provider configuration.
package llmfactory

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Factory creates chat clients for configured providers.
type Factory struct {
	cfg *Config
}

func New(cfg *Config) *Factory {
	return &Factory{cfg: cfg}
}

// Provider returns the named provider, or the first one if name is empty.
func (f *Factory) Provider(name string) (*ProviderConfig, error) {
	if len(f.cfg.Providers) == 0 {
		return nil, errors.New("no providers configured")
	}
	if name == "" {
		return f.cfg.Providers[0], nil
	}
	var available []string
	for _, p := range f.cfg.Providers {
		if p.Name == name {
			return p, nil
		}
		available = append(available, p.Name)
	}
	return nil, errors.Errorf("provider %q not found; available: %s",
		name, strings.Join(available, ", "))
}

// NewClient returns a chat client for the named provider,
// or for the first configured provider if name is empty.
func (f *Factory) NewClient(name string) (*openai.Client, *ProviderConfig, error) {
	p, err := f.Provider(name)
	if err != nil {
		return nil, nil, err
	}

	var opts []option.RequestOption
	if p.Token != "" {
		opts = append(opts, option.WithAPIKey(p.Token))
	}
	if p.OpenAI.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.OpenAI.BaseURL))
	}
	if p.OpenAI.OrgID != "" {
		opts = append(opts, option.WithOrganization(p.OpenAI.OrgID))
	}

	client := openai.NewClient(opts...)
	return &client, p, nil
}
