package provider

import (
	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
)

// Pool holds the configured providers by name.
type Pool struct {
	order     []string
	providers map[string]MediaProvider
}

func NewPool(providers ...MediaProvider) *Pool {
	p := &Pool{providers: make(map[string]MediaProvider)}
	for _, provider := range providers {
		p.Add(provider)
	}
	return p
}

// Add registers provider under its name. A provider with the same name is
// replaced in place.
func (p *Pool) Add(provider MediaProvider) {
	if _, exists := p.providers[provider.Name()]; !exists {
		p.order = append(p.order, provider.Name())
	}
	p.providers[provider.Name()] = provider
}

// Get returns the provider registered under name.
func (p *Pool) Get(name string) (MediaProvider, error) {
	provider, ok := p.providers[name]
	if !ok {
		return nil, domain.NotFound("provider.pool.get", "provider", name)
	}
	return provider, nil
}

// ForContentType returns the first provider, in registration order, that
// accepts contentType.
func (p *Pool) ForContentType(contentType string) (MediaProvider, error) {
	for _, name := range p.order {
		if provider := p.providers[name]; provider.Accepts(contentType) {
			return provider, nil
		}
	}
	return nil, domain.NotFound("provider.pool.for_content_type", "provider", contentType)
}

// ForMedia returns the provider named by the media, falling back to the
// content type when the media does not name one.
func (p *Pool) ForMedia(media domain.Media) (MediaProvider, error) {
	if media.ProviderName != "" {
		return p.Get(media.ProviderName)
	}
	return p.ForContentType(media.ContentType)
}

// Names returns the provider names in registration order.
func (p *Pool) Names() []string {
	return append([]string(nil), p.order...)
}
