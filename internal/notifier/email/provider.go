// Package email delivers email jobs through a primary provider with ordered fallbacks.
package email

import (
	"context"
	"fmt"
	"sync"

	"github.com/pratik-mahalle/petalert/internal/notifier"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
)

// Request is an email to be sent
type Request struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Provider is an email backend
type Provider interface {
	Name() string
	Send(ctx context.Context, req *Request) error
	IsConfigured() bool
}

// Registry manages email providers with fallback support
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	primary   string
	fallback  []string
	log       *logger.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		log:       log,
	}
}

// Register adds a provider
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
	r.log.WithFields(map[string]interface{}{
		"provider":   p.Name(),
		"configured": p.IsConfigured(),
	}).Info("Registered email provider")
}

// SetPrimary selects the provider tried first
func (r *Registry) SetPrimary(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("email provider %q not registered", name)
	}
	r.primary = name
	return nil
}

// SetFallback sets the providers tried, in order, after the primary fails
func (r *Registry) SetFallback(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, ok := r.providers[name]; !ok {
			return fmt.Errorf("email provider %q not registered", name)
		}
	}
	r.fallback = names
	return nil
}

func (r *Registry) order() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Provider
	seen := map[string]bool{}
	for _, name := range append([]string{r.primary}, r.fallback...) {
		p, ok := r.providers[name]
		if !ok || seen[name] || !p.IsConfigured() {
			continue
		}
		seen[name] = true
		out = append(out, p)
	}
	return out
}

// Send tries the primary and then each fallback. When every provider
// fails the first error is returned.
func (r *Registry) Send(ctx context.Context, req *Request) error {
	providers := r.order()
	if len(providers) == 0 {
		return notifier.Transient(fmt.Errorf("no configured email provider available"))
	}

	var firstErr error
	for i, p := range providers {
		err := p.Send(ctx, req)
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
		if i+1 < len(providers) {
			r.log.WithFields(map[string]interface{}{
				"provider": p.Name(),
				"fallback": providers[i+1].Name(),
				"error":    err.Error(),
			}).Warn("Email provider failed, trying fallback")
		}
	}
	return firstErr
}
