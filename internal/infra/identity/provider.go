// Package identity provides the authenticated-user port.
package identity

import (
	"os"
	"sync"

	"github.com/runoshun/tempo/internal/domain"
)

// EnvUser names the environment variable that overrides the configured user.
const EnvUser = "TEMPO_USER"

// Ensure Provider implements domain.Identity.
var _ domain.Identity = (*Provider)(nil)

// Provider holds the current user and notifies subscribers on change.
// Fields are ordered to minimize memory padding.
type Provider struct {
	subscribers map[int]func(userID string)
	userID      string
	nextID      int
	mu          sync.Mutex
}

// New creates a Provider for userID ("" = anonymous).
func New(userID string) *Provider {
	return &Provider{
		userID:      userID,
		subscribers: make(map[int]func(string)),
	}
}

// Resolve picks the user by precedence: flag, then TEMPO_USER, then config.
func Resolve(flag string, cfg *domain.Config) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvUser); env != "" {
		return env
	}
	if cfg != nil {
		return cfg.User.ID
	}
	return ""
}

// CurrentUser returns the current user ID, or "" when anonymous.
func (p *Provider) CurrentUser() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userID
}

// SetUser switches the current user. Subscribers are called outside the
// lock, in registration order, only when the user actually changes.
func (p *Provider) SetUser(userID string) {
	p.mu.Lock()
	if p.userID == userID {
		p.mu.Unlock()
		return
	}
	p.userID = userID
	fns := make([]func(string), 0, len(p.subscribers))
	for id := 0; id < p.nextID; id++ {
		if fn, ok := p.subscribers[id]; ok {
			fns = append(fns, fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(userID)
	}
}

// Subscribe registers fn for identity changes.
func (p *Provider) Subscribe(fn func(userID string)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subscribers, id)
		})
	}
}
