package identity

import "sync"

// Identity is the authenticated principal the pipeline derives records for.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
}

// Provider is the auth boundary. The pipeline treats it as an opaque
// event source and never implements authentication itself.
type Provider interface {
	// Current returns the signed-in identity, if any.
	Current() (Identity, bool)

	// OnChange registers a listener for auth state transitions and
	// returns its unsubscribe func. The listener receives the identity
	// and whether a principal is now signed in.
	OnChange(fn func(Identity, bool)) func()
}

// StaticProvider holds a single configured identity with explicit
// sign-in/sign-out transitions. It backs the tracker in deployments
// where the principal is fixed by environment, and tests everywhere.
type StaticProvider struct {
	mu        sync.Mutex
	identity  Identity
	signedIn  bool
	listeners map[int]func(Identity, bool)
	nextID    int
}

// NewStaticProvider creates a signed-out provider for the given identity.
func NewStaticProvider(id Identity) *StaticProvider {
	return &StaticProvider{
		identity:  id,
		listeners: make(map[int]func(Identity, bool)),
	}
}

func (p *StaticProvider) Current() (Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.signedIn {
		return Identity{}, false
	}
	return p.identity, true
}

func (p *StaticProvider) OnChange(fn func(Identity, bool)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// SignIn marks the identity as authenticated and notifies listeners.
func (p *StaticProvider) SignIn() {
	p.transition(true)
}

// SignOut clears the authenticated state and notifies listeners.
func (p *StaticProvider) SignOut() {
	p.transition(false)
}

func (p *StaticProvider) transition(signedIn bool) {
	p.mu.Lock()
	if p.signedIn == signedIn {
		p.mu.Unlock()
		return
	}
	p.signedIn = signedIn
	identity := p.identity
	listeners := make([]func(Identity, bool), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(identity, signedIn)
	}
}
