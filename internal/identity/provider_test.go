package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticProviderStartsSignedOut(t *testing.T) {
	p := NewStaticProvider(Identity{UID: "uid-1"})

	_, signedIn := p.Current()
	require.False(t, signedIn)
}

func TestStaticProviderSignInSignOut(t *testing.T) {
	p := NewStaticProvider(Identity{UID: "uid-1", Email: "jordan@example.com"})

	p.SignIn()
	id, signedIn := p.Current()
	require.True(t, signedIn)
	require.Equal(t, "uid-1", id.UID)

	p.SignOut()
	_, signedIn = p.Current()
	require.False(t, signedIn)
}

func TestStaticProviderNotifiesOnTransitions(t *testing.T) {
	p := NewStaticProvider(Identity{UID: "uid-1"})

	type transition struct {
		id       Identity
		signedIn bool
	}
	var seen []transition
	p.OnChange(func(id Identity, signedIn bool) {
		seen = append(seen, transition{id, signedIn})
	})

	p.SignIn()
	p.SignIn() // no-op, already signed in
	p.SignOut()

	require.Len(t, seen, 2)
	require.True(t, seen[0].signedIn)
	require.Equal(t, "uid-1", seen[0].id.UID)
	require.False(t, seen[1].signedIn)
}

func TestStaticProviderUnsubscribe(t *testing.T) {
	p := NewStaticProvider(Identity{UID: "uid-1"})

	notified := 0
	unsubscribe := p.OnChange(func(Identity, bool) { notified++ })
	unsubscribe()

	p.SignIn()
	require.Zero(t, notified)
}
