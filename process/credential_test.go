package process

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func u32(v uint32) *uint32 { return &v }

// TestCredential_SetreuidFollowsPOSIXRules walks the exact sequence a
// process with no privilege goes through: it may swap its effective
// uid for its own real uid, may not drop straight to root, and once
// privileged (euid 0) may set both ids to an arbitrary value at once.
func TestCredential_SetreuidFollowsPOSIXRules(t *testing.T) {
	cred := Credential{Ruid: 1000, Euid: 1000, Suid: 1000}

	// An unprivileged process may set its effective uid back to its
	// own real uid: a no-op here, but must not be rejected.
	require.NoError(t, cred.TrySetReuid(nil, u32(1000)))
	require.Equal(t, Credential{Ruid: 1000, Euid: 1000, Suid: 1000}, cred)

	// The same unprivileged process may not become root.
	err := cred.TrySetReuid(nil, u32(0))
	require.Error(t, err)
	require.Equal(t, Credential{Ruid: 1000, Euid: 1000, Suid: 1000}, cred, "a rejected change must leave the credential untouched")

	// Once privileged, both ids can move to an arbitrary value at once.
	cred.Euid = 0
	require.NoError(t, cred.TrySetReuid(u32(2000), u32(2000)))
	require.Equal(t, Credential{Ruid: 2000, Euid: 2000, Suid: 2000}, cred)
}

func TestCredential_UnprivilegedEuidRestrictedToRuidEuidSuid(t *testing.T) {
	cred := Credential{Ruid: 1000, Euid: 1000, Suid: 2000}

	require.NoError(t, cred.TrySetReuid(nil, u32(2000)))
	require.Equal(t, uint32(2000), cred.Euid)

	err := cred.TrySetReuid(nil, u32(3000))
	require.Error(t, err)
}

func TestCredential_RuidChangeSetsSavedUidToNewEuid(t *testing.T) {
	cred := Credential{Ruid: 0, Euid: 0, Suid: 0}
	require.NoError(t, cred.TrySetReuid(u32(1000), u32(1500)))
	require.Equal(t, Credential{Ruid: 1000, Euid: 1500, Suid: 1500}, cred)
}

func TestCredential_NilArgumentsLeaveThatFieldUnchanged(t *testing.T) {
	cred := Credential{Ruid: 1000, Euid: 1000, Suid: 1000}
	require.NoError(t, cred.TrySetReuid(nil, nil))
	require.Equal(t, Credential{Ruid: 1000, Euid: 1000, Suid: 1000}, cred)
}
