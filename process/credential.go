package process

// Credential is the POSIX-style ID block every Process carries,
// ported from process.rs's Credential.
type Credential struct {
	Ruid, Rgid uint32
	Suid, Sgid uint32
	Euid, Egid uint32
}

// CredentialError is returned by TrySetReuid when an unprivileged
// caller attempts a transition POSIX forbids.
type CredentialError struct{ Op string }

func (e CredentialError) Error() string { return "process: credential change denied: " + e.Op }

// TrySetReuid implements setreuid(2)'s rules: an unprivileged caller
// (effective UID != 0, evaluated before any change this call makes) may
// only move euid among {ruid, euid, suid}, and may only move ruid
// between {ruid, euid}. A privileged caller (euid == 0) may set either
// to any value. A successful euid change that diverges from ruid saves
// the new euid into suid; a successful ruid change always sets suid to
// the euid as it stands after this call (the new euid, if one was set).
func (c *Credential) TrySetReuid(ruid, euid *uint32) error {
	executingEuid := c.Euid

	if euid != nil {
		if executingEuid == 0 || oneOf(*euid, c.Ruid, c.Euid, c.Suid) {
			c.Euid = *euid
			if c.Euid != c.Ruid {
				c.Suid = c.Euid
			}
		} else {
			return CredentialError{Op: "seteuid"}
		}
	}

	if ruid != nil {
		if executingEuid == 0 || oneOf(*ruid, c.Ruid, executingEuid) {
			c.Ruid = *ruid
			c.Suid = c.Euid
		} else {
			return CredentialError{Op: "setruid"}
		}
	}

	return nil
}

func oneOf(v uint32, candidates ...uint32) bool {
	for _, c := range candidates {
		if v == c {
			return true
		}
	}
	return false
}
