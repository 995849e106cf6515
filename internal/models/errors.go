package models

import "fmt"

// MissingCredentialError reports a capability whose credential is not configured.
type MissingCredentialError struct {
	Capability string
	Env        string
	Where      string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s requires %s to be set", e.Capability, e.Env)
}
