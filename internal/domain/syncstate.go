package domain

import "time"

// Account is the remote identity obtained during the sync handshake.
type Account struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	ID        int64  `json:"id"`
}

// DisplayName prefers the full name and falls back to the login.
func (a Account) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Login
}

// SyncState is the persisted backup configuration. It is either empty or
// fully configured; never a credential without a document.
type SyncState struct {
	Credential string
	DocumentID string
	Account    Account
	LastSync   *time.Time
}

// Connected reports whether a credential and a resolved document are present.
func (s SyncState) Connected() bool {
	return s.Credential != "" && s.DocumentID != ""
}
