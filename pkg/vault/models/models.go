// Package models defines the persistent entities of the vault: users,
// sealed files, share links and their key fragments, second-factor
// challenges, and the attempt ledger. It also holds the credential helpers
// shared by the gate and the HTTP surface.
package models

// AllModels lists every entity for schema migration, in dependency order.
func AllModels() []any {
	return []any{
		&User{},
		&StoredFile{},
		&Share{},
		&ShareFragment{},
		&Challenge{},
		&AttemptRecord{},
	}
}
