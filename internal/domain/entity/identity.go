// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

// Identity is an externally issued, immutable identity produced by the
// federated identity provider. Its lifecycle is owned entirely by the
// provider; this system only reads it.
type Identity struct {
	SubjectID   string // Stable opaque identifier, primary key across all stores.
	Email       string // Primary contact email reported by the provider.
	DisplayName string // Human-readable name reported by the provider.
	AvatarURL   string // Profile picture URL, may be empty.
}
