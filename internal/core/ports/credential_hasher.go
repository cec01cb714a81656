package ports

// CredentialHasher turns a password into its stored form and verifies
// supplied passwords against it.
type CredentialHasher interface {
	Hash(password string) (string, error)
	Verify(stored, supplied string) bool
}
