package ports

// Membership is the outcome of a watched-status lookup.
type Membership int

const (
	NotMember Membership = iota
	Member
	// MembershipError means the lookup hit a genuine I/O failure. Display
	// callers treat it as NotMember.
	MembershipError
)

// String returns the wire name of the outcome.
func (m Membership) String() string {
	switch m {
	case Member:
		return "member"
	case NotMember:
		return "not_member"
	default:
		return "error"
	}
}

// Watched reduces the tri-state outcome to a boolean, degrading errors to
// NotMember.
func (m Membership) Watched() bool {
	return m == Member
}

// Provider is the contract every caller (overlay query, context-menu command,
// CLI) uses to reach the watched-state store. Implementations open the ledger
// per call and never cache state between calls.
type Provider interface {
	// ResolveOwner returns the directory whose ledger governs path.
	// Fails with ErrInvalidPath if path has no parent or no file name.
	ResolveOwner(path string) (string, error)

	// IsWatched reports whether path is marked watched. Non-video files and
	// directories without a ledger are NotMember without error. Only genuine
	// I/O failures return an error.
	IsWatched(path string) (Membership, error)

	// MarkWatched records path as watched, creating the ledger if needed.
	// Validation errors (ErrInvalidPath, ErrUnsupportedExtension) are
	// returned before any I/O.
	MarkWatched(path string) error

	// MarkUnwatched removes path from the ledger. Succeeds as a no-op if the
	// directory has no ledger or the file was never marked.
	MarkUnwatched(path string) error
}
