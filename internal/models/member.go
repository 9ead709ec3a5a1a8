package models

// Member represents a person who can take part in festivals.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// Name is the display name of the member.
	Name string

	// PartnerID references the member this one is paired with.
	// Empty when the member has no partner. Pairing is symmetric: if A's partner
	// is B then B's partner is A; the storage layer updates both sides together.
	PartnerID string

	// CreatedAt is the Unix timestamp when the member was created.
	CreatedAt int64
}

// HasPartner reports whether the member is paired with someone.
func (m *Member) HasPartner() bool {
	return m.PartnerID != ""
}
