package domain

import "time"

// Member represents a chat user who has talked to the bot
type Member struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName prefers the username, falling back to the first name
func (m *Member) DisplayName() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	if m.LastName != "" {
		return m.FirstName + " " + m.LastName
	}
	return m.FirstName
}

// MemberRepository defines the interface for member storage
type MemberRepository interface {
	Upsert(member *Member) error
	GetByID(id int64) (*Member, error)
	GetByIDs(ids []int64) (map[int64]*Member, error)
}
