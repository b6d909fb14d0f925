package domain

import "time"

// BlacklistEntry records the IPs a blocked account has been seen from.
// There is at most one entry per account; blocking the same account from a
// new address appends to IPs instead of creating a second entry.
type BlacklistEntry struct {
	ID        string
	UserID    string
	IPs       []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasIP reports whether the entry already knows the address.
func (e BlacklistEntry) HasIP(ip string) bool {
	for _, known := range e.IPs {
		if known == ip {
			return true
		}
	}
	return false
}
