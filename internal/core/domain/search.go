package domain

import "time"

// SearchQuery carries header-level search criteria. Criteria present
// on the query are combined with AND semantics; an empty query
// matches every record.
type SearchQuery struct {
	// Subject matches records whose subject contains this value,
	// case-insensitively. Empty means no subject filter.
	Subject string

	// CreatedAfter is an inclusive lower bound on creation time.
	// Zero means unbounded.
	CreatedAfter time.Time

	// CreatedBefore is an inclusive upper bound on creation time.
	// Zero means unbounded.
	CreatedBefore time.Time
}

// IsEmpty reports whether the query carries no criteria.
func (q SearchQuery) IsEmpty() bool {
	return q.Subject == "" && q.CreatedAfter.IsZero() && q.CreatedBefore.IsZero()
}
