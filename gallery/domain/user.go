package domain

import "context"

// UnknownDisplayName is shown for authors the directory cannot resolve.
const UnknownDisplayName = "Unknown User"

// Author is the public identity of an image owner.
type Author struct {
	ID          string
	DisplayName string
}

// UnknownAuthor is the placeholder identity used when id cannot be resolved.
func UnknownAuthor(id string) Author {
	return Author{ID: id, DisplayName: UnknownDisplayName}
}

// UserDirectory resolves author identifiers to display identities.
type UserDirectory interface {
	// GetUser returns nil, nil when the user is unknown.
	GetUser(ctx context.Context, id string) (*Author, error)
	UpsertUser(ctx context.Context, a Author) error
}
