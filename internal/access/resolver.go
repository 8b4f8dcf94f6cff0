// Package access computes the set of documents a requester may read.
//
// Visibility follows the two-tier role hierarchy: a manager reads only their
// own uploads, an employee reads only their manager's uploads. Anything else
// resolves to nothing.
package access

import (
	"docuchat/internal/model"
)

type UserStore interface {
	GetByUsername(username string) (*model.User, error)
}

type DocumentStore interface {
	ListByOwner(owner string) ([]model.Document, error)
}

type Resolver struct {
	users UserStore
	docs  DocumentStore
}

func NewResolver(users UserStore, docs DocumentStore) *Resolver {
	return &Resolver{users: users, docs: docs}
}

// Accessible returns the documents the requester may read, with filenames
// intact for provenance. Unknown roles and dangling employee records resolve
// to an empty set rather than an error; access never fails open.
func (r *Resolver) Accessible(username, role string) ([]model.Document, error) {
	switch role {
	case model.RoleManager:
		return r.docs.ListByOwner(username)
	case model.RoleEmployee:
		user, err := r.users.GetByUsername(username)
		if err != nil {
			return nil, err
		}
		if user == nil || user.Manager == "" {
			return nil, nil
		}
		return r.docs.ListByOwner(user.Manager)
	default:
		return nil, nil
	}
}
