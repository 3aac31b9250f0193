package vetting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"url-vetting/lexical"
)

// ListName identifies one side of a list pair.
type ListName string

const (
	ListAllow ListName = "allow"
	ListDeny  ListName = "deny"
)

var (
	ErrEmptyValue  = errors.New("value required")
	ErrUnknownList = errors.New("unknown list")
)

// Valid reports whether n names the allow or the deny list.
func (n ListName) Valid() bool { return n == ListAllow || n == ListDeny }

// Other returns the opposite list.
func (n ListName) Other() ListName {
	if n == ListAllow {
		return ListDeny
	}
	return ListAllow
}

// ListEntry is one curated list record. At least one of DomainRoot and
// URL is set.
type ListEntry struct {
	DomainRoot string `json:"domain_root,omitempty"`
	URL        string `json:"url,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Matches reports whether e covers domain (normalized comparison) or
// rawURL (exact comparison).
func (e ListEntry) Matches(domain, rawURL string) bool {
	if e.DomainRoot != "" && strings.TrimPrefix(lexical.NormalizeDomain(e.DomainRoot), "www.") == domain {
		return true
	}
	return e.URL != "" && e.URL == rawURL
}

// CuratedLists is a read-only snapshot of the centrally distributed lists.
type CuratedLists struct {
	Allow []ListEntry `json:"allow"`
	Deny  []ListEntry `json:"deny"`
}

// UserLists is a snapshot of the user's decisions in insertion order.
// A domain appears in at most one of the two slices.
type UserLists struct {
	Allow []string `json:"allow"`
	Deny  []string `json:"deny"`
}

// Contains reports whether domain is on the named list.
func (l UserLists) Contains(name ListName, domain string) bool {
	list := l.Allow
	if name == ListDeny {
		list = l.Deny
	}
	for _, d := range list {
		if d == domain {
			return true
		}
	}
	return false
}

// CuratedSource provides the curated lists. Implementations return empty
// lists until loading has finished; they never block.
type CuratedSource interface {
	Curated() CuratedLists
}

// UserListStore persists user lists. Put places domain on list, removing
// it from the other list in the same update, and reports whether anything
// changed. Implementations must allow concurrent Lists calls during Put.
type UserListStore interface {
	Lists(ctx context.Context) (UserLists, error)
	Put(ctx context.Context, list ListName, domain string) (changed bool, err error)
}

// Match is a list hit.
type Match struct {
	Status Status
	Reason string
}

// ListResolver checks a candidate against curated then user lists.
type ListResolver struct {
	curated CuratedSource
	user    UserListStore
}

// NewListResolver wires the two list sources. Either may be nil.
func NewListResolver(curated CuratedSource, user UserListStore) *ListResolver {
	return &ListResolver{curated: curated, user: user}
}

// Resolve walks curated-allow, curated-deny, user-allow, user-deny and
// returns the first hit. A user-list read failure counts as no match.
func (r *ListResolver) Resolve(ctx context.Context, domain, rawURL string) (Match, bool) {
	if r.curated != nil {
		curated := r.curated.Curated()
		for _, e := range curated.Allow {
			if e.Matches(domain, rawURL) {
				return Match{Status: StatusWhitelisted, Reason: "Domain in global whitelist"}, true
			}
		}
		for _, e := range curated.Deny {
			if e.Matches(domain, rawURL) {
				reason := e.Reason
				if reason == "" {
					reason = "In global blacklist"
				}
				return Match{Status: StatusBlacklisted, Reason: reason}, true
			}
		}
	}

	if r.user == nil {
		return Match{}, false
	}
	lists, err := r.user.Lists(ctx)
	if err != nil {
		log.Printf("[Lists] user lists unavailable, treating as no match: %v", err)
		return Match{}, false
	}
	if lists.Contains(ListAllow, domain) {
		return Match{Status: StatusWhitelisted, Reason: "Previously marked SAFE by user"}, true
	}
	if lists.Contains(ListDeny, domain) {
		return Match{Status: StatusBlacklisted, Reason: "Previously marked UNSAFE by user"}, true
	}
	return Match{}, false
}

// AddEntry normalizes value and places it on the named user list.
func (r *ListResolver) AddEntry(ctx context.Context, list ListName, value string) error {
	if !list.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownList, list)
	}
	domain := lexical.NormalizeDomain(strings.TrimSpace(value))
	if domain == "" {
		return ErrEmptyValue
	}
	if r.user == nil {
		return errors.New("no user list store configured")
	}
	changed, err := r.user.Put(ctx, list, domain)
	if err != nil {
		return fmt.Errorf("add %s to %s list: %w", domain, list, err)
	}
	if changed {
		log.Printf("[Lists] %s added to user %s list", domain, list)
	}
	return nil
}

// MoveToDeny removes value from the user allow list and adds it to the
// deny list in one update. Repeating it changes nothing.
func (r *ListResolver) MoveToDeny(ctx context.Context, value string) error {
	return r.AddEntry(ctx, ListDeny, value)
}

// UserLists returns the current user lists.
func (r *ListResolver) UserLists(ctx context.Context) (UserLists, error) {
	if r.user == nil {
		return UserLists{}, nil
	}
	return r.user.Lists(ctx)
}
