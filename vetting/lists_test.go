package vetting

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
)

type staticCurated CuratedLists

func (s staticCurated) Curated() CuratedLists { return CuratedLists(s) }

// fakeUserStore is a minimal UserListStore for pipeline tests.
type fakeUserStore struct {
	mu      sync.Mutex
	lists   UserLists
	readErr error
	putErr  error
}

func (f *fakeUserStore) Lists(context.Context) (UserLists, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return UserLists{}, f.readErr
	}
	return UserLists{
		Allow: append([]string(nil), f.lists.Allow...),
		Deny:  append([]string(nil), f.lists.Deny...),
	}, nil
}

func (f *fakeUserStore) Put(_ context.Context, list ListName, domain string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return false, f.putErr
	}
	if f.lists.Contains(list, domain) {
		return false, nil
	}
	remove := func(in []string) []string {
		out := in[:0]
		for _, d := range in {
			if d != domain {
				out = append(out, d)
			}
		}
		return out
	}
	if list == ListAllow {
		f.lists.Deny = remove(f.lists.Deny)
		f.lists.Allow = append(f.lists.Allow, domain)
	} else {
		f.lists.Allow = remove(f.lists.Allow)
		f.lists.Deny = append(f.lists.Deny, domain)
	}
	return true, nil
}

func TestListEntry_Matches(t *testing.T) {
	t.Parallel()
	tests := []struct {
		entry  ListEntry
		domain string
		url    string
		want   bool
	}{
		{ListEntry{DomainRoot: "example.com"}, "example.com", "https://example.com/", true},
		{ListEntry{DomainRoot: "www.example.com"}, "example.com", "https://example.com/", true},
		{ListEntry{DomainRoot: "https://www.example.com/"}, "example.com", "", true},
		{ListEntry{DomainRoot: "example.com"}, "sub.example.com", "", false},
		{ListEntry{URL: "https://evil.example/login"}, "evil.example", "https://evil.example/login", true},
		{ListEntry{URL: "https://evil.example/login"}, "evil.example", "https://evil.example/login/", false},
		{ListEntry{URL: "https://EVIL.example/login"}, "evil.example", "https://evil.example/login", false},
		{ListEntry{}, "", "", false},
	}
	for _, tt := range tests {
		if got := tt.entry.Matches(tt.domain, tt.url); got != tt.want {
			t.Errorf("%+v.Matches(%q, %q) = %v, want %v", tt.entry, tt.domain, tt.url, got, tt.want)
		}
	}
}

func TestListResolver_Order(t *testing.T) {
	t.Parallel()
	curated := staticCurated{
		Allow: []ListEntry{{DomainRoot: "both.example"}},
		Deny: []ListEntry{
			{DomainRoot: "both.example", Reason: "never reached"},
			{DomainRoot: "bad.example", Reason: "phishing kit"},
			{URL: "https://noreason.example/x"},
			{DomainRoot: "user-safe.example", Reason: "curated deny wins over user allow"},
		},
	}
	user := &fakeUserStore{lists: UserLists{
		Allow: []string{"user-safe.example", "mine.example"},
		Deny:  []string{"blocked.example"},
	}}
	r := NewListResolver(curated, user)
	ctx := context.Background()

	tests := []struct {
		domain, url string
		wantOK      bool
		want        Match
	}{
		{"both.example", "", true, Match{StatusWhitelisted, "Domain in global whitelist"}},
		{"bad.example", "", true, Match{StatusBlacklisted, "phishing kit"}},
		{"noreason.example", "https://noreason.example/x", true, Match{StatusBlacklisted, "In global blacklist"}},
		{"user-safe.example", "", true, Match{StatusBlacklisted, "curated deny wins over user allow"}},
		{"mine.example", "", true, Match{StatusWhitelisted, "Previously marked SAFE by user"}},
		{"blocked.example", "", true, Match{StatusBlacklisted, "Previously marked UNSAFE by user"}},
		{"other.example", "", false, Match{}},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(ctx, tt.domain, tt.url)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Resolve(%q) = %+v, %v; want %+v, %v", tt.domain, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestListResolver_UserReadFailureIsNoMatch(t *testing.T) {
	t.Parallel()
	user := &fakeUserStore{readErr: errors.New("disk gone")}
	r := NewListResolver(nil, user)
	if _, ok := r.Resolve(context.Background(), "example.com", "https://example.com/"); ok {
		t.Error("expected no match when user lists cannot be read")
	}
}

func TestListResolver_AddEntryNormalizesAndDedupes(t *testing.T) {
	t.Parallel()
	user := &fakeUserStore{}
	r := NewListResolver(nil, user)
	ctx := context.Background()

	for _, v := range []string{"https://www.example.com/login?x=1", "http://example.com", "example.com", " other.example "} {
		if err := r.AddEntry(ctx, ListAllow, v); err != nil {
			t.Fatalf("AddEntry(%q): %v", v, err)
		}
	}
	want := []string{"example.com", "other.example"}
	if !reflect.DeepEqual(user.lists.Allow, want) {
		t.Errorf("allow = %v, want %v", user.lists.Allow, want)
	}
}

func TestListResolver_AddEntryErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewListResolver(nil, &fakeUserStore{})

	if err := r.AddEntry(ctx, ListAllow, "   "); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("blank value: err = %v, want ErrEmptyValue", err)
	}
	if err := r.AddEntry(ctx, ListName("grey"), "example.com"); !errors.Is(err, ErrUnknownList) {
		t.Errorf("bad list: err = %v, want ErrUnknownList", err)
	}

	failing := NewListResolver(nil, &fakeUserStore{putErr: errors.New("read-only")})
	if err := failing.AddEntry(ctx, ListDeny, "example.com"); err == nil {
		t.Error("expected store error to surface")
	}

	if err := NewListResolver(nil, nil).AddEntry(ctx, ListAllow, "example.com"); err == nil {
		t.Error("expected error without a user store")
	}
}

func TestListResolver_MoveToDenyIdempotent(t *testing.T) {
	t.Parallel()
	user := &fakeUserStore{lists: UserLists{Allow: []string{"a.example", "x.example", "b.example"}}}
	r := NewListResolver(nil, user)
	ctx := context.Background()

	if err := r.MoveToDeny(ctx, "https://x.example/path"); err != nil {
		t.Fatal(err)
	}
	once, _ := user.Lists(ctx)
	if err := r.MoveToDeny(ctx, "x.example"); err != nil {
		t.Fatal(err)
	}
	twice, _ := user.Lists(ctx)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second MoveToDeny changed state: %+v -> %+v", once, twice)
	}
	if twice.Contains(ListAllow, "x.example") || !twice.Contains(ListDeny, "x.example") {
		t.Errorf("x.example should be only on deny: %+v", twice)
	}
	if !reflect.DeepEqual(twice.Allow, []string{"a.example", "b.example"}) {
		t.Errorf("allow order not preserved: %v", twice.Allow)
	}
}
