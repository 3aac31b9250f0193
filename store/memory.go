package store

import (
	"context"
	"slices"
	"sync"

	"url-vetting/vetting"
)

// Memory is a process-local user-list store.
type Memory struct {
	mu    sync.RWMutex
	lists vetting.UserLists
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Lists(context.Context) (vetting.UserLists, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneLists(m.lists), nil
}

func (m *Memory) Put(_ context.Context, list vetting.ListName, domain string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return place(&m.lists, list, domain), nil
}

// place puts domain on list and removes it from the other one. It reports
// whether l changed.
func place(l *vetting.UserLists, list vetting.ListName, domain string) bool {
	if l.Contains(list, domain) {
		return false
	}
	if list == vetting.ListAllow {
		l.Deny = slices.DeleteFunc(l.Deny, func(d string) bool { return d == domain })
		l.Allow = append(l.Allow, domain)
	} else {
		l.Allow = slices.DeleteFunc(l.Allow, func(d string) bool { return d == domain })
		l.Deny = append(l.Deny, domain)
	}
	return true
}

func cloneLists(l vetting.UserLists) vetting.UserLists {
	return vetting.UserLists{
		Allow: append([]string{}, l.Allow...),
		Deny:  append([]string{}, l.Deny...),
	}
}
