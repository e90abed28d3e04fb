package testutil

import (
	"strings"
	"sync"
)

// FakeHistory is an in-memory browser history.
//
// Push and Replace update the location immediately, the way the address bar
// does, and then notify OnChange the way a client-side router does once the
// route change commits. Tests that need to model a delayed commit leave
// OnChange nil and deliver the location themselves.
type FakeHistory struct {
	mu       sync.Mutex
	entries  []string
	index    int
	pushes   []string
	replaces []string

	// OnChange is called after every location change, without the lock held.
	OnChange func(path, rawQuery string)
}

// NewFakeHistory creates a history whose single entry is url.
func NewFakeHistory(url string) *FakeHistory {
	if url == "" {
		url = "/"
	}
	return &FakeHistory{entries: []string{url}}
}

// URL returns the current entry.
func (h *FakeHistory) URL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Path returns the current path.
func (h *FakeHistory) Path() string {
	path, _ := splitURL(h.URL())
	return path
}

// RawQuery returns the current query without '?'.
func (h *FakeHistory) RawQuery() string {
	_, q := splitURL(h.URL())
	return q
}

// Push appends a new entry, discarding any forward entries.
func (h *FakeHistory) Push(url string) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], url)
	h.index++
	h.pushes = append(h.pushes, url)
	h.mu.Unlock()
	h.notify(url)
}

// Replace overwrites the current entry.
func (h *FakeHistory) Replace(url string) {
	h.mu.Lock()
	h.entries[h.index] = url
	h.replaces = append(h.replaces, url)
	h.mu.Unlock()
	h.notify(url)
}

// Navigate simulates a typed URL or followed link: a push that did not
// originate from the application.
func (h *FakeHistory) Navigate(url string) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], url)
	h.index++
	h.mu.Unlock()
	h.notify(url)
}

// Back moves to the previous entry. Returns false at the first entry.
func (h *FakeHistory) Back() bool {
	h.mu.Lock()
	if h.index == 0 {
		h.mu.Unlock()
		return false
	}
	h.index--
	url := h.entries[h.index]
	h.mu.Unlock()
	h.notify(url)
	return true
}

// Pushes returns every URL passed to Push.
func (h *FakeHistory) Pushes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.pushes...)
}

// Replaces returns every URL passed to Replace.
func (h *FakeHistory) Replaces() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.replaces...)
}

// Len returns the number of entries.
func (h *FakeHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *FakeHistory) notify(url string) {
	if h.OnChange == nil {
		return
	}
	path, q := splitURL(url)
	h.OnChange(path, q)
}

func splitURL(url string) (string, string) {
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url = url[:i]
	}
	path, q, _ := strings.Cut(url, "?")
	if path == "" {
		path = "/"
	}
	return path, q
}
