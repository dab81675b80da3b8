package pages

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"movieflex/models"
	"movieflex/services/detail"
)

const (
	defaultMaxPages = 256
	defaultTTL      = 30 * time.Minute
)

// Registry owns the live detail pages. Pages are dropped when closed, when
// idle for longer than the TTL, or when the registry is full; a dropped page
// is always closed so its lookups stop.
type Registry struct {
	source detail.Source
	pages  *expirable.LRU[string, *detail.Page]
	newID  func() string
}

func NewRegistry(source detail.Source, maxPages int, ttl time.Duration) *Registry {
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	onEvict := func(id string, page *detail.Page) {
		page.Close()
		log.Printf("[pages] dropped %s (%s)", id, page.Key())
	}
	return &Registry{
		source: source,
		pages:  expirable.NewLRU[string, *detail.Page](maxPages, onEvict, ttl),
		newID:  uuid.NewString,
	}
}

// Open registers a fresh page for key. The page is not loaded yet.
func (r *Registry) Open(key models.TitleKey) *detail.Page {
	page := detail.NewPage(context.Background(), r.newID(), key, r.source)
	r.pages.Add(page.ID(), page)
	return page
}

// Get returns a live page and restarts its idle timer. The re-add that
// renews the TTL is not atomic with the lookup, so a page closed in between
// is removed again instead of being handed out.
func (r *Registry) Get(id string) (*detail.Page, bool) {
	page, ok := r.pages.Get(id)
	if !ok {
		return nil, false
	}
	r.pages.Add(id, page)
	if page.Closed() {
		r.pages.Remove(id)
		return nil, false
	}
	return page, true
}

// Close drops the page and cancels its lookups.
func (r *Registry) Close(id string) bool {
	return r.pages.Remove(id)
}

func (r *Registry) Len() int {
	return r.pages.Len()
}

// CloseAll drops every page; used on shutdown.
func (r *Registry) CloseAll() {
	r.pages.Purge()
}
