// Package nocache carries a request's intent to bypass every caching layer
// between the handler and the client.
package nocache

import (
	"net/http"
	"strings"
	"sync"
)

// Flag names one caching layer that should be bypassed.
type Flag string

const (
	PageCache     Flag = "DONOTCACHEPAGE"
	DatabaseCache Flag = "DONOTCACHEDB"
	Minify        Flag = "DONOTMINIFY"
	CDN           Flag = "DONOTCDN"
	ObjectCache   Flag = "DONOTCACHEOBJECT"
)

// Flags lists every flag Prevent sets, in header order.
var Flags = []Flag{PageCache, DatabaseCache, Minify, CDN, ObjectCache}

// BypassHeader lists the flags set on a response.
const BypassHeader = "X-Cache-Bypass"

// Policy holds set-once bypass flags for a single request.
// The zero value is ready to use.
type Policy struct {
	mu        sync.Mutex
	flags     map[Flag]bool
	prevented bool
}

// New returns an empty Policy.
func New() *Policy {
	return &Policy{}
}

// Set sets flag to true unless it is already set. It reports whether this
// call set it.
func (p *Policy) Set(flag Flag) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setLocked(flag)
}

func (p *Policy) setLocked(flag Flag) bool {
	if p.flags == nil {
		p.flags = make(map[Flag]bool, len(Flags))
	}
	if _, ok := p.flags[flag]; ok {
		return false
	}
	p.flags[flag] = true
	return true
}

// IsSet reports whether flag has been set.
func (p *Policy) IsSet(flag Flag) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flags[flag]
}

// Prevent sets every bypass flag that is not yet set and marks the response
// as not storable. Calling it again has no further effect.
func (p *Policy) Prevent() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range Flags {
		p.setLocked(f)
	}
	p.prevented = true
}

// Prevented reports whether Prevent has been called.
func (p *Policy) Prevented() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prevented
}

// Apply writes the policy to response headers. When caching is prevented
// the headers forbid any downstream cache from storing the response.
func (p *Policy) Apply(h http.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var set []string
	for _, f := range Flags {
		if p.flags[f] {
			set = append(set, string(f))
		}
	}
	if len(set) > 0 {
		h.Set(BypassHeader, strings.Join(set, ", "))
	}
	if !p.prevented {
		return
	}
	h.Set("Expires", "Wed, 11 Jan 1984 05:00:00 GMT")
	h.Set("Cache-Control", "no-cache, must-revalidate, max-age=0, no-store, private")
	h.Del("Last-Modified")
}
