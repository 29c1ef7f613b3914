package handlers

import (
	"sync"

	"github.com/pocketbase/pocketbase/core"

	"feeproposal/services"
)

// ProposalRegistry keeps open proposal trees in memory so consecutive edits
// hit the same aggregate instead of re-reading records on every request.
// Trees are written back to records only on an explicit save.
type ProposalRegistry struct {
	mu   sync.Mutex
	open map[string]*services.Proposal
}

func NewProposalRegistry() *ProposalRegistry {
	return &ProposalRegistry{open: map[string]*services.Proposal{}}
}

// Get returns the cached tree for a proposal id, or nil.
func (r *ProposalRegistry) Get(id string) *services.Proposal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open[id]
}

// Put caches a tree under its proposal id, replacing any previous entry.
func (r *ProposalRegistry) Put(p *services.Proposal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open[p.ID] = p
}

// Remove drops a proposal from the cache.
func (r *ProposalRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.open, id)
}

// apiError writes a JSON error body. Callers log with their op prefix
// before returning it.
func apiError(e *core.RequestEvent, statusCode int, message string) error {
	return e.JSON(statusCode, map[string]string{"error": message})
}

// requirePathValue reads a path parameter, returning ok=false when missing.
func requirePathValue(e *core.RequestEvent, name string) (string, bool) {
	v := e.Request.PathValue(name)
	return v, v != ""
}
