// Package discovery extracts a configuration service record from mDNS
// responses. A Client owns the single reusable packet buffer and the name
// of the last query it sent; inbound packets are screened against that
// name, walked record by record, and folded into a Service which is
// committed to the Store only when complete.
package discovery

import (
	"fmt"
	"sync"
	"time"
)

// Field length caps for text pulled out of untrusted packets. Oversized
// values truncate instead of growing without bound.
const (
	maxPathLen    = 64
	maxVersionLen = 16
	maxURLLen     = 256
)

// Service is the record extracted from one mDNS response packet.
//
// Valid is never trusted from partial state: it is recomputed as the AND
// of the three required fields (port from SRV, path from TXT, address
// from A) after all records of a packet have been folded in. The three
// records commonly arrive as separate answers in one packet; answers
// split across packets never combine.
type Service struct {
	Hostname   string `json:"hostname"`
	Port       uint16 `json:"port"`
	Path       string `json:"path"`
	APIVersion string `json:"api_version,omitempty"`
	IPv4       uint32 `json:"-"`
	IPv4Text   string `json:"ipv4"`
	Valid      bool   `json:"valid"`
}

// revalidate recomputes Valid from the required fields.
func (s *Service) revalidate() {
	s.Valid = s.Port > 0 && s.Path != "" && s.IPv4Text != ""
}

// URL composes the configuration endpoint, http://<ip>:<port><path>.
// It fails when the record is not valid or the result would exceed the
// URL length cap.
func (s Service) URL() (string, error) {
	if !s.Valid {
		return "", fmt.Errorf("service record is incomplete")
	}
	u := fmt.Sprintf("http://%s:%d%s", s.IPv4Text, s.Port, s.Path)
	if len(u) > maxURLLen {
		return "", fmt.Errorf("service URL exceeds %d bytes", maxURLLen)
	}
	return u, nil
}

// Store holds the most recently committed valid Service.
//
// A valid record is sticky: an incomplete extraction from a later packet
// never erases it. Collaborators (the agent loop, the management API)
// read through Current.
type Store struct {
	mu        sync.RWMutex
	current   Service
	committed bool
	updatedAt time.Time
}

// NewStore returns an empty Store; Current reports no record until the
// first valid commit.
func NewStore() *Store {
	return &Store{}
}

// Commit replaces the stored record with svc if svc is valid. Invalid
// records are ignored so a previously discovered record keeps serving
// callers. It reports whether the record was stored.
func (st *Store) Commit(svc Service) bool {
	if !svc.Valid {
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current = svc
	st.committed = true
	st.updatedAt = time.Now()
	return true
}

// Current returns the last committed record and whether one exists.
func (st *Store) Current() (Service, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current, st.committed
}

// UpdatedAt returns when the current record was committed.
func (st *Store) UpdatedAt() time.Time {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.updatedAt
}
