// Package domain contains core business types and interfaces.
//
// This file defines the read-only media record the thumbnail engine works on.
package domain

import (
	"path"
	"strings"
)

// Media is a persisted media record as seen by the thumbnail engine.
// The engine never mutates it.
type Media struct {
	ID                string
	Context           string
	ProviderName      string
	ProviderReference string // file name of the original inside the provider path
	Width             int
	Height            int
	ContentType       string
	CDNStatus         CDNStatus
}

// HasID reports whether the media has been persisted.
func (m Media) HasID() bool {
	return m.ID != ""
}

// Box returns the stored dimensions of the original.
func (m Media) Box() Box {
	return NewBox(m.Width, m.Height)
}

// Extension returns the lower-cased extension of the provider reference,
// without the leading dot. Query strings and fragments are ignored.
func (m Media) Extension() string {
	ref := m.ProviderReference
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(ref), "."))
}

// =============================================================================
// CDN Status
// =============================================================================

// CDNStatus is the flush state reported by a CDN collaborator.
type CDNStatus string

const (
	CDNStatusOK      CDNStatus = "OK"
	CDNStatusToSend  CDNStatus = "TO_SEND"
	CDNStatusToFlush CDNStatus = "TO_FLUSH"
	CDNStatusError   CDNStatus = "ERROR"
	CDNStatusWaiting CDNStatus = "WAITING"
)

// String returns the string representation of the status.
func (s CDNStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s CDNStatus) IsValid() bool {
	switch s {
	case CDNStatusOK, CDNStatusToSend, CDNStatusToFlush, CDNStatusError, CDNStatusWaiting:
		return true
	}
	return false
}

// IsPending reports whether a flush was requested but not confirmed yet.
func (s CDNStatus) IsPending() bool {
	switch s {
	case CDNStatusToSend, CDNStatusToFlush, CDNStatusWaiting:
		return true
	}
	return false
}
