// Package token owns the per-host token records: their extraction from the
// rendering surface's local storage, their persistence, and their validity
// arithmetic. The store is the single source of truth for every consumer
// that needs "a valid token for host X".
package token
