// Package cascade acquires tokens for both hosts in one browser session.
// The primary host is signed on first; its session then unlocks the
// secondary host by visiting a protected page there, which rides the
// established identity through a chain of redirects. The secondary leg
// runs at most once per session and its failure never invalidates the
// primary tokens.
package cascade
