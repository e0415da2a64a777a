// Package session is the subsystem's front door. The manager hands out
// valid access tokens, triggers the sign-on cascade when they are
// missing, and runs the background refresh loop for as long as the
// application lives.
package session
