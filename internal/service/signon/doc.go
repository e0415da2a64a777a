// Package signon drives the interactive login page to completion.
// It runs a small poll-and-act state machine over the rendering surface:
// every tick observes the page, performs at most one side effect for the
// current stage, and advances only on confirmed progress. Redirect to the
// landing page finishes the machine regardless of its current stage, so a
// user completing steps manually never fights the automation.
package signon
