// Package vault provides pluggable storage for the user's sign-on credential.
//
// Three interchangeable backends are supported: the platform secret manager,
// an encrypted file, and the legacy plaintext file older releases wrote.
// A health check probes every backend without letting one failed probe block
// the others, and a source resolver maps the configured preference onto the
// first healthy backend. Use of the legacy plaintext file raises a one-time
// warning whose dismissal is itself persisted.
package vault
