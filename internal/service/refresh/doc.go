// Package refresh keeps stored tokens alive in the background.
// A scheduler periodically inspects the token store and, for every host
// whose token is inside the refresh margin, exchanges the refresh token
// for a new pair over plain HTTP, without involving the browser surface.
package refresh
