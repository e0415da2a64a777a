// Package surface defines the contract the auth core consumes from the
// embedded rendering surface, together with a production implementation
// backed by a real Chrome instance driven over CDP via go-rod.
//
// The automation only needs a handful of operations: navigation, current
// location, script probes, local storage dumps, and location/load callbacks.
// Everything else about the surface (theming, layout, the visual shell) is
// owned by other parts of the application.
package surface
