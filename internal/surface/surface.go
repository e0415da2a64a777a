package surface

//go:generate $MOCKGEN -source=surface.go -destination=mocks/surface_mock.go

import "context"

// StorageEntry is a single key/value pair from the rendering surface's local storage.
type StorageEntry struct {
	// Key is the local storage key.
	Key string
	// Value is the raw stored value.
	Value string
}

// Surface is the narrow contract the auth core consumes from the embedded
// rendering surface. Implementations must tolerate the surface disappearing
// (window closed, renderer crashed) by returning errors instead of panicking.
type Surface interface {
	// Navigate loads the given URL in the surface.
	Navigate(ctx context.Context, url string) error
	// CurrentLocation returns the URL the surface is currently showing.
	CurrentLocation(ctx context.Context) (string, error)
	// RunProbe evaluates a small script in the surface and returns its
	// string result. Probes must be side-effect free unless the caller
	// explicitly intends a click or form fill.
	RunProbe(ctx context.Context, script string) (string, error)
	// DumpLocalStorage returns every key/value pair of the surface's
	// local storage for the current origin.
	DumpLocalStorage(ctx context.Context) ([]StorageEntry, error)
	// OnLocationChanged registers a handler invoked with the new URL
	// whenever the surface's location changes.
	OnLocationChanged(handler func(location string))
	// OnPageLoaded registers a handler invoked when a page finishes loading.
	OnPageLoaded(handler func())
}
