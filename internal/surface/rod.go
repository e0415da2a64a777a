package surface

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/meridianlabs/meridian-desk/internal/logger"
)

const (
	// browserSlowMotionDelay is the delay between browser actions for visibility during debugging.
	browserSlowMotionDelay = 200 * time.Millisecond

	// browserCleanupDelay is the delay to wait for Chrome to release file locks before cleanup.
	browserCleanupDelay = 500 * time.Millisecond

	// localStorageDumpScript serializes every local storage entry of the
	// current origin into a JSON array of {key, value} objects.
	localStorageDumpScript = `() => {
		const entries = [];
		for (let i = 0; i < localStorage.length; i++) {
			const key = localStorage.key(i);
			entries.push({ key: key, value: localStorage.getItem(key) });
		}
		return JSON.stringify(entries);
	}`
)

// Static error definitions for better error handling.
var (
	// ErrSurfaceNotStarted is returned when an operation runs before Start.
	ErrSurfaceNotStarted = errors.New("rendering surface is not started")

	// ErrSurfaceGone is returned when the browser or page is no longer reachable.
	ErrSurfaceGone = errors.New("rendering surface is gone")
)

// RodSurface implements Surface on top of a visible Chrome instance.
type RodSurface struct {
	browser *rod.Browser
	page    *rod.Page

	// tempDir stores the temporary profile directory for cleanup.
	tempDir string

	// handlersMu guards the callback slices; callbacks fire from the CDP
	// event pump goroutine.
	handlersMu       sync.RWMutex
	locationHandlers []func(string)
	loadedHandlers   []func()
}

// NewRodSurface creates an unstarted rod-backed surface.
func NewRodSurface() *RodSurface {
	return &RodSurface{}
}

// Start launches the browser and begins dispatching surface events.
func (s *RodSurface) Start(ctx context.Context) error {
	logger.Debug(ctx, "Initializing rendering surface")

	// Create a temporary directory for incognito-like session.
	// This avoids session persistence and provides a clean slate each time.
	tempDir, err := os.MkdirTemp("", "meridian-desk-surface-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary user data directory: %w", err)
	}

	logger.Debugf(ctx, "Using temporary profile directory: %s", tempDir)

	s.tempDir = tempDir

	// Try to find an existing Chrome installation first.
	chromePath, exists := launcher.LookPath()

	var launcherURL string

	if exists {
		logger.Debugf(ctx, "Using system Chrome installation at: %s", chromePath)
		launcherURL = launcher.New().
			// The user needs to see the surface to complete the interactive stages.
			Headless(false).
			UserDataDir(tempDir).
			Bin(chromePath).
			MustLaunch()
	} else {
		logger.Debug(ctx, "System Chrome not found, downloading Chromium")

		launcherURL = launcher.New().
			Headless(false).
			UserDataDir(tempDir).
			MustLaunch()
	}

	logger.Debugf(ctx, "Browser launched at: %s", launcherURL)

	browserInstance := rod.New().ControlURL(launcherURL)

	// Enable trace and slow motion only in debug mode.
	if logger.IsDebugLevel() {
		logger.Debug(ctx, "Debug mode enabled - enabling browser trace and slow motion")

		browserInstance = browserInstance.
			Trace(true).
			SlowMotion(browserSlowMotionDelay)
	}

	s.browser = browserInstance.MustConnect()

	// Create a stealth-enabled page so the identity provider sees an
	// ordinary interactive browser.
	s.page = stealth.MustPage(s.browser)

	go s.pumpEvents(ctx)

	logger.Debug(ctx, "Rendering surface initialized")

	return nil
}

// pumpEvents forwards CDP navigation and load events to registered handlers.
func (s *RodSurface) pumpEvents(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			// The pump dies with the browser; nothing to clean up here.
			logger.Debugf(ctx, "Surface event pump stopped: %v", r)
		}
	}()

	s.page.EachEvent(
		func(e *proto.PageFrameNavigated) {
			// Only top-level frame navigations count as location changes.
			if e.Frame.ParentID != "" {
				return
			}

			s.handlersMu.RLock()
			handlers := make([]func(string), len(s.locationHandlers))
			copy(handlers, s.locationHandlers)
			s.handlersMu.RUnlock()

			for _, handler := range handlers {
				handler(e.Frame.URL)
			}
		},
		func(_ *proto.PageLoadEventFired) {
			s.handlersMu.RLock()
			handlers := make([]func(), len(s.loadedHandlers))
			copy(handlers, s.loadedHandlers)
			s.handlersMu.RUnlock()

			for _, handler := range handlers {
				handler()
			}
		},
	)()
}

// Navigate implements Surface.
func (s *RodSurface) Navigate(ctx context.Context, url string) (err error) {
	if s.page == nil {
		return ErrSurfaceNotStarted
	}

	defer s.recoverSurfaceGone(ctx, &err)

	logger.Debugf(ctx, "Navigating surface to %s", url)

	return s.page.Context(ctx).Navigate(url)
}

// CurrentLocation implements Surface.
func (s *RodSurface) CurrentLocation(ctx context.Context) (location string, err error) {
	if s.page == nil {
		return "", ErrSurfaceNotStarted
	}

	defer s.recoverSurfaceGone(ctx, &err)

	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}

	return info.URL, nil
}

// RunProbe implements Surface.
func (s *RodSurface) RunProbe(ctx context.Context, script string) (result string, err error) {
	if s.page == nil {
		return "", ErrSurfaceNotStarted
	}

	defer s.recoverSurfaceGone(ctx, &err)

	eval, err := s.page.Context(ctx).Eval(script)
	if err != nil {
		return "", err
	}

	return eval.Value.Str(), nil
}

// DumpLocalStorage implements Surface.
func (s *RodSurface) DumpLocalStorage(ctx context.Context) ([]StorageEntry, error) {
	raw, err := s.RunProbe(ctx, localStorageDumpScript)
	if err != nil {
		return nil, err
	}

	return parseStorageDump(raw)
}

// OnLocationChanged implements Surface.
func (s *RodSurface) OnLocationChanged(handler func(location string)) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()

	s.locationHandlers = append(s.locationHandlers, handler)
}

// OnPageLoaded implements Surface.
func (s *RodSurface) OnPageLoaded(handler func()) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()

	s.loadedHandlers = append(s.loadedHandlers, handler)
}

// Close shuts down the browser and cleans up the temporary profile.
func (s *RodSurface) Close(ctx context.Context) {
	if s.browser != nil {
		// Close browser and wait for it to fully terminate.
		if err := s.browser.Close(); err != nil {
			logger.Debugf(ctx, "Browser close error (expected): %v", err)
		}
	}

	// Clean up temporary profile directory.
	if s.tempDir != "" {
		// Give Chrome a moment to release file locks.
		time.Sleep(browserCleanupDelay)

		if err := os.RemoveAll(s.tempDir); err != nil {
			// This can fail on Windows or if Chrome hasn't fully exited.
			// Not a critical error, so just debug log it.
			logger.Debugf(ctx, "Could not clean up temp directory %s: %v", s.tempDir, err)
		}
	}
}

// recoverSurfaceGone converts CDP panics from a dead browser into ErrSurfaceGone.
func (s *RodSurface) recoverSurfaceGone(ctx context.Context, err *error) {
	if r := recover(); r != nil {
		logger.Debugf(ctx, "Surface panic recovered: %v", r)

		*err = fmt.Errorf("%w: %v", ErrSurfaceGone, r)
	}
}
