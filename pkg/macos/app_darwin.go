//go:build darwin

package macos

import (
	"github.com/progrium/darwinkit/dispatch"
	"github.com/progrium/darwinkit/macos/appkit"
)

// InitApp initializes the shared NSApplication as an accessory app (status
// items only, no Dock icon). Must be called on the main goroutine with the
// OS thread locked, before any other call into this package.
func InitApp() appkit.Application {
	app := appkit.Application_SharedApplication()
	app.SetActivationPolicy(appkit.ApplicationActivationPolicyAccessory)
	return app
}

// Run enters the AppKit event loop. It does not return until Terminate.
func Run(app appkit.Application) {
	app.Run()
}

// Terminate asks the event loop to exit. Safe from any goroutine.
func Terminate(app appkit.Application) {
	dispatch.MainQueue().DispatchAsync(func() {
		app.Terminate(nil)
	})
}

// MainDispatcher funnels work onto the main dispatch queue. It satisfies the
// coordinator's Dispatcher interface.
type MainDispatcher struct{}

// Dispatch schedules f on the main queue. Calls from the main thread are
// still enqueued rather than run inline, which keeps event ordering sane.
func (MainDispatcher) Dispatch(f func()) {
	dispatch.MainQueue().DispatchAsync(f)
}
