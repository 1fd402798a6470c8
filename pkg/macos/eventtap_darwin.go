//go:build darwin && cgo

package macos

/*
#cgo LDFLAGS: -framework CoreGraphics
#include <CoreGraphics/CoreGraphics.h>

extern CGEventRef slipbarTapCallback(CGEventTapProxy proxy, CGEventType type,
                                     CGEventRef event, void *userInfo);

// slipbarCreateMouseMovedTap creates a listen-only session tap for mouse
// moves. Listen-only taps cannot stall other apps' event delivery, which is
// why the high-frequency moved stream uses a tap instead of an NSEvent
// monitor.
static inline CFMachPortRef slipbarCreateMouseMovedTap() {
	CGEventMask mask = CGEventMaskBit(kCGEventMouseMoved);
	return CGEventTapCreate(
		kCGSessionEventTap,
		kCGHeadInsertEventTap,
		kCGEventTapOptionListenOnly,
		mask,
		slipbarTapCallback,
		NULL
	);
}
*/
import "C"
import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/slipbar/slipbar/internal/diaglog"
	"github.com/slipbar/slipbar/internal/events"
)

// tapState is the single live tap. CGEventTap callbacks carry no useful Go
// context through userInfo, so the process supports exactly one moved tap;
// slipbar only ever needs one.
var tapState struct {
	mu      sync.Mutex
	handler events.Handler
	tap     C.CFMachPortRef
	runLoop C.CFRunLoopRef
	done    chan struct{}
	diag    *diaglog.Logger
}

//export slipbarTapCallback
func slipbarTapCallback(proxy C.CGEventTapProxy, eventType C.CGEventType,
	event C.CGEventRef, userInfo unsafe.Pointer) C.CGEventRef {

	switch eventType {
	case C.kCGEventMouseMoved:
		tapState.mu.Lock()
		handler := tapState.handler
		tapState.mu.Unlock()
		if handler != nil {
			// Location is read fresh from the Desktop at decision time, so
			// the event itself only signals "the mouse moved".
			handler(events.Event{Kind: events.MouseMoved})
		}
	case C.kCGEventTapDisabledByTimeout, C.kCGEventTapDisabledByUserInput:
		// The OS disables a slow tap; a listen-only tap can still be hit by
		// user-input disabling under load. Re-enable and keep going.
		tapState.mu.Lock()
		tap := tapState.tap
		diag := tapState.diag
		tapState.mu.Unlock()
		if tap != 0 {
			C.CGEventTapEnable(tap, C.bool(true))
			diag.Log(diaglog.LogEntry{
				Component: diaglog.ComponentEventTap,
				Event:     diaglog.EventTapReenable,
				Reason:    fmt.Sprintf("disabled (%d)", int(eventType)),
			})
		}
		// The disable notification carries no event to pass along.
		return 0
	}
	return event
}

// mouseMovedTap is the events.Source wrapping the CGEventTap.
type mouseMovedTap struct {
	handler events.Handler
	diag    *diaglog.Logger
}

func (t *mouseMovedTap) Start() error {
	tapState.mu.Lock()
	if tapState.tap != 0 {
		tapState.mu.Unlock()
		return fmt.Errorf("mouse-moved tap already installed")
	}

	tap := C.slipbarCreateMouseMovedTap()
	if tap == 0 {
		tapState.mu.Unlock()
		return fmt.Errorf("CGEventTapCreate failed (input monitoring permission required)")
	}

	source := C.CFMachPortCreateRunLoopSource(C.kCFAllocatorDefault, tap, 0)
	if source == 0 {
		C.CFRelease(C.CFTypeRef(tap))
		tapState.mu.Unlock()
		return fmt.Errorf("CFMachPortCreateRunLoopSource failed")
	}

	tapState.handler = t.handler
	tapState.tap = tap
	tapState.diag = t.diag
	tapState.done = make(chan struct{})
	tapState.mu.Unlock()

	// The tap needs its own run loop; parking it on a locked OS thread keeps
	// it off the AppKit main loop entirely.
	started := make(chan struct{})
	done := tapState.done
	go func() {
		runtime.LockOSThread()
		rl := C.CFRunLoopGetCurrent()
		tapState.mu.Lock()
		tapState.runLoop = rl
		tapState.mu.Unlock()

		// CFRunLoopAddSource retains the source; drop our reference here.
		C.CFRunLoopAddSource(rl, source, C.kCFRunLoopCommonModes)
		C.CFRelease(C.CFTypeRef(source))
		close(started)
		C.CFRunLoopRun()
		close(done)
	}()
	<-started

	// A tap dropped without Stop must still release its registration and
	// stop the run loop thread.
	runtime.SetFinalizer(t, (*mouseMovedTap).Stop)
	t.diag.Log(diaglog.LogEntry{
		Component: diaglog.ComponentEventTap,
		Event:     diaglog.EventTapInstall,
	})
	return nil
}

func (t *mouseMovedTap) Stop() {
	runtime.SetFinalizer(t, nil)
	tapState.mu.Lock()
	rl := tapState.runLoop
	tap := tapState.tap
	done := tapState.done
	tapState.runLoop = 0
	tapState.tap = 0
	tapState.handler = nil
	tapState.diag = nil
	tapState.done = nil
	tapState.mu.Unlock()

	if rl != 0 {
		C.CFRunLoopStop(rl)
		if done != nil {
			<-done
		}
	}
	if tap != 0 {
		C.CGEventTapEnable(tap, C.bool(false))
		C.CFRelease(C.CFTypeRef(tap))
	}
}
