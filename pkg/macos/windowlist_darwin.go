//go:build darwin && cgo

package macos

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework Foundation

#include <CoreGraphics/CoreGraphics.h>
#include <Foundation/Foundation.h>

typedef struct {
	uint32_t windowID;
	int32_t  ownerPID;
	int32_t  layer;
	int32_t  onScreen;
	char     ownerName[256];
	char     title[256];
	CGRect   bounds;
} slipbarWindowInfo;

// slipbarCopyWindowList snapshots the on-screen window list, front to back.
// The title field stays empty when the caller lacks screen recording
// permission; slipbar treats that as "untitled".
static slipbarWindowInfo* slipbarCopyWindowList(int* count) {
	CFArrayRef list = CGWindowListCopyWindowInfo(
		kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements,
		kCGNullWindowID);
	if (list == NULL) {
		*count = 0;
		return NULL;
	}

	CFIndex n = CFArrayGetCount(list);
	slipbarWindowInfo* out = (slipbarWindowInfo*)calloc(n, sizeof(slipbarWindowInfo));
	int valid = 0;

	for (CFIndex i = 0; i < n; i++) {
		CFDictionaryRef win = (CFDictionaryRef)CFArrayGetValueAtIndex(list, i);
		slipbarWindowInfo* w = &out[valid];

		CFNumberRef num = (CFNumberRef)CFDictionaryGetValue(win, kCGWindowNumber);
		if (num) CFNumberGetValue(num, kCFNumberSInt32Type, &w->windowID);

		num = (CFNumberRef)CFDictionaryGetValue(win, kCGWindowOwnerPID);
		if (num) CFNumberGetValue(num, kCFNumberSInt32Type, &w->ownerPID);

		num = (CFNumberRef)CFDictionaryGetValue(win, kCGWindowLayer);
		if (num) CFNumberGetValue(num, kCFNumberSInt32Type, &w->layer);

		CFBooleanRef b = (CFBooleanRef)CFDictionaryGetValue(win, kCGWindowIsOnscreen);
		w->onScreen = (b && CFBooleanGetValue(b)) ? 1 : 0;

		CFStringRef s = (CFStringRef)CFDictionaryGetValue(win, kCGWindowOwnerName);
		if (s) CFStringGetCString(s, w->ownerName, sizeof(w->ownerName), kCFStringEncodingUTF8);

		s = (CFStringRef)CFDictionaryGetValue(win, kCGWindowName);
		if (s) CFStringGetCString(s, w->title, sizeof(w->title), kCFStringEncodingUTF8);

		CFDictionaryRef boundsRef = (CFDictionaryRef)CFDictionaryGetValue(win, kCGWindowBounds);
		CGRect bounds = CGRectZero;
		if (boundsRef) CGRectMakeWithDictionaryRepresentation(boundsRef, &bounds);
		w->bounds = bounds;

		valid++;
	}

	CFRelease(list);
	*count = valid;
	return out;
}

// kCGStatusWindowLevel, where menu bar item windows live.
static const int slipbarStatusWindowLayer = 25;
*/
import "C"
import (
	"unsafe"

	"github.com/slipbar/slipbar/internal/geometry"
)

// copyWindowList snapshots the window list in AppKit coordinates.
// mainHeight is the full height of the main display, used for the Y flip.
func copyWindowList(mainHeight float64) []geometry.Window {
	var count C.int
	raw := C.slipbarCopyWindowList(&count)
	if raw == nil {
		return nil
	}
	defer C.free(unsafe.Pointer(raw))

	items := unsafe.Slice(raw, int(count))
	windows := make([]geometry.Window, 0, len(items))
	for i := range items {
		w := &items[i]
		windows = append(windows, geometry.Window{
			WindowID:  uint32(w.windowID),
			OwnerPID:  int32(w.ownerPID),
			OwnerName: C.GoString(&w.ownerName[0]),
			Title:     C.GoString(&w.title[0]),
			Layer:     int(w.layer),
			OnScreen:  w.onScreen != 0,
			Frame: flipFromCG(
				float64(w.bounds.origin.x), float64(w.bounds.origin.y),
				float64(w.bounds.size.width), float64(w.bounds.size.height),
				mainHeight,
			),
		})
	}
	return windows
}

// copyMenuBarItemFrames filters the window list down to status-level windows,
// which is exactly the set of menu bar items.
func copyMenuBarItemFrames(mainHeight float64) []geometry.Rect {
	var frames []geometry.Rect
	for _, w := range copyWindowList(mainHeight) {
		if w.Layer == int(C.slipbarStatusWindowLayer) && w.OnScreen {
			frames = append(frames, w.Frame)
		}
	}
	return frames
}
