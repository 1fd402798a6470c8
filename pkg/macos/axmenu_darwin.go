//go:build darwin && cgo

package macos

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework AppKit

#include <ApplicationServices/ApplicationServices.h>
#include <AppKit/AppKit.h>

// slipbarAppMenuFrame reports the union frame of the frontmost application's
// menu bar children, in CoreGraphics (top-left) coordinates. Returns 0 on
// failure: no frontmost app, no AX permission, or no menu bar.
static int slipbarAppMenuFrame(CGRect* out) {
	NSRunningApplication* front = [[NSWorkspace sharedWorkspace] frontmostApplication];
	if (front == nil) {
		return 0;
	}
	AXUIElementRef app = AXUIElementCreateApplication([front processIdentifier]);
	if (app == NULL) {
		return 0;
	}

	CFTypeRef menuBar = NULL;
	if (AXUIElementCopyAttributeValue(app, kAXMenuBarAttribute, &menuBar) != kAXErrorSuccess) {
		CFRelease(app);
		return 0;
	}

	CFArrayRef children = NULL;
	if (AXUIElementCopyAttributeValue((AXUIElementRef)menuBar, kAXChildrenAttribute,
	                                  (CFTypeRef*)&children) != kAXErrorSuccess) {
		CFRelease(menuBar);
		CFRelease(app);
		return 0;
	}

	CGRect frame = CGRectNull;
	CFIndex n = CFArrayGetCount(children);
	for (CFIndex i = 0; i < n; i++) {
		AXUIElementRef item = (AXUIElementRef)CFArrayGetValueAtIndex(children, i);

		CFTypeRef posRef = NULL, sizeRef = NULL;
		if (AXUIElementCopyAttributeValue(item, kAXPositionAttribute, &posRef) != kAXErrorSuccess) {
			continue;
		}
		if (AXUIElementCopyAttributeValue(item, kAXSizeAttribute, &sizeRef) != kAXErrorSuccess) {
			CFRelease(posRef);
			continue;
		}
		CGPoint pos;
		CGSize size;
		AXValueGetValue((AXValueRef)posRef, kAXValueTypeCGPoint, &pos);
		AXValueGetValue((AXValueRef)sizeRef, kAXValueTypeCGSize, &size);
		CFRelease(posRef);
		CFRelease(sizeRef);

		frame = CGRectUnion(frame, CGRectMake(pos.x, pos.y, size.width, size.height));
	}

	CFRelease(children);
	CFRelease(menuBar);
	CFRelease(app);

	if (CGRectIsNull(frame)) {
		return 0;
	}
	*out = frame;
	return 1;
}
*/
import "C"
import "github.com/slipbar/slipbar/internal/geometry"

// applicationMenuFrame returns the frontmost app's menu region in AppKit
// coordinates. ok=false covers every failure mode, including a missing
// Accessibility permission; callers treat it as "unknown", not an error.
func applicationMenuFrame(mainHeight float64) (geometry.Rect, bool) {
	var frame C.CGRect
	if C.slipbarAppMenuFrame(&frame) == 0 {
		return geometry.Rect{}, false
	}
	return flipFromCG(
		float64(frame.origin.x), float64(frame.origin.y),
		float64(frame.size.width), float64(frame.size.height),
		mainHeight,
	), true
}
