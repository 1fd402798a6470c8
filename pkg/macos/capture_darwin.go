//go:build darwin && cgo

package macos

/*
#cgo LDFLAGS: -framework CoreGraphics

#include <CoreGraphics/CoreGraphics.h>
#include <stdlib.h>

// slipbarCaptureRect renders the on-screen content inside rect (CoreGraphics
// coordinates) into a caller-owned RGBA buffer. Drawing through our own
// bitmap context pins the pixel format regardless of the display's depth.
// Returns 0 on failure, which includes a missing screen recording permission.
static int slipbarCaptureRect(CGRect rect, unsigned char** outBuf, int* outW, int* outH) {
	CGImageRef image = CGWindowListCreateImage(
		rect,
		kCGWindowListOptionOnScreenBelowWindow,
		kCGNullWindowID,
		kCGWindowImageDefault);
	if (image == NULL) {
		return 0;
	}

	size_t w = CGImageGetWidth(image);
	size_t h = CGImageGetHeight(image);
	if (w == 0 || h == 0) {
		CGImageRelease(image);
		return 0;
	}

	unsigned char* buf = (unsigned char*)calloc(w * h * 4, 1);
	CGColorSpaceRef space = CGColorSpaceCreateDeviceRGB();
	CGContextRef ctx = CGBitmapContextCreate(
		buf, w, h, 8, w * 4, space,
		kCGImageAlphaPremultipliedLast | kCGBitmapByteOrder32Big);
	CGColorSpaceRelease(space);
	if (ctx == NULL) {
		free(buf);
		CGImageRelease(image);
		return 0;
	}

	CGContextDrawImage(ctx, CGRectMake(0, 0, w, h), image);
	CGContextRelease(ctx);
	CGImageRelease(image);

	*outBuf = buf;
	*outW = (int)w;
	*outH = (int)h;
	return 1;
}
*/
import "C"
import (
	"fmt"
	"image"
	"unsafe"

	"github.com/slipbar/slipbar/internal/geometry"
)

// CaptureRect screenshots the given AppKit-coordinate region of the main
// display. The result is premultiplied RGBA, ready for capture.AverageColor.
func CaptureRect(r geometry.Rect, mainHeight float64) (*image.RGBA, error) {
	// Flip back to CG coordinates for the capture call.
	cgRect := C.CGRectMake(
		C.double(r.Origin.X),
		C.double(mainHeight-r.MaxY()),
		C.double(r.Size.Width),
		C.double(r.Size.Height),
	)

	var buf *C.uchar
	var w, h C.int
	if C.slipbarCaptureRect(cgRect, &buf, &w, &h) == 0 {
		return nil, fmt.Errorf("screen capture failed (screen recording permission required)")
	}
	defer C.free(unsafe.Pointer(buf))

	n := int(w) * int(h) * 4
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	copy(img.Pix, unsafe.Slice((*byte)(unsafe.Pointer(buf)), n))
	return img, nil
}
