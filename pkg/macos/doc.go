// Package macos is slipbar's only platform-specific layer: AppKit status
// items, NSEvent monitors, the CGEventTap, CoreGraphics window queries and
// the Accessibility menu probe. Everything above it speaks the package
// geometry vocabulary; everything below is darwinkit or cgo.
//
// Coordinate convention: all frames and points leaving this package are
// AppKit global coordinates (origin bottom-left, Y up). CoreGraphics results
// are flipped here, at the boundary.
//
// Non-darwin builds get inert stubs so the full module still compiles and
// the pure packages stay testable anywhere.
package macos
