// Package types defines the stable, implementation-independent types shared
// across fdtkit: the error kind taxonomy and its sentinel values.
//
// Higher-level packages (fdt, internal/format) return *types.Error values so
// callers can branch on Error.Kind, or use errors.Is against the sentinels,
// instead of matching message text.
package types
