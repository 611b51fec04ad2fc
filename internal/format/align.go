package format

// Alignment utilities for the structure block. Every token starts on a
// 4-byte boundary; node names and property payloads are padded up to the
// next boundary with zero bytes.

// Align4 returns n aligned up to the next 4-byte token boundary.
//
// Example:
//
//	Align4(1) = 4
//	Align4(4) = 4
//	Align4(5) = 8
func Align4(n int) int {
	return (n + TokenAlignment - 1) &^ (TokenAlignment - 1)
}

// Aligned4 reports whether n sits on a token boundary.
func Aligned4(n int) bool {
	return n&(TokenAlignment-1) == 0
}
