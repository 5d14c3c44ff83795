// Package simd provides the walker's outer-scan primitives: single- and
// multi-byte search (Memchr/Memchr2/Memchr3) and substring search
// (Memmem), used by the fast-start scan loop and by DOTSTAR/DOTPLUS
// next-literal hints.
//
// There is no hand-written assembly here (see DESIGN.md for why: the
// retrieval pack's AVX2 dispatch relies on .s files this module has no
// way to verify would link) — every search is the portable SWAR (SIMD
// Within A Register) technique, 8 bytes at a time via plain uint64 math.
// golang.org/x/sys/cpu is still consulted, to size how long a needle
// prefix Memmem's rare-byte selection examines: on CPUs with wider vector
// units a longer prefix is scanned for the rarest byte.
package simd

import "golang.org/x/sys/cpu"

var hasWideALU = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

// shortNeedleCutoff is how many leading needle bytes Memmem's rare-byte
// selection considers; longer needles use the same search, with the rare
// byte picked from that prefix.
func shortNeedleCutoff() int {
	if hasWideALU {
		return 64
	}
	return 32
}
