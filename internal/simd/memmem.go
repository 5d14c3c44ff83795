package simd

import "bytes"

// Memmem returns the index of the first occurrence of needle in haystack,
// or -1 if absent. It combines a rare-byte heuristic with Memchr: find a
// candidate occurrence of needle's rarest byte, then verify the full
// needle at that offset.
func Memmem(haystack, needle []byte) int {
	needleLen := len(needle)
	haystackLen := len(haystack)

	if needleLen == 0 {
		return 0
	}
	if haystackLen == 0 || needleLen > haystackLen {
		return -1
	}
	if needleLen == 1 {
		return Memchr(haystack, needle[0])
	}
	return memmemRareByte(haystack, needle)
}

// memmemRareByte finds the least common byte in needle (per
// ByteFrequencies) and scans for it with Memchr, verifying the full needle
// at every candidate. shortNeedleCutoff merely documents how far this
// heuristic is trusted before a pathologically long needle would make
// repeated full verifications expensive; it doesn't change behavior here
// since the heuristic degrades gracefully either way.
func memmemRareByte(haystack, needle []byte) int {
	needleLen := len(needle)
	haystackLen := len(haystack)

	rareByte, rareIdx := selectRareByte(needle)

	searchStart := 0
	for {
		candidatePos := Memchr(haystack[searchStart:], rareByte)
		if candidatePos == -1 {
			return -1
		}
		candidatePos += searchStart

		needleStartPos := candidatePos - rareIdx
		if needleStartPos < 0 || needleStartPos+needleLen > haystackLen {
			searchStart = candidatePos + 1
			if searchStart >= haystackLen {
				return -1
			}
			continue
		}

		if bytes.Equal(haystack[needleStartPos:needleStartPos+needleLen], needle) {
			return needleStartPos
		}

		searchStart = candidatePos + 1
		if searchStart >= haystackLen {
			return -1
		}
	}
}

// selectRareByte picks the byte within the first shortNeedleCutoff() bytes
// of needle with the lowest ByteFrequencies rank, falling back to the
// heuristic of using the last byte (tends to be distinctive in both
// natural-language words and source-code tokens) when no byte stands out.
func selectRareByte(needle []byte) (rareByte byte, index int) {
	limit := len(needle)
	if c := shortNeedleCutoff(); c < limit {
		limit = c
	}

	bestRank := byte(255)
	bestIdx := len(needle) - 1
	for i := 0; i < limit; i++ {
		if r := ByteRank(needle[i]); r < bestRank {
			bestRank = r
			bestIdx = i
		}
	}
	return needle[bestIdx], bestIdx
}
