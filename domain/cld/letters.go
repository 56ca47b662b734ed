// Package cld derives a compact letter display from the "not significantly
// different" graph and selects the best and near-best systems.
package cld

// NumToLetters maps a clique index to its letter code in bijective base 26:
// 0 → "a", 25 → "z", 26 → "aa", 27 → "ab", 701 → "zz", 702 → "aaa".
// Negative indices yield the empty string.
func NumToLetters(c int) string {
	if c < 0 {
		return ""
	}
	var buf [16]byte
	i := len(buf)
	for n := c + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('a' + (n-1)%26)
	}
	return string(buf[i:])
}

// LettersToNum is the inverse of NumToLetters. It returns -1 for strings
// that are empty or contain anything but lowercase ASCII letters.
func LettersToNum(s string) int {
	if s == "" {
		return -1
	}
	n := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch < 'a' || ch > 'z' {
			return -1
		}
		n = n*26 + int(ch-'a') + 1
	}
	return n - 1
}
