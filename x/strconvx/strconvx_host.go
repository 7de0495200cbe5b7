//go:build !rp2040 && !rp2350

// Package strconvx mirrors the strconv calls the firmware needs. Host
// builds delegate to strconv; MCU builds avoid its tables.
package strconvx

import "strconv"

func Itoa(i int) string                    { return strconv.Itoa(i) }
func Atoi(s string) (int, error)           { return strconv.Atoi(s) }
func FormatUint(u uint64, base int) string { return strconv.FormatUint(u, base) }

func ParseUint(s string, base, bitSize int) (uint64, error) {
	return strconv.ParseUint(s, base, bitSize)
}
