//go:build !rp2040 && !rp2350

// Package fmtx is the small formatting surface used for error messages.
// Host builds delegate to fmt; MCU builds use a compact formatter.
package fmtx

import "fmt"

func Sprintf(format string, a ...any) string { return fmt.Sprintf(format, a...) }
func Errorf(format string, a ...any) error    { return fmt.Errorf(format, a...) }
