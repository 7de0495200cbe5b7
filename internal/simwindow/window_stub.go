//go:build !rp2040 && !rp2350 && !cgo

package simwindow

import "errors"

func Run(Options) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
