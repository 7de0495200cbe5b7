//go:build rp2040

package platform

const maxGPIO = 29
