// Package debug holds env-gated switches for extra diagnostics.
package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Convert bool
	Unhash  bool
	Timing  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Convert = boolEnv("PROPBIN_DEBUG_CONVERT")
	d.Unhash = boolEnv("PROPBIN_DEBUG_UNHASH")
	d.Timing = boolEnv("PROPBIN_DEBUG_TIMING")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Convert() bool {
	return d.Convert
}
func Unhash() bool {
	return d.Unhash
}
func Timing() bool {
	return d.Timing
}
