package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Track bool
	Patch bool
	Flush bool
	Watch bool
	Diff  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Track = boolEnv("OBSERVABLE_DEBUG_TRACK")
	d.Patch = boolEnv("OBSERVABLE_DEBUG_PATCH")
	d.Flush = boolEnv("OBSERVABLE_DEBUG_FLUSH")
	d.Watch = boolEnv("OBSERVABLE_DEBUG_WATCH")
	d.Diff = boolEnv("OBSERVABLE_DEBUG_DIFF")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Track() bool {
	return d.Track
}
func Patch() bool {
	return d.Patch
}
func Flush() bool {
	return d.Flush
}
func Watch() bool {
	return d.Watch
}
func Diff() bool {
	return d.Diff
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
