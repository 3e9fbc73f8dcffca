package util

import (
	"os"
	"strconv"
)

// DebugEnabled reports whether FDMS_DEBUG forces debug-level logging,
// overriding the configured log level.
func DebugEnabled() bool {
	return etb("FDMS_DEBUG")
}

func HttpTraceEnabled() bool {
	return etb("FDMS_HTTP_TRACE")
}

func etb(envName string) bool {
	v, ok := os.LookupEnv(envName)
	if !ok {
		return false
	}

	bv, err := strconv.ParseBool(v)

	return err == nil && bv
}
