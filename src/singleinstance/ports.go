package singleinstance

import (
	"os"
	"strconv"
	"strings"
)

const (
	portStartEnv = "CLIPPER_PORT_START"
	portEndEnv   = "CLIPPER_PORT_END"

	defaultPortStart = 49631
	defaultPortEnd   = 49660

	minPort = 1024
	maxPort = 65535
)

// getPortRange reads the inclusive port range from the environment. Unset or
// malformed values use the defaults; bounds are clamped to unprivileged ports
// and swapped when reversed.
func getPortRange() (int, int) {
	start := envPort(portStartEnv, defaultPortStart)
	end := envPort(portEndEnv, defaultPortEnd)
	start = min(max(start, minPort), maxPort)
	end = min(max(end, minPort), maxPort)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func envPort(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return n
}

// PortRange exposes the effective port range for logging.
func PortRange() (int, int) { return getPortRange() }
