package singleinstance

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"time"
)

// probeTimeout bounds a single PING when ctx has no deadline.
const probeTimeout = 300 * time.Millisecond

// DetectResidentPort reports the first port in range whose listener answers
// PING with PONG.
func DetectResidentPort(ctx context.Context) (int, bool) {
	addr, ok := findResident(ctx, probeTimeout)
	if !ok {
		return 0, false
	}
	_, portStr, _ := net.SplitHostPort(addr)
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, false
	}
	return port, true
}

// findResident scans the port range and stops early when ctx is done.
func findResident(ctx context.Context, fallback time.Duration) (string, bool) {
	timeout := timeoutFrom(ctx, fallback)
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		if ctx.Err() != nil {
			return "", false
		}
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if ping(addr, timeout) {
			return addr, true
		}
	}
	return "", false
}

func timeoutFrom(ctx context.Context, fallback time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < fallback {
			return d
		}
	}
	return fallback
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
