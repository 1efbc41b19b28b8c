package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) Send(ctx context.Context, cmd Command) (bool, string, error) {
	addr, ok := findResident(ctx, probeTimeout)
	if !ok {
		return false, "", nil
	}
	reply, err := send(addr, cmd, timeoutFrom(ctx, 2*time.Second))
	return true, reply, err
}

func send(addr string, cmd Command, timeout time.Duration) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(string(cmd) + "\n"); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}

	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	body, _ := io.ReadAll(br)
	switch status {
	case "SUCCESS\n":
		return string(body), nil
	case "ERROR\n":
		return "", errors.New(string(body))
	}
	return "", errors.New("singleinstance: unexpected response " + strconv.Quote(status))
}
