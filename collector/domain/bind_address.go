package domain

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// BindAddress is the host:port the control and telemetry API listens on.
//
// Valid address formats:
//   - "localhost:8081"
//   - "127.0.0.1:8081"
//   - ":8081" (binds to all interfaces)
//   - "[::1]:8081" (IPv6)
type BindAddress string

// DefaultBindAddress keeps the API local to the device.
const DefaultBindAddress BindAddress = "127.0.0.1:8081"

// NewBindAddress validates value as a listen address with a numeric port.
func NewBindAddress(value string) (BindAddress, error) {
	if value == "" {
		return "", errors.New("bind address must be non-empty")
	}

	_, port, err := net.SplitHostPort(value)
	if err != nil {
		return "", fmt.Errorf("invalid bind address format: %w", err)
	}

	portNumber, err := strconv.Atoi(port)
	if err != nil {
		return "", fmt.Errorf("port must be a number: %s", port)
	}
	if portNumber < 0 || portNumber > 65535 {
		return "", fmt.Errorf("port out of range: %d", portNumber)
	}

	return BindAddress(value), nil
}
