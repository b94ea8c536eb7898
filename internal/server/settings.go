package server

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultHost is the loopback interface used when no override is given.
	DefaultHost = "127.0.0.1"
	// DefaultPort is the default TCP port for the preview server.
	DefaultPort = 8322
	// DefaultReadTimeout guards hung clients.
	DefaultReadTimeout = 15 * time.Second
	// DefaultIdleTimeout bounds keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second
	// DefaultDebounce coalesces bursts of file events into one rebuild.
	DefaultDebounce = 250 * time.Millisecond
)

// Settings captures runtime configuration for the preview server.
type Settings struct {
	Host        string
	Port        int
	ReadTimeout time.Duration
	IdleTimeout time.Duration
	Debounce    time.Duration
}

// DefaultSettings returns the preview server defaults with
// INKPRESS_HOST and INKPRESS_PORT environment overrides applied.
func DefaultSettings() Settings {
	s := Settings{
		Host:        DefaultHost,
		Port:        DefaultPort,
		ReadTimeout: DefaultReadTimeout,
		IdleTimeout: DefaultIdleTimeout,
		Debounce:    DefaultDebounce,
	}
	if host := strings.TrimSpace(os.Getenv("INKPRESS_HOST")); host != "" {
		s.Host = host
	}
	if port := strings.TrimSpace(os.Getenv("INKPRESS_PORT")); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil && isValidPort(parsed) {
			s.Port = parsed
		}
	}
	s.normalize()
	return s
}

func (s *Settings) normalize() {
	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		s.Host = DefaultHost
	}
	if !isValidPort(s.Port) {
		s.Port = DefaultPort
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.Debounce <= 0 {
		s.Debounce = DefaultDebounce
	}
}

// Address returns the TCP bind address in host:port form.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the HTTP base URL for the server.
func (s Settings) URL() string {
	return "http://" + s.Address()
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}
