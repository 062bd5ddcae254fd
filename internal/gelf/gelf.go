// Package gelf ships log lines to a Graylog endpoint over UDP. The writer
// plugs into the standard logger through io.MultiWriter, so every log call
// keeps its stderr copy.
package gelf

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"time"
)

const service = "workshop-files"

// Syslog severity levels used in GELF payloads.
const (
	levelError   = 3
	levelWarning = 4
	levelInfo    = 6
)

type message struct {
	Version      string  `json:"version"`
	Host         string  `json:"host"`
	ShortMessage string  `json:"short_message"`
	Timestamp    float64 `json:"timestamp"`
	Level        int     `json:"level"`
	Service      string  `json:"_service"`
}

// Writer implements io.Writer; one Write call becomes one GELF datagram.
type Writer struct {
	conn net.Conn
	host string
}

// New dials the collector. addr is host:port, e.g. "graylog:12201".
func New(addr string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}
	host, _ := os.Hostname()
	if host == "" {
		host = service
	}
	return &Writer{conn: conn, host: host}, nil
}

func (w *Writer) Close() error { return w.conn.Close() }

// Write never returns an error: log delivery is fire-and-forget and must not
// break the application's logging path.
func (w *Writer) Write(p []byte) (int, error) {
	msg := message{
		Version:      "1.1",
		Host:         w.host,
		ShortMessage: stripLogPrefix(strings.TrimRight(string(p), "\n")),
		Timestamp:    float64(time.Now().UnixNano()) / 1e9,
		Level:        levelInfo,
		Service:      service,
	}
	switch {
	case strings.Contains(msg.ShortMessage, "PANIC:"), strings.Contains(msg.ShortMessage, "Fatal"):
		msg.Level = levelError
	case strings.HasPrefix(msg.ShortMessage, "Warning:"):
		msg.Level = levelWarning
	}

	if payload, err := json.Marshal(msg); err == nil {
		w.conn.Write(payload)
	}
	return len(p), nil
}

// stripLogPrefix drops the standard logger's "2006/01/02 15:04:05 " prefix
// so the short message starts with the actual text.
func stripLogPrefix(line string) string {
	if len(line) > 20 && line[4] == '/' && line[7] == '/' && line[10] == ' ' && line[13] == ':' && line[16] == ':' {
		return line[20:]
	}
	return line
}
