package mcp

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestWriteReadMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	msg := map[string]any{"hello": "world"}
	if err := writeMessage(&buf, msg); err != nil {
		t.Fatal(err)
	}
	body, err := readMessage(bufio.NewReader(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `"hello":"world"`) {
		t.Errorf("body = %s", body)
	}
}

func TestReadMessageMissingContentLength(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("X-Other: 1\r\n\r\n{}"))
	if _, err := readMessage(r); err == nil {
		t.Fatal("expected error for missing Content-Length")
	}
}

func TestReadMessageRejectsOversized(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("Content-Length: 999999999999\r\n\r\n"))
	if _, err := readMessage(r); err == nil {
		t.Fatal("expected error for oversized message")
	}
}
