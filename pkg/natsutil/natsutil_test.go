package natsutil

import (
	"testing"

	"github.com/nats-io/nats.go"
)

func TestHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	c := (*natsHeaderCarrier)(msg)

	if got := c.Get("traceparent"); got != "" {
		t.Errorf("Get on empty headers = %q", got)
	}
	if keys := c.Keys(); keys != nil {
		t.Errorf("Keys on empty headers = %v", keys)
	}

	c.Set("traceparent", "00-abc-def-01")
	if got := c.Get("traceparent"); got != "00-abc-def-01" {
		t.Errorf("Get = %q", got)
	}
	if msg.Header.Get("traceparent") != "00-abc-def-01" {
		t.Error("Set did not write through to the message header")
	}

	c.Set("tracestate", "vendor=1")
	if keys := c.Keys(); len(keys) != 2 {
		t.Errorf("Keys = %v, want 2 entries", keys)
	}
}

func TestHeaderCarrierOverwrite(t *testing.T) {
	msg := &nats.Msg{Header: nats.Header{}}
	c := (*natsHeaderCarrier)(msg)
	c.Set("k", "first")
	c.Set("k", "second")
	if got := c.Get("k"); got != "second" {
		t.Errorf("Get after overwrite = %q", got)
	}
}
