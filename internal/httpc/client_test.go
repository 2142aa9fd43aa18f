package httpc

import (
	"testing"
	"time"
)

func TestNewClientClampsConnectTimeout(t *testing.T) {
	c := NewClient(2 * time.Second)
	if c.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v", c.Timeout)
	}
	tr := NewTransport(2 * time.Second)
	if tr.TLSHandshakeTimeout != 2*time.Second {
		t.Errorf("TLSHandshakeTimeout = %v, want clamped to 2s", tr.TLSHandshakeTimeout)
	}

	tr = NewTransport(time.Minute)
	if tr.TLSHandshakeTimeout != DefaultConnectTimeout {
		t.Errorf("TLSHandshakeTimeout = %v, want %v", tr.TLSHandshakeTimeout, DefaultConnectTimeout)
	}
}

func TestSharedClient(t *testing.T) {
	if Client.Timeout != DefaultTimeout {
		t.Errorf("Client.Timeout = %v, want %v", Client.Timeout, DefaultTimeout)
	}
	if Client.Transport == nil {
		t.Error("shared client has no transport")
	}
}
