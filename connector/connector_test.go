package connector

import (
	"errors"
	"strings"
	"testing"
)

func TestNewRejectsUnknownProtocol(t *testing.T) {
	tests := []struct {
		name     string
		protocol string
	}{
		{name: "legacy xmlrpc identifier", protocol: "xmlrpc"},
		{name: "legacy netrpc identifier", protocol: "netrpc"},
		{name: "arbitrary identifier", protocol: "carrier-pigeon"},
		{name: "case mismatch", protocol: "HTTP-RPC"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New("localhost", "8069", tc.protocol)
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
			for _, id := range []string{ProtocolHTTPRPC, ProtocolSocketRPC} {
				if !strings.Contains(err.Error(), id) {
					t.Fatalf("error %q does not list supported protocol %q", err, id)
				}
			}
		})
	}
}

func TestNewRejectsNonIntegerPort(t *testing.T) {
	tests := []struct {
		name string
		port string
	}{
		{name: "empty", port: ""},
		{name: "trailing garbage", port: "80a"},
		{name: "decimal", port: "8069.5"},
		{name: "word", port: "default"},
	}

	for _, protocol := range []string{ProtocolHTTPRPC, ProtocolSocketRPC} {
		for _, tc := range tests {
			t.Run(protocol+"/"+tc.name, func(t *testing.T) {
				_, err := New("localhost", tc.port, protocol)
				if !errors.Is(err, ErrConfig) {
					t.Fatalf("expected ErrConfig for port %q, got %v", tc.port, err)
				}
			})
		}
	}
}

func TestNewDefaultsToHTTPRPC(t *testing.T) {
	cnt, err := New("localhost", "8069", "")
	if err != nil {
		t.Fatalf("construct connector: %v", err)
	}
	httpCnt, ok := cnt.(*httpConnector)
	if !ok {
		t.Fatalf("expected http variant, got %T", cnt)
	}
	if httpCnt.url != "http://localhost:8069/xmlrpc" {
		t.Fatalf("unexpected endpoint base: %q", httpCnt.url)
	}
}

func TestNewSelectsSocketVariant(t *testing.T) {
	cnt, err := New("localhost", "8070", ProtocolSocketRPC)
	if err != nil {
		t.Fatalf("construct connector: %v", err)
	}
	sockCnt, ok := cnt.(*socketConnector)
	if !ok {
		t.Fatalf("expected socket variant, got %T", cnt)
	}
	if sockCnt.addr != "localhost:8070" {
		t.Fatalf("unexpected dial address: %q", sockCnt.addr)
	}
}

func TestNewHonorsBasePathOption(t *testing.T) {
	cnt, err := New("srv.internal", "8069", ProtocolHTTPRPC, WithBasePath("xmlrpc/2"))
	if err != nil {
		t.Fatalf("construct connector: %v", err)
	}
	httpCnt := cnt.(*httpConnector)
	if httpCnt.url != "http://srv.internal:8069/xmlrpc/2" {
		t.Fatalf("unexpected endpoint base: %q", httpCnt.url)
	}
}
