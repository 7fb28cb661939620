// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns transport failures against the PXF service into
// messages a person at the terminal can act on.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"pxfbridge/cli/internal/bridge/httpclient"
)

// Class is the broad cause of a failed exchange.
type Class int

const (
	Unknown Class = iota
	Timeout
	DNS
	Refused
	RemoteServer
	RemoteRequest
)

func (c Class) String() string {
	switch c {
	case Timeout:
		return "timeout"
	case DNS:
		return "dns"
	case Refused:
		return "refused"
	case RemoteServer:
		return "remote-server"
	case RemoteRequest:
		return "remote-request"
	default:
		return "unknown"
	}
}

// Classify inspects err's chain and reports what went wrong.
func Classify(err error) Class {
	if err == nil {
		return Unknown
	}
	var re *httpclient.RemoteError
	if errors.As(err, &re) {
		if re.StatusCode >= 500 {
			return RemoteServer
		}
		return RemoteRequest
	}
	switch {
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return Refused
	}
	return Unknown
}

// FormatNetworkError prints a troubleshooting message for err and returns it
// wrapped. target is the "host:port" of the service.
func FormatNetworkError(err error, target string) error {
	if err == nil {
		return nil
	}

	switch Classify(err) {
	case Timeout:
		showTimeoutError(target)
	case DNS:
		showDNSError(target)
	case Refused:
		showConnectionRefusedError(target)
	case RemoteServer:
		showRemoteError(target, err, "The PXF service failed while handling the request.")
	case RemoteRequest:
		showRemoteError(target, err, "The PXF service rejected the request.")
	default:
		showGenericError(target, err.Error())
	}

	return fmt.Errorf("network error: %w", err)
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "context deadline exceeded") ||
		strings.Contains(s, "Client.Timeout exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return strings.Contains(err.Error(), "no such host")
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func showTimeoutError(target string) {
	pterm.Println()
	pterm.Println("❌ Timed out talking to the PXF service at " + target)
	pterm.Println()
	pterm.Println("   The service did not answer in time. It may be overloaded,")
	pterm.Println("   or a firewall is dropping the connection.")
	pterm.Println()
}

func showDNSError(target string) {
	pterm.Println()
	pterm.Println("❌ Cannot resolve the PXF host in " + target)
	pterm.Println()
	pterm.Println("   Check --pxf-host, the PXF_HOST variable or the host in your config file.")
	pterm.Println()
}

func showConnectionRefusedError(target string) {
	pterm.Println()
	pterm.Println("❌ Connection refused by " + target)
	pterm.Println()
	pterm.Println("   Make sure the PXF service is running on this host and listening")
	pterm.Println("   on the configured port (PXF_PORT, default 5888).")
	pterm.Println()
}

func showRemoteError(target string, err error, summary string) {
	pterm.Println()
	pterm.Println("❌ " + summary)
	pterm.Println()
	pterm.Println("   Service: " + target)
	var re *httpclient.RemoteError
	if errors.As(err, &re) && re.Message != "" {
		pterm.Println("   Details: " + re.Message)
	}
	pterm.Println()
	pterm.Println("   The service log usually has the full stack for this request.")
	pterm.Println()
}

func showGenericError(target string, details string) {
	pterm.Println()
	pterm.Println("❌ Request to the PXF service at " + target + " failed")
	pterm.Println()
	if details != "" {
		pterm.Println("   Details: " + details)
		pterm.Println()
	}
}
