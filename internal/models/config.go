// Copyright (C) 2024  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package models

import (
	"net"
	"strconv"
)

// ImplicitTLSPortSMTP is the submission port using implicit tls. Every other port starts in
// plaintext and upgrades using STARTTLS.
const ImplicitTLSPortSMTP = 465

// ImplicitTLSPortIMAP is the imap port using implicit tls.
const ImplicitTLSPortIMAP = 993

// TransportConfig holds the credentials of the smtp relay.
type TransportConfig struct {
	Host       string
	Port       int
	Account    string
	Credential string
}

// Validate returns a *ConfigurationError naming every missing field.
func (c TransportConfig) Validate() error {
	return validateEndpoint("transport", c.Host, c.Port, c.Account, c.Credential)
}

// Address returns the host:port pair to dial.
func (c TransportConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ImplicitTLS reports whether the connection is encrypted from the start.
func (c TransportConfig) ImplicitTLS() bool {
	return c.Port == ImplicitTLSPortSMTP
}

// MailboxConfig holds the credentials of the imap mailbox receiving bounce notifications.
type MailboxConfig struct {
	Host       string
	Port       int
	Account    string
	Credential string
	Folder     string
}

// Validate returns a *ConfigurationError naming every missing field.
func (c MailboxConfig) Validate() error {
	return validateEndpoint("mailbox", c.Host, c.Port, c.Account, c.Credential)
}

// Address returns the host:port pair to dial.
func (c MailboxConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ImplicitTLS reports whether the connection is encrypted from the start.
func (c MailboxConfig) ImplicitTLS() bool {
	return c.Port == ImplicitTLSPortIMAP
}

func validateEndpoint(component, host string, port int, account, credential string) error {
	var missing []string

	if host == "" {
		missing = append(missing, "host")
	}

	if port <= 0 || port > 65535 {
		missing = append(missing, "port")
	}

	if account == "" {
		missing = append(missing, "account")
	}

	if credential == "" {
		missing = append(missing, "credential")
	}

	if len(missing) > 0 {
		return &ConfigurationError{Component: component, Fields: missing}
	}

	return nil
}
