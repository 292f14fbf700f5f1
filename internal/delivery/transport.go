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

package delivery

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/lukasdietrich/briefsend/internal/log"
	"github.com/lukasdietrich/briefsend/internal/models"
)

// Transport hands messages to the relay.
type Transport interface {
	// Verify checks that the relay is reachable and speaks smtp.
	Verify(context.Context) error
	// Send transmits a single message. A nil error means the relay accepted the message.
	Send(context.Context, models.OutboundMessage) error
}

// TransportFactory creates a Transport for a relay.
type TransportFactory func(models.TransportConfig) Transport

// NewTransportFactory returns a factory of smtp transports.
func NewTransportFactory(composer *Composer, opts TransportOptions) TransportFactory {
	return func(config models.TransportConfig) Transport {
		return &SMTPTransport{
			config:   config,
			composer: composer,
			hostname: opts.Hostname,
			timeout:  opts.Timeout,
		}
	}
}

// TransportError is a failed smtp session. Permanent and transient errors are told apart by the
// reply code.
type TransportError struct {
	Stage string
	Err   error
}

func (e *TransportError) Error() string {
	switch {
	case isPermanentErr(e.Err):
		return fmt.Sprintf("%s: %v (permanent)", e.Stage, e.Err)
	case isTransientErr(e.Err):
		return fmt.Sprintf("%s: %v (transient)", e.Stage, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Permanent reports whether the relay rejected with a 5xx code.
func (e *TransportError) Permanent() bool {
	return isPermanentErr(e.Err)
}

// SMTPTransport is a Transport opening a fresh smtp session per message. Port 465 uses implicit
// tls, every other port starts in plaintext and upgrades using STARTTLS.
type SMTPTransport struct {
	config   models.TransportConfig
	composer *Composer
	hostname string
	timeout  time.Duration
}

// Verify connects, says hello and quits.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	client, err := t.dial(ctx)
	if err != nil {
		return err
	}

	defer client.Close()

	return wrapStage("quit", client.Quit())
}

// Send transmits the message in a new session.
func (t *SMTPTransport) Send(ctx context.Context, msg models.OutboundMessage) error {
	var content bytes.Buffer

	if err := t.composer.Compose(&content, t.config.Account, msg, time.Now()); err != nil {
		return &TransportError{Stage: "compose", Err: err}
	}

	client, err := t.dial(ctx)
	if err != nil {
		return err
	}

	defer client.Close()

	auth := smtp.PlainAuth("", t.config.Account, t.config.Credential, t.config.Host)
	if err := client.Auth(auth); err != nil {
		return wrapStage("auth", err)
	}

	if err := client.Mail(t.config.Account); err != nil {
		return wrapStage("mail", err)
	}

	if err := client.Rcpt(msg.RecipientEmail); err != nil {
		return wrapStage("rcpt", err)
	}

	if err := copyData(client, content.Bytes()); err != nil {
		return wrapStage("data", err)
	}

	if err := client.Quit(); err != nil {
		log.DebugContext(ctx).
			Err(err).
			Msg("quit after accepted message failed")
	}

	return nil
}

// dial opens the connection and says hello. The session deadline is the earlier of the context
// deadline and the configured timeout.
func (t *SMTPTransport) dial(ctx context.Context) (*smtp.Client, error) {
	deadline := time.Now().Add(t.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	var (
		address = t.config.Address()
		dialer  = net.Dialer{Deadline: deadline}
		conn    net.Conn
		err     error
	)

	log.DebugContext(ctx).
		Str("address", address).
		Bool("implicitTLS", t.config.ImplicitTLS()).
		Msg("connecting to relay")

	if t.config.ImplicitTLS() {
		tlsDialer := tls.Dialer{
			NetDialer: &dialer,
			Config:    &tls.Config{ServerName: t.config.Host},
		}

		conn, err = tlsDialer.DialContext(ctx, "tcp", address)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", address)
	}

	if err != nil {
		return nil, wrapStage("connect", err)
	}

	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, wrapStage("connect", err)
	}

	client, err := smtp.NewClient(conn, t.config.Host)
	if err != nil {
		conn.Close()
		return nil, wrapStage("greeting", err)
	}

	if err := t.initClient(client); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// initClient says hello to the server and upgrades to tls, if available.
func (t *SMTPTransport) initClient(client *smtp.Client) error {
	if err := client.Hello(t.hostname); err != nil {
		return wrapStage("hello", err)
	}

	if t.config.ImplicitTLS() {
		return nil
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		config := tls.Config{
			ServerName: t.config.Host,
		}

		return wrapStage("starttls", client.StartTLS(&config))
	}

	return nil
}

// copyData writes the mail content.
func copyData(client *smtp.Client, content []byte) error {
	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err := w.Write(content); err != nil {
		w.Close()
		return err
	}

	return w.Close()
}

func wrapStage(stage string, err error) error {
	if err == nil {
		return nil
	}

	return &TransportError{Stage: stage, Err: err}
}

// isPermanentErr tests if an error is an smtp error and if it has a 5xx code.
func isPermanentErr(err error) bool {
	var protoError *textproto.Error
	if errors.As(err, &protoError) {
		return protoError.Code >= 500 && protoError.Code < 600
	}

	return false
}

// isTransientErr tests if an error is an smtp error and if it has a 4xx code.
func isTransientErr(err error) bool {
	var protoError *textproto.Error
	if errors.As(err, &protoError) {
		return protoError.Code >= 400 && protoError.Code < 500
	}

	return false
}
