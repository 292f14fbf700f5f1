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
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lukasdietrich/briefsend/internal/crypto"
	"github.com/lukasdietrich/briefsend/internal/models"
)

// fakeRelay is a minimal plaintext smtp server. Recipients containing "reject" are refused
// permanently, recipients containing "later" transiently.
type fakeRelay struct {
	listener net.Listener

	mu       sync.Mutex
	commands []string
	data     []string
}

func startFakeRelay(t *testing.T) *fakeRelay {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	relay := fakeRelay{listener: listener}
	t.Cleanup(func() { listener.Close() })

	go relay.serve()
	return &relay
}

func (r *fakeRelay) config() models.TransportConfig {
	addr := r.listener.Addr().(*net.TCPAddr)

	return models.TransportConfig{
		Host:       "127.0.0.1",
		Port:       addr.Port,
		Account:    "sales@example.com",
		Credential: "hunter2",
	}
}

func (r *fakeRelay) serve() {
	for {
		conn, err := r.listener.Accept()
		if err != nil {
			return
		}

		go r.handle(textproto.NewConn(conn))
	}
}

func (r *fakeRelay) record(command string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands = append(r.commands, command)
}

func (r *fakeRelay) handle(conn *textproto.Conn) {
	defer conn.Close()

	conn.PrintfLine("220 127.0.0.1 ESMTP fake")

	for {
		line, err := conn.ReadLine()
		if err != nil {
			return
		}

		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		r.record(verb)

		switch verb {
		case "EHLO":
			conn.PrintfLine("250-127.0.0.1")
			conn.PrintfLine("250 AUTH PLAIN")
		case "AUTH":
			conn.PrintfLine("235 2.7.0 accepted")
		case "MAIL":
			conn.PrintfLine("250 2.1.0 ok")
		case "RCPT":
			switch {
			case strings.Contains(line, "reject"):
				conn.PrintfLine("550 5.1.1 no such user")
			case strings.Contains(line, "later"):
				conn.PrintfLine("451 4.3.0 try again later")
			default:
				conn.PrintfLine("250 2.1.5 ok")
			}
		case "DATA":
			conn.PrintfLine("354 go ahead")

			lines, err := conn.ReadDotLines()
			if err != nil {
				return
			}

			r.mu.Lock()
			r.data = append(r.data, strings.Join(lines, "\n"))
			r.mu.Unlock()

			conn.PrintfLine("250 2.0.0 queued")
		case "QUIT":
			conn.PrintfLine("221 2.0.0 bye")
			return
		default:
			conn.PrintfLine("502 5.5.2 unknown command")
		}
	}
}

func newTestTransport(t *testing.T, config models.TransportConfig) Transport {
	idGen := new(crypto.MockIDGenerator)
	idGen.On("GenerateMessageID", mock.Anything).Return("<id@example.com>", nil)

	composer, err := NewComposer(nil, idGen, ComposeOptions{SenderName: "Sales"})
	require.NoError(t, err)

	factory := NewTransportFactory(composer, TransportOptions{Hostname: "client.test", Timeout: 5 * time.Second})
	return factory(config)
}

func TestSMTPTransportVerify(t *testing.T) {
	relay := startFakeRelay(t)
	transport := newTestTransport(t, relay.config())

	assert.NoError(t, transport.Verify(context.Background()))
}

func TestSMTPTransportVerifyUnreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	transport := newTestTransport(t, models.TransportConfig{
		Host:       "127.0.0.1",
		Port:       port,
		Account:    "sales@example.com",
		Credential: "hunter2",
	})

	err = transport.Verify(context.Background())

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "connect", transportErr.Stage)
}

func TestSMTPTransportSend(t *testing.T) {
	relay := startFakeRelay(t)
	transport := newTestTransport(t, relay.config())

	require.NoError(t, transport.Send(context.Background(), testMessage))

	relay.mu.Lock()
	defer relay.mu.Unlock()

	assert.Equal(t, []string{"EHLO", "AUTH", "MAIL", "RCPT", "DATA", "QUIT"}, relay.commands)
	require.Len(t, relay.data, 1)
	assert.Contains(t, relay.data[0], "Subject: Hi Team, Happy Monday!")
	assert.Contains(t, relay.data[0], "Message-Id: <id@example.com>")
}

func TestSMTPTransportSendRejected(t *testing.T) {
	relay := startFakeRelay(t)
	transport := newTestTransport(t, relay.config())

	message := testMessage
	message.RecipientEmail = "reject@example.org"

	err := transport.Send(context.Background(), message)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "rcpt", transportErr.Stage)
	assert.True(t, transportErr.Permanent())
	assert.Equal(t, "rcpt: 550 5.1.1 no such user (permanent)", err.Error())
}

func TestSMTPTransportSendDeferred(t *testing.T) {
	relay := startFakeRelay(t)
	transport := newTestTransport(t, relay.config())

	message := testMessage
	message.RecipientEmail = "later@example.org"

	err := transport.Send(context.Background(), message)
	require.Error(t, err)
	assert.Equal(t, "rcpt: 451 4.3.0 try again later (transient)", err.Error())
}

func TestIsPermanentErr(t *testing.T) {
	assert.True(t, isPermanentErr(&textproto.Error{Code: 550}))
	assert.True(t, isPermanentErr(fmt.Errorf("wrapped: %w", &textproto.Error{Code: 554})))
	assert.False(t, isPermanentErr(&textproto.Error{Code: 421}))
	assert.False(t, isPermanentErr(errors.New("connection reset")))
}

func TestIsTransientErr(t *testing.T) {
	assert.True(t, isTransientErr(&textproto.Error{Code: 421}))
	assert.False(t, isTransientErr(&textproto.Error{Code: 250}))
	assert.False(t, isTransientErr(errors.New("timeout")))
}

func TestTransportErrorUnclassified(t *testing.T) {
	err := &TransportError{Stage: "connect", Err: errors.New("no route to host")}
	assert.Equal(t, "connect: no route to host", err.Error())
	assert.False(t, err.Permanent())
}

func TestImplicitTLSPort(t *testing.T) {
	assert.True(t, models.TransportConfig{Port: 465}.ImplicitTLS())
	assert.False(t, models.TransportConfig{Port: 587}.ImplicitTLS())
	assert.Equal(t, "smtp.example.com:465", models.TransportConfig{Host: "smtp.example.com", Port: 465}.Address())
}
