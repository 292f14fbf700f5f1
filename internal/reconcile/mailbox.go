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

package reconcile

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/lukasdietrich/briefsend/internal/log"
	"github.com/lukasdietrich/briefsend/internal/models"
)

// Notification is a message fetched from the mailbox.
type Notification struct {
	UID     uint32
	Subject string
	Sender  string
	Date    time.Time
	Raw     []byte
}

// Mailbox is a read-only view on a single mailbox folder.
type Mailbox interface {
	// Search returns the uids of all messages received since the date whose subject contains the
	// keyword, compared case-insensitively.
	Search(ctx context.Context, keyword string, since time.Time) ([]uint32, error)
	// Fetch returns the messages for the uids.
	Fetch(ctx context.Context, uids []uint32) ([]Notification, error)
	// Close logs out and discards the connection. Errors are logged, never returned.
	Close()
}

// MailboxDialer opens a Mailbox.
type MailboxDialer func(context.Context, models.MailboxConfig) (Mailbox, error)

// NewMailboxDialer returns a dialer of imap mailboxes.
func NewMailboxDialer() MailboxDialer {
	return DialIMAP
}

// IMAPMailbox is a Mailbox backed by an imap connection. Port 993 uses implicit tls, every other
// port starts in plaintext and upgrades using STARTTLS.
type IMAPMailbox struct {
	client *imapclient.Client
}

// DialIMAP connects, logs in and selects the folder read-only.
func DialIMAP(ctx context.Context, config models.MailboxConfig) (Mailbox, error) {
	var (
		address = config.Address()
		options = imapclient.Options{
			TLSConfig: &tls.Config{ServerName: config.Host},
		}
		client *imapclient.Client
		err    error
	)

	log.DebugContext(ctx).
		Str("address", address).
		Bool("implicitTLS", config.ImplicitTLS()).
		Msg("connecting to mailbox")

	if config.ImplicitTLS() {
		client, err = imapclient.DialTLS(address, &options)
	} else {
		client, err = imapclient.DialStartTLS(address, &options)
	}

	if err != nil {
		return nil, err
	}

	mailbox := IMAPMailbox{client: client}

	if err := client.Login(config.Account, config.Credential).Wait(); err != nil {
		mailbox.Close()
		return nil, err
	}

	folder := config.Folder
	if folder == "" {
		folder = "INBOX"
	}

	if _, err := client.Select(folder, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		mailbox.Close()
		return nil, err
	}

	return &mailbox, nil
}

func (m *IMAPMailbox) Search(ctx context.Context, keyword string, since time.Time) ([]uint32, error) {
	criteria := imap.SearchCriteria{
		Since: since,
		Header: []imap.SearchCriteriaHeaderField{
			{Key: "Subject", Value: keyword},
		},
	}

	data, err := m.client.UIDSearch(&criteria, nil).Wait()
	if err != nil {
		return nil, err
	}

	var uids []uint32
	for _, uid := range data.AllUIDs() {
		uids = append(uids, uint32(uid))
	}

	return uids, nil
}

func (m *IMAPMailbox) Fetch(ctx context.Context, uids []uint32) ([]Notification, error) {
	if len(uids) == 0 {
		return nil, nil
	}

	imapUIDs := make([]imap.UID, len(uids))
	for i, uid := range uids {
		imapUIDs[i] = imap.UID(uid)
	}

	fetchOptions := imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{{Peek: true}},
	}

	fetchCmd := m.client.Fetch(imap.UIDSetNum(imapUIDs...), &fetchOptions)

	var notifications []Notification

	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		msgData, err := msg.Collect()
		if err != nil {
			log.WarnContext(ctx).
				Err(err).
				Msg("could not collect notification")

			continue
		}

		notification := Notification{UID: uint32(msgData.UID)}

		if envelope := msgData.Envelope; envelope != nil {
			notification.Subject = envelope.Subject
			notification.Date = envelope.Date

			if len(envelope.From) > 0 {
				notification.Sender = envelope.From[0].Addr()
			}
		}

		for _, section := range msgData.BodySection {
			if len(section.Bytes) > 0 {
				notification.Raw = section.Bytes
				break
			}
		}

		notifications = append(notifications, notification)
	}

	if err := fetchCmd.Close(); err != nil {
		return notifications, err
	}

	return notifications, nil
}

// Close never fails. The connection is dropped even when the server already closed it.
func (m *IMAPMailbox) Close() {
	if m.client == nil {
		return
	}

	if err := m.client.Logout().Wait(); err != nil {
		log.Debug().Err(err).Msg("mailbox logout failed")
	}

	if err := m.client.Close(); err != nil {
		log.Debug().Err(err).Msg("mailbox close failed")
	}

	m.client = nil
}
