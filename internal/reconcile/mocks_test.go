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
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/lukasdietrich/briefsend/internal/models"
)

type mockMailbox struct {
	mock.Mock
}

func (m *mockMailbox) Search(ctx context.Context, keyword string, since time.Time) ([]uint32, error) {
	args := m.Called(ctx, keyword, since)
	uids, _ := args.Get(0).([]uint32)
	return uids, args.Error(1)
}

func (m *mockMailbox) Fetch(ctx context.Context, uids []uint32) ([]Notification, error) {
	args := m.Called(ctx, uids)
	notifications, _ := args.Get(0).([]Notification)
	return notifications, args.Error(1)
}

func (m *mockMailbox) Close() {
	m.Called()
}

func dialerFor(mailbox Mailbox, err error) MailboxDialer {
	return func(context.Context, models.MailboxConfig) (Mailbox, error) {
		if err != nil {
			return nil, err
		}

		return mailbox, nil
	}
}

func testMailboxConfig() models.MailboxConfig {
	return models.MailboxConfig{
		Host:       "imap.example.org",
		Port:       993,
		Account:    "sender@example.org",
		Credential: "secret",
		Folder:     "INBOX",
	}
}

func bounceNotification(uid uint32, recipients ...string) Notification {
	body := "Content-Type: text/plain\r\n\r\nThe following addresses failed:\r\n"
	for _, recipient := range recipients {
		body += "  " + recipient + "\r\n"
	}

	body += "Reported by MAILER-DAEMON@mx.example.org\r\n"

	return Notification{
		UID:     uid,
		Subject: "Undelivered Mail Returned to Sender",
		Sender:  "MAILER-DAEMON@mx.example.org",
		Date:    time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
		Raw:     []byte(body),
	}
}
