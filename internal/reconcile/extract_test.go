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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lukasdietrich/briefsend/internal/models"
)

func TestExtractAddresses(t *testing.T) {
	text := "Delivery to b@example.com failed.\n" +
		"Reported by MAILER-DAEMON@mx.example.org and postmaster@example.org.\n" +
		"Contact No-Reply@x.com, bounce@x.io, admin@y.de or noreply@z.net.\n" +
		"Again: B@Example.com\n" +
		"Also c.d+tag@sub.example.co.uk."

	assert.Equal(t,
		[]string{"b@example.com", "c.d+tag@sub.example.co.uk"},
		ExtractAddresses(text))
}

func TestExtractAddressesNone(t *testing.T) {
	assert.Empty(t, ExtractAddresses("nothing to see here @ all"))
	assert.Empty(t, ExtractAddresses("mailer-daemon@example.com"))
}

func TestNotificationTextMultipartReport(t *testing.T) {
	raw := "From: MAILER-DAEMON@mx.example.org\r\n" +
		"To: sender@example.org\r\n" +
		"Subject: Undelivered Mail Returned to Sender\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/report; report-type=delivery-status; boundary=\"BOUND\"\r\n" +
		"\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/plain; charset=us-ascii\r\n" +
		"\r\n" +
		"Your message could not be delivered to b@example.com.\r\n" +
		"--BOUND\r\n" +
		"Content-Type: message/delivery-status\r\n" +
		"\r\n" +
		"Final-Recipient: rfc822; b@example.com\r\n" +
		"Action: failed\r\n" +
		"--BOUND\r\n" +
		"Content-Type: image/png\r\n" +
		"\r\n" +
		"hidden@png.example.com\r\n" +
		"--BOUND--\r\n"

	text := notificationText([]byte(raw))

	assert.Contains(t, text, "could not be delivered")
	assert.Contains(t, text, "Final-Recipient")
	assert.NotContains(t, text, "hidden@png.example.com")
	assert.Equal(t, []string{"b@example.com"}, ExtractAddresses(text))
}

func TestNotificationTextFallback(t *testing.T) {
	text := notificationText([]byte("not a message at all, x@example.com"))
	assert.Contains(t, text, "x@example.com")
}

func TestExtractBounces(t *testing.T) {
	notification := bounceNotification(3, "b@example.com", "c@example.com")

	records := ExtractBounces(notification)

	assert.Equal(t, []models.BounceRecord{
		{
			BouncedEmail:        "b@example.com",
			NotificationSubject: notification.Subject,
			NotificationSender:  notification.Sender,
			NotificationDate:    notification.Date,
			Reason:              models.ReasonBounceNotification,
		},
		{
			BouncedEmail:        "c@example.com",
			NotificationSubject: notification.Subject,
			NotificationSender:  notification.Sender,
			NotificationDate:    notification.Date,
			Reason:              models.ReasonBounceNotification,
		},
	}, records)
}
