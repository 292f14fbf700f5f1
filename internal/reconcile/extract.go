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
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"

	"github.com/lukasdietrich/briefsend/internal/models"
)

// BounceKeywords are subject phrases of delivery failure notifications.
var BounceKeywords = []string{
	"undelivered",
	"delivery status notification",
	"returned mail",
	"delivery failure",
	"undeliverable",
	"failure notice",
	"returned to sender",
}

// excludedLocalParts belong to system senders, which appear in every notification.
var excludedLocalParts = map[string]bool{
	"mailer-daemon": true,
	"postmaster":    true,
	"noreply":       true,
	"no-reply":      true,
	"bounce":        true,
	"admin":         true,
}

var addressPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// ExtractAddresses returns every address-shaped token of the text in order of appearance, except
// addresses of system senders. An address appearing more than once is returned once.
func ExtractAddresses(text string) []string {
	var (
		seen      = models.NewAddressSet()
		addresses []string
	)

	for _, match := range addressPattern.FindAllString(text, -1) {
		match = strings.Trim(match, ".")

		addr, err := models.Parse(match)
		if err != nil {
			continue
		}

		if excludedLocalParts[strings.ToLower(addr.LocalPart())] {
			continue
		}

		if seen.Add(match) {
			addresses = append(addresses, match)
		}
	}

	return addresses
}

// ExtractBounces creates one bounce record per address found in the notification body.
func ExtractBounces(notification Notification) []models.BounceRecord {
	var records []models.BounceRecord

	for _, address := range ExtractAddresses(notificationText(notification.Raw)) {
		records = append(records, models.BounceRecord{
			BouncedEmail:        address,
			NotificationSubject: notification.Subject,
			NotificationSender:  notification.Sender,
			NotificationDate:    notification.Date,
			Reason:              models.ReasonBounceNotification,
		})
	}

	return records
}

// notificationText decodes the textual parts of a notification. Delivery status reports are
// usually multipart/report with a text/plain explanation and a message/delivery-status part, both
// of which are included. A message that cannot be parsed is used as is.
func notificationText(raw []byte) string {
	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return string(raw)
	}

	var text strings.Builder

	err = entity.Walk(func(path []int, part *message.Entity, err error) error {
		if err != nil {
			return err
		}

		mediaType, _, _ := part.Header.ContentType()
		if mediaType == "" {
			mediaType = "text/plain"
		}

		if !strings.HasPrefix(mediaType, "text/") && !strings.HasPrefix(mediaType, "message/") {
			return nil
		}

		body, err := io.ReadAll(part.Body)
		if err != nil && !message.IsUnknownCharset(err) {
			return err
		}

		text.Write(body)
		text.WriteByte('\n')

		return nil
	})

	if err != nil || text.Len() == 0 {
		return string(raw)
	}

	return text.String()
}
