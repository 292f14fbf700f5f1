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
	"errors"
	"io"
	"net"
	"time"

	"github.com/lukasdietrich/briefsend/internal/log"
	"github.com/lukasdietrich/briefsend/internal/models"
)

// Scanner searches a mailbox for delivery failure notifications.
type Scanner struct {
	dial MailboxDialer
	now  func() time.Time
}

// NewScanner creates a new Scanner.
func NewScanner(dial MailboxDialer) *Scanner {
	return &Scanner{
		dial: dial,
		now:  time.Now,
	}
}

// Scan returns the bounce records of all notifications received within the last days. Values of
// days below 1 are treated as 1. A connection or login failure aborts the scan with a
// *models.ScanError, while a failing search for a single keyword is skipped. A scan in which no
// search succeeded is a *models.ScanError as well, so an empty result always means an empty mailbox.
func (s *Scanner) Scan(ctx context.Context, config models.MailboxConfig, days int) ([]models.BounceRecord, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if days < 1 {
		days = 1
	}

	mailbox, err := s.dial(ctx, config)
	if err != nil {
		return nil, &models.ScanError{Err: err}
	}

	defer mailbox.Close()

	var (
		since    = s.now().AddDate(0, 0, -days)
		fetched  = make(map[uint32]bool)
		seen     = make(map[bounceKey]bool)
		records  = []models.BounceRecord{}
		searched int
		lastErr  error
	)

	for _, keyword := range BounceKeywords {
		if err := ctx.Err(); err != nil {
			return nil, &models.ScanError{Err: err}
		}

		uids, err := mailbox.Search(ctx, keyword, since)
		if err != nil {
			if isConnectionErr(err) {
				return nil, &models.ScanError{Err: err}
			}

			lastErr = err

			log.WarnContext(ctx).
				Err(err).
				Str("keyword", keyword).
				Msg("could not search mailbox, skipping keyword")

			continue
		}

		searched++

		var fresh []uint32

		for _, uid := range uids {
			if !fetched[uid] {
				fetched[uid] = true
				fresh = append(fresh, uid)
			}
		}

		if len(fresh) == 0 {
			continue
		}

		notifications, err := mailbox.Fetch(ctx, fresh)
		if err != nil {
			if isConnectionErr(err) {
				return nil, &models.ScanError{Err: err}
			}

			log.WarnContext(ctx).
				Err(err).
				Str("keyword", keyword).
				Msg("could not fetch notifications")
		}

		for _, notification := range notifications {
			for _, record := range ExtractBounces(notification) {
				key := bounceKey{
					address: models.NormalizeAddress(record.BouncedEmail),
					uid:     notification.UID,
				}

				if !seen[key] {
					seen[key] = true
					records = append(records, record)
				}
			}
		}
	}

	if searched == 0 {
		return nil, &models.ScanError{Err: lastErr}
	}

	log.InfoContext(ctx).
		Int("days", days).
		Int("notifications", len(fetched)).
		Int("bounces", len(records)).
		Msg("mailbox scanned")

	return records, nil
}

// isConnectionErr reports whether the mailbox connection itself is gone, in which case no further
// command can succeed.
func isConnectionErr(err error) bool {
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

type bounceKey struct {
	address string
	uid     uint32
}
