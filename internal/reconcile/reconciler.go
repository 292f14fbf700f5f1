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
	"time"

	"github.com/lukasdietrich/briefsend/internal/database"
	"github.com/lukasdietrich/briefsend/internal/log"
	"github.com/lukasdietrich/briefsend/internal/models"
	"github.com/lukasdietrich/briefsend/internal/storage"
)

// Report is the outcome of reconciling an archived batch.
type Report struct {
	Archive         *models.BatchArchive
	Classifications []Classification
	Summary         ClassificationSummary
	// Suppressed lists the bounced addresses newly added to the suppression list.
	Suppressed []string
	Notice     string
}

// Reconciler matches archived send results against bounce notifications.
type Reconciler struct {
	conn         database.Conn
	suppressions database.SuppressionDao
	archives     storage.Archives
	scanner      *Scanner
	opts         ReconcileOptions
	now          func() time.Time
}

// NewReconciler creates a new Reconciler.
func NewReconciler(
	conn database.Conn,
	suppressions database.SuppressionDao,
	archives storage.Archives,
	scanner *Scanner,
	opts ReconcileOptions,
) *Reconciler {
	return &Reconciler{
		conn:         conn,
		suppressions: suppressions,
		archives:     archives,
		scanner:      scanner,
		opts:         opts,
		now:          time.Now,
	}
}

// DaysBack returns the configured default lookback window.
func (r *Reconciler) DaysBack() int {
	return r.opts.DaysBack
}

// Reconcile scans the mailbox, stores the bounce records with the archive and classifies its
// results. Bounced addresses are added to the suppression list. A failed scan leaves the archive
// untouched.
func (r *Reconciler) Reconcile(ctx context.Context, archiveID string, config models.MailboxConfig, daysBack int) (*Report, error) {
	ctx = log.WithOrigin(ctx, "reconcile")

	archive, err := r.archives.Load(ctx, archiveID)
	if err != nil {
		return nil, err
	}

	bounces, err := r.scanner.Scan(ctx, config, daysBack)
	if err != nil {
		return nil, err
	}

	if daysBack < 1 {
		daysBack = 1
	}

	reconciledAt := r.now()

	if err := r.archives.UpdateBounces(ctx, archive.ID, bounces, reconciledAt, daysBack); err != nil {
		return nil, err
	}

	archive.Bounces = bounces
	archive.ReconciledAt = &reconciledAt
	archive.LookbackDays = daysBack

	report := newReport(archive)

	suppressed, err := r.suppress(ctx, archive, report.Classifications)
	if err != nil {
		log.ErrorContext(ctx).
			Err(err).
			Str("archive", archive.ID).
			Msg("could not update suppression list")
	}

	report.Suppressed = suppressed

	log.InfoContext(ctx).
		Str("archive", archive.ID).
		Int("failed", report.Summary.Failed).
		Int("bounced", report.Summary.Bounced).
		Int("likelyDelivered", report.Summary.LikelyDelivered).
		Msg("batch reconciled")

	log.WarnContext(ctx).Msg(PresumptiveDeliveryNotice)

	return report, nil
}

// Report classifies an archive using the bounce records of its last reconciliation, without
// contacting the mailbox.
func (r *Reconciler) Report(ctx context.Context, archiveID string) (*Report, error) {
	archive, err := r.archives.Load(ctx, archiveID)
	if err != nil {
		return nil, err
	}

	return newReport(archive), nil
}

func (r *Reconciler) suppress(ctx context.Context, archive *models.BatchArchive, classifications []Classification) ([]string, error) {
	bounceByAddress := make(map[string]models.BounceRecord)
	for _, bounce := range archive.Bounces {
		key := models.NormalizeAddress(bounce.BouncedEmail)
		if _, ok := bounceByAddress[key]; !ok {
			bounceByAddress[key] = bounce
		}
	}

	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}

	defer tx.RollbackWith(func() {
		log.WarnContext(ctx).Msg("rolling back suppression list update")
	})

	var (
		createdAt  = r.now().Unix()
		suppressed []string
	)

	for _, c := range classifications {
		if c.Classification != models.DeliveryBounced {
			continue
		}

		bounce := bounceByAddress[models.NormalizeAddress(c.Result.RecipientEmail)]
		bounce.BouncedEmail = c.Result.RecipientEmail

		suppression := models.NewSuppressionEntity(bounce, archive.ID, createdAt)

		if err := r.suppressions.Insert(ctx, tx, &suppression); err != nil {
			if database.IsErrUnique(err) {
				continue
			}

			return nil, err
		}

		suppressed = append(suppressed, c.Result.RecipientEmail)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return suppressed, nil
}

func newReport(archive *models.BatchArchive) *Report {
	classifications := Classify(archive.Results, archive.Bounces)

	return &Report{
		Archive:         archive,
		Classifications: classifications,
		Summary:         Summarize(classifications),
		Notice:          PresumptiveDeliveryNotice,
	}
}

// IsScanError reports whether the error aborted a mailbox scan.
func IsScanError(err error) bool {
	var scanErr *models.ScanError
	return errors.As(err, &scanErr)
}
