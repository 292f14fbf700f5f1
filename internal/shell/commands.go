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

package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/lukasdietrich/briefsend/internal/delivery"
	"github.com/lukasdietrich/briefsend/internal/models"
	"github.com/lukasdietrich/briefsend/internal/reconcile"
)

const scheduleLayout = "2006-01-02 15:04"

var (
	errNothingPlanned = errors.New("there is no planned batch, run \"batch plan\" first")
	errNoArchives     = errors.New("there are no completed batches")
	errNoSuppressions = errors.New("there are no suppressed addresses")
	errEmptyBatch     = errors.New("the planned batch is empty")
)

var (
	kindLabels = map[models.RecipientKind]string{
		models.KindPersonal: "personal",
		models.KindGeneric:  "generic",
	}

	classificationLabels = map[models.DeliveryClassification]string{
		models.DeliveryFailed:          "FAILED",
		models.DeliveryBounced:         "BOUNCED",
		models.DeliveryLikelyDelivered: "likely delivered",
	}
)

func offerPending(ctx *cmdContext) error {
	archive, err := ctx.dispatcher.Recover(ctx)
	if err != nil {
		return err
	}

	if archive != nil {
		ctx.info("Finalized completed batch: %s", archive.SummaryLine())
	}

	progress, err := ctx.dispatcher.Pending(ctx)
	if err != nil {
		if errors.Is(err, delivery.ErrNothingToResume) {
			return nil
		}

		return err
	}

	fmt.Printf("\n  An interrupted batch was found: %d of %d messages sent, started %s.\n\n",
		len(progress.ResultsSoFar),
		progress.TotalMessages,
		progress.StartedAt.Local().Format(scheduleLayout))

	resume, err := ctx.confirm("Resume pending batch?", true)
	if err != nil {
		return err
	}

	if resume {
		return resumeBatch(ctx)
	}

	discard, err := ctx.confirm("Discard and start new?", false)
	if err != nil {
		return err
	}

	if discard {
		return discardBatch(ctx)
	}

	ctx.info("The batch stays pending. Use \"batch resume\" or \"batch discard\" later.")
	return nil
}

func planBatch(ctx *cmdContext) error {
	file, err := ctx.planner.Load()
	if err != nil {
		return err
	}

	batch, err := ctx.planner.Plan(ctx, file)
	if err != nil {
		return err
	}

	when, err := ctx.askWithDefault("Send at [YYYY-MM-DD HH:MM or now]: ", "now")
	if err != nil {
		return err
	}

	batch.Schedule, err = parseSchedule(when, time.Now(), time.Local)
	if err != nil {
		return err
	}

	ctx.planned = batch

	for _, message := range batch.Messages {
		ctx.info("%-9s %-32s %s", kindLabels[message.RecipientKind], message.RecipientEmail, message.Company)
	}

	for _, message := range batch.Suppressed {
		ctx.info("Skipped suppressed address %s (%s).", message.RecipientEmail, message.Company)
	}

	for _, message := range batch.Duplicates {
		ctx.info("Skipped duplicate address %s (%s).", message.RecipientEmail, message.Company)
	}

	for _, company := range batch.Defaulted {
		ctx.info("Used default values for %s.", company)
	}

	ctx.info("%d messages planned.", len(batch.Messages))

	if batch.Schedule != nil {
		ctx.info("Scheduled for %s (%s).", batch.Schedule.SendAt.Format(scheduleLayout), batch.Schedule.Timezone)
	}

	return nil
}

func testBatch(ctx *cmdContext) error {
	message, err := firstPlannedMessage(ctx)
	if err != nil {
		return err
	}

	config, err := transportConfig(ctx)
	if err != nil {
		return err
	}

	result, err := ctx.dispatcher.TestSend(ctx, config, message)
	if err != nil {
		return err
	}

	ctx.info("Test message to %s: %s (%s)", result.RecipientEmail, result.Status, result.Detail)
	return nil
}

func startBatch(ctx *cmdContext) error {
	if ctx.planned == nil {
		return errNothingPlanned
	}

	if len(ctx.planned.Messages) == 0 {
		return errEmptyBatch
	}

	ok, err := ctx.confirm(fmt.Sprintf("Send %d messages?", len(ctx.planned.Messages)), false)
	if err != nil || !ok {
		return err
	}

	config, err := transportConfig(ctx)
	if err != nil {
		return err
	}

	report, err := ctx.dispatcher.Start(ctx, delivery.StartRequest{
		Messages:  ctx.planned.Messages,
		Transport: config,
		Schedule:  ctx.planned.Schedule,
	})

	if report != nil {
		ctx.planned = nil
		printReport(ctx, report)
	}

	return err
}

func resumeBatch(ctx *cmdContext) error {
	config, err := transportConfig(ctx)
	if err != nil {
		return err
	}

	report, err := ctx.dispatcher.Resume(ctx, config, false)
	if errors.Is(err, delivery.ErrInFlightUnconfirmed) {
		fmt.Printf("\n  %s\n  The message may already have been delivered.\n\n", err)

		again, askErr := ctx.confirm("Send it again?", false)
		if askErr != nil || !again {
			return askErr
		}

		report, err = ctx.dispatcher.Resume(ctx, config, true)
	}

	if errors.Is(err, delivery.ErrNothingToResume) {
		ctx.info("Nothing to resume.")
		return nil
	}

	if report != nil {
		printReport(ctx, report)
	}

	return err
}

func discardBatch(ctx *cmdContext) error {
	progress, err := ctx.dispatcher.Discard(ctx)
	if err != nil {
		if errors.Is(err, delivery.ErrNothingToResume) {
			ctx.info("There is no interrupted batch.")
			return nil
		}

		return err
	}

	ctx.info("Discarded batch with %d of %d messages sent.", len(progress.ResultsSoFar), progress.TotalMessages)
	return nil
}

func statusBatch(ctx *cmdContext) error {
	if ctx.planned != nil {
		ctx.info("Planned: %d messages.", len(ctx.planned.Messages))
	} else {
		ctx.info("Planned: none.")
	}

	progress, err := ctx.dispatcher.Pending(ctx)
	if err != nil {
		if errors.Is(err, delivery.ErrNothingToResume) {
			ctx.info("Interrupted: none.")
			return nil
		}

		return err
	}

	ctx.info("Interrupted: %d of %d messages sent (success=%d failed=%d), last update %s.",
		len(progress.ResultsSoFar),
		progress.TotalMessages,
		progress.SuccessCount,
		progress.FailCount,
		progress.LastUpdated.Local().Format(time.DateTime))

	if progress.InFlight != "" {
		ctx.info("The send attempt to %s was interrupted.", progress.InFlight)
	}

	return nil
}

func listHistory(ctx *cmdContext) error {
	archives, err := ctx.archives.List(ctx)
	if err != nil {
		return err
	}

	if len(archives) == 0 {
		return errNoArchives
	}

	for _, archive := range archives {
		ctx.info("%s", archive.SummaryLine())
	}

	return nil
}

func showHistory(ctx *cmdContext) error {
	archive, err := selectOneArchive(ctx)
	if err != nil {
		return err
	}

	report, err := ctx.reconciler.Report(ctx, archive.ID)
	if err != nil {
		return err
	}

	printClassifications(ctx, report)
	return nil
}

func scanBounces(ctx *cmdContext) error {
	archive, err := selectOneArchive(ctx)
	if err != nil {
		return err
	}

	answer, err := ctx.askWithDefault("Days back: ", strconv.Itoa(ctx.reconciler.DaysBack()))
	if err != nil {
		return err
	}

	days, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return fmt.Errorf("invalid number of days %q: %w", answer, err)
	}

	config := reconcile.MailboxConfigFromViper()
	if config.Credential == "" {
		credential, err := ctx.password("Mailbox credential: ")
		if err != nil {
			return err
		}

		config.Credential = string(credential)
	}

	report, err := ctx.reconciler.Reconcile(ctx, archive.ID, config, days)
	if err != nil {
		if reconcile.IsScanError(err) {
			return fmt.Errorf("%w (the stored bounces were kept)", err)
		}

		return err
	}

	printClassifications(ctx, report)

	for _, address := range report.Suppressed {
		ctx.info("Suppressed %s for future batches.", address)
	}

	return nil
}

func listSuppressions(ctx *cmdContext) error {
	suppressions, err := ctx.suppressionDao.FindAll(ctx, ctx.conn)
	if err != nil {
		return err
	}

	if len(suppressions) == 0 {
		return errNoSuppressions
	}

	for _, suppression := range suppressions {
		ctx.info("%-32s %s  %s",
			suppression.DisplayAddress,
			time.Unix(suppression.CreatedAt, 0).Local().Format(time.DateOnly),
			suppression.ArchiveID)
	}

	return nil
}

func removeSuppressions(ctx *cmdContext) error {
	suppressions, err := ctx.suppressionDao.FindAll(ctx, ctx.conn)
	if err != nil {
		return err
	}

	if len(suppressions) == 0 {
		return errNoSuppressions
	}

	indices, err := fuzzyfinder.FindMulti(suppressions, func(i int) string {
		return suppressions[i].DisplayAddress
	})
	if err != nil {
		return err
	}

	tx, err := ctx.conn.Begin(ctx)
	if err != nil {
		return err
	}

	for _, index := range indices {
		suppression := suppressions[index]

		if err := ctx.suppressionDao.Delete(ctx, tx, &suppression); err != nil {
			tx.Rollback()
			return fmt.Errorf("could not remove %q: %w", suppression.DisplayAddress, err)
		}

		ctx.info("Removed %s from the suppression list.", suppression.DisplayAddress)
	}

	return tx.Commit()
}

func firstPlannedMessage(ctx *cmdContext) (models.OutboundMessage, error) {
	if ctx.planned == nil {
		return models.OutboundMessage{}, errNothingPlanned
	}

	if len(ctx.planned.Messages) == 0 {
		return models.OutboundMessage{}, errEmptyBatch
	}

	return ctx.planned.Messages[0], nil
}

// transportConfig reads the relay credentials and asks for a credential that is not configured.
func transportConfig(ctx *cmdContext) (models.TransportConfig, error) {
	config := delivery.TransportConfigFromViper()

	if config.Credential == "" {
		credential, err := ctx.password("Transport credential: ")
		if err != nil {
			return config, err
		}

		config.Credential = string(credential)
	}

	return config, nil
}

func selectOneArchive(ctx *cmdContext) (*models.BatchArchive, error) {
	archives, err := ctx.archives.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(archives) == 0 {
		return nil, errNoArchives
	}

	index, err := fuzzyfinder.Find(archives, func(i int) string {
		return archives[i].SummaryLine()
	})
	if err != nil {
		return nil, err
	}

	return archives[index], nil
}

func printReport(ctx *cmdContext, report *delivery.Report) {
	for _, d := range report.Dropped {
		ctx.info("Dropped %s: %v.", d.Message.RecipientEmail, d.Reason)
	}

	if report.RetriedInFlight != "" {
		ctx.info("The message to %s was sent again and may arrive twice.", report.RetriedInFlight)
	}

	if report.Archive != nil {
		ctx.info("Completed: %s", report.Archive.SummaryLine())
		ctx.info("Archived as %s.", report.Archive.ID)
	} else if progress := report.Progress; progress != nil {
		ctx.info("Stopped after %d of %d messages. Use \"batch resume\" to continue.",
			len(progress.ResultsSoFar), progress.TotalMessages)
	}
}

func printClassifications(ctx *cmdContext, report *reconcile.Report) {
	for _, line := range classificationLines(report) {
		ctx.info("%s", line)
	}
}

func classificationLines(report *reconcile.Report) []string {
	var lines []string

	for _, c := range report.Classifications {
		line := fmt.Sprintf("%-16s %-32s %s", classificationLabels[c.Classification], c.Result.RecipientEmail, c.Result.Company)
		if c.Classification == models.DeliveryFailed {
			line += "  (" + c.Result.Detail + ")"
		}

		lines = append(lines, line)
	}

	summary := report.Summary
	lines = append(lines,
		"",
		fmt.Sprintf("failed=%d bounced=%d likely_delivered=%d", summary.Failed, summary.Bounced, summary.LikelyDelivered))

	if archive := report.Archive; archive.ReconciledAt != nil {
		lines = append(lines, fmt.Sprintf("Bounces as of %s, looking back %d days.",
			archive.ReconciledAt.Local().Format(time.DateTime), archive.LookbackDays))
	} else {
		lines = append(lines, "The batch was never scanned for bounces.")
	}

	return append(lines, report.Notice)
}

// parseSchedule parses the time of a scheduled send in the given location. "now" and points in the
// past mean an immediate send.
func parseSchedule(answer string, now time.Time, location *time.Location) (*models.Schedule, error) {
	answer = strings.TrimSpace(answer)

	if answer == "" || strings.EqualFold(answer, "now") {
		return nil, nil
	}

	sendAt, err := time.ParseInLocation(scheduleLayout, answer, location)
	if err != nil {
		return nil, fmt.Errorf("invalid send time %q, expected %q: %w", answer, scheduleLayout, err)
	}

	if !sendAt.After(now) {
		return nil, nil
	}

	return &models.Schedule{
		SendAt:   sendAt,
		Timezone: location.String(),
	}, nil
}
