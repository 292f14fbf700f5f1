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

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefsend/internal/delivery"
	"github.com/lukasdietrich/briefsend/internal/log"
	"github.com/lukasdietrich/briefsend/internal/outreach"
	"github.com/lukasdietrich/briefsend/internal/reconcile"
	"github.com/lukasdietrich/briefsend/internal/shell"
	"github.com/lukasdietrich/briefsend/internal/storage"
)

var errNoArchives = errors.New("there are no completed batches")

// interruptContext is cancelled when the process is asked to stop. A batch interrupted this way
// keeps its checkpoint.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

type shellCommand struct {
	Shell *shell.Shell
}

func (c *shellCommand) run() error {
	return c.Shell.Run()
}

type sendCommand struct {
	Planner    *outreach.Planner
	Dispatcher *delivery.Dispatcher
}

func (c *sendCommand) run() error {
	ctx, stop := interruptContext()
	defer stop()

	file, err := c.Planner.Load()
	if err != nil {
		return err
	}

	batch, err := c.Planner.Plan(ctx, file)
	if err != nil {
		return err
	}

	report, err := c.Dispatcher.Start(ctx, delivery.StartRequest{
		Messages:  batch.Messages,
		Transport: delivery.TransportConfigFromViper(),
		Schedule:  batch.Schedule,
	})

	logReport(report)
	return err
}

type resumeCommand struct {
	Dispatcher *delivery.Dispatcher
}

func (c *resumeCommand) run() error {
	ctx, stop := interruptContext()
	defer stop()

	report, err := c.Dispatcher.Resume(ctx,
		delivery.TransportConfigFromViper(),
		viper.GetBool("dispatch.confirminflight"))

	if errors.Is(err, delivery.ErrNothingToResume) {
		log.Info().Msg("nothing to resume")
		return nil
	}

	logReport(report)
	return err
}

type scanCommand struct {
	Archives   storage.Archives
	Reconciler *reconcile.Reconciler
}

func (c *scanCommand) run() error {
	ctx, stop := interruptContext()
	defer stop()

	archiveID := viper.GetString("reconcile.archive")
	if archiveID == "" {
		archives, err := c.Archives.List(ctx)
		if err != nil {
			return err
		}

		if len(archives) == 0 {
			return errNoArchives
		}

		archiveID = archives[0].ID
	}

	days := viper.GetInt("reconcile.days")
	if days == 0 {
		days = c.Reconciler.DaysBack()
	}

	report, err := c.Reconciler.Reconcile(ctx, archiveID, reconcile.MailboxConfigFromViper(), days)
	if err != nil {
		return err
	}

	for _, classification := range report.Classifications {
		log.Info().
			Str("recipient", classification.Result.RecipientEmail).
			Str("company", classification.Result.Company).
			Stringer("classification", classification.Classification).
			Msg("classified")
	}

	for _, address := range report.Suppressed {
		log.Info().Str("address", address).Msg("address suppressed")
	}

	return nil
}

func logReport(report *delivery.Report) {
	if report == nil {
		return
	}

	for _, d := range report.Dropped {
		log.Warn().Err(d.Reason).Str("address", d.Message.RecipientEmail).Msg("message dropped")
	}

	if report.Archive != nil {
		log.Info().
			Str("archive", report.Archive.ID).
			Str("summary", report.Archive.SummaryLine()).
			Msg("batch archived")
	}
}
