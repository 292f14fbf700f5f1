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
	"time"

	"github.com/lukasdietrich/briefsend/internal/crypto"
	"github.com/lukasdietrich/briefsend/internal/log"
	"github.com/lukasdietrich/briefsend/internal/models"
	"github.com/lukasdietrich/briefsend/internal/storage"
)

var (
	// ErrNothingToResume is returned by Resume when there is no interrupted batch.
	ErrNothingToResume = errors.New("nothing to resume")
	// ErrPendingBatch is returned by Start while an interrupted batch waits to be resumed or
	// discarded.
	ErrPendingBatch = errors.New("an interrupted batch is pending")
	// ErrBatchIncomplete is returned by Complete when not every message has a result.
	ErrBatchIncomplete = errors.New("batch has messages without a result")
	// ErrInFlightUnconfirmed is returned by Resume when a message may already have been sent and
	// the retry was not confirmed.
	ErrInFlightUnconfirmed = errors.New("retry of in-flight message not confirmed")
)

// TestSubjectPrefix marks the subject of a test send.
const TestSubjectPrefix = "[TEST] "

// StartRequest describes a new batch.
type StartRequest struct {
	Messages  []models.OutboundMessage
	Transport models.TransportConfig
	Schedule  *models.Schedule
}

// Report is the outcome of a dispatch run.
type Report struct {
	Progress *models.BatchProgress
	Archive  *models.BatchArchive
	// Dropped are messages left out of the batch, either invalid or to an address already part of it.
	Dropped []models.DroppedMessage
	// RetriedInFlight is the recipient of an interrupted send attempt that was sent again.
	RetriedInFlight string
}

// Dispatcher sends a batch of messages one by one, pacing the sends and checkpointing the progress
// after every single message. There is at most one batch at a time.
type Dispatcher struct {
	checkpoints storage.Checkpoints
	archives    storage.Archives
	transports  TransportFactory
	idGen       crypto.IDGenerator
	pacer       *Pacer
	opts        DispatchOptions

	now       func() time.Time
	waitUntil func(context.Context, time.Time) error
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(
	checkpoints storage.Checkpoints,
	archives storage.Archives,
	transports TransportFactory,
	idGen crypto.IDGenerator,
	pacer *Pacer,
	opts DispatchOptions,
) *Dispatcher {
	return &Dispatcher{
		checkpoints: checkpoints,
		archives:    archives,
		transports:  transports,
		idGen:       idGen,
		pacer:       pacer,
		opts:        opts,

		now:       time.Now,
		waitUntil: WaitUntil,
	}
}

// Pending returns the checkpoint of an interrupted batch. ErrNothingToResume is returned if there
// is none.
func (d *Dispatcher) Pending(ctx context.Context) (*models.BatchProgress, error) {
	progress, err := d.checkpoints.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNoCheckpoint) {
			return nil, ErrNothingToResume
		}

		return nil, err
	}

	if progress.Status != models.BatchSending {
		return nil, ErrNothingToResume
	}

	return progress, nil
}

// Start snapshots the messages into a new checkpoint and sends them. The checkpoint is written
// before the first message is sent. Per message failures are recorded and never abort the batch.
func (d *Dispatcher) Start(ctx context.Context, req StartRequest) (*Report, error) {
	if err := req.Transport.Validate(); err != nil {
		return nil, err
	}

	if _, err := d.Recover(ctx); err != nil {
		return nil, err
	}

	if _, err := d.Pending(ctx); !errors.Is(err, ErrNothingToResume) {
		if err == nil {
			return nil, ErrPendingBatch
		}

		return nil, err
	}

	transport := d.transports(req.Transport)

	if err := d.verify(ctx, transport); err != nil {
		return nil, err
	}

	id, err := d.idGen.GenerateID()
	if err != nil {
		return nil, err
	}

	progress, dropped := models.NewBatchProgress(id, req.Messages, d.now())
	progress.Schedule = req.Schedule

	ctx = log.WithBatch(ctx, id)

	for _, d := range dropped {
		log.WarnContext(ctx).
			Err(d.Reason).
			Str("company", d.Message.Company).
			Str("address", d.Message.RecipientEmail).
			Msg("dropping message from the batch")
	}

	if err := d.checkpoints.Save(ctx, progress); err != nil {
		return nil, err
	}

	log.InfoContext(ctx).
		Int("messages", progress.TotalMessages).
		Msg("batch started")

	report := Report{Progress: progress, Dropped: dropped}
	report.Archive, err = d.run(ctx, transport, progress)

	return &report, err
}

// Resume continues an interrupted batch with all messages that do not have a result yet.
func (d *Dispatcher) Resume(ctx context.Context, config models.TransportConfig, confirmInFlight bool) (*Report, error) {
	if _, err := d.Recover(ctx); err != nil {
		return nil, err
	}

	progress, err := d.Pending(ctx)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	ctx = log.WithBatch(ctx, progress.ID)
	report := Report{Progress: progress}

	if inFlight := progress.InFlight; inFlight != "" && !progress.HasResult(inFlight) {
		if d.opts.InFlight == InFlightConfirm && !confirmInFlight {
			return nil, fmt.Errorf("%w: %s", ErrInFlightUnconfirmed, inFlight)
		}

		log.WarnContext(ctx).
			Str("address", inFlight).
			Msg("send attempt was interrupted, the message is sent again and may arrive twice")

		report.RetriedInFlight = inFlight
	}

	transport := d.transports(config)

	if err := d.verify(ctx, transport); err != nil {
		return nil, err
	}

	log.InfoContext(ctx).
		Int("sent", len(progress.ResultsSoFar)).
		Int("messages", progress.TotalMessages).
		Msg("resuming batch")

	report.Archive, err = d.run(ctx, transport, progress)
	return &report, err
}

// Discard removes the checkpoint of an interrupted batch without sending the remaining messages.
func (d *Dispatcher) Discard(ctx context.Context) (*models.BatchProgress, error) {
	progress, err := d.Pending(ctx)
	if err != nil {
		return nil, err
	}

	log.WarnContext(log.WithBatch(ctx, progress.ID)).
		Int("sent", len(progress.ResultsSoFar)).
		Int("messages", progress.TotalMessages).
		Msg("discarding interrupted batch")

	return progress, d.checkpoints.Delete(ctx)
}

// Complete archives a batch in which every message has a result and clears the checkpoint.
func (d *Dispatcher) Complete(ctx context.Context, progress *models.BatchProgress) (*models.BatchArchive, error) {
	if !progress.IsComplete() {
		return nil, ErrBatchIncomplete
	}

	archive := models.NewBatchArchive(progress, d.now())

	progress.Status = models.BatchCompleted
	progress.ArchiveID = archive.ID

	if err := d.checkpoints.Save(ctx, progress); err != nil {
		return nil, err
	}

	return d.finalize(ctx, archive)
}

// Recover finalizes a checkpoint left behind with status completed. It returns the archive of that
// batch, or nil if there was nothing to recover.
func (d *Dispatcher) Recover(ctx context.Context) (*models.BatchArchive, error) {
	progress, err := d.checkpoints.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNoCheckpoint) {
			return nil, nil
		}

		return nil, err
	}

	if progress.Status != models.BatchCompleted {
		return nil, nil
	}

	ctx = log.WithBatch(ctx, progress.ID)
	log.InfoContext(ctx).
		Str("archive", progress.ArchiveID).
		Msg("finalizing completed batch")

	archive, err := d.archives.Load(ctx, progress.ArchiveID)
	if err == nil {
		return archive, d.checkpoints.Delete(ctx)
	}

	if !errors.Is(err, storage.ErrArchiveNotFound) {
		return nil, err
	}

	completedAt, err := time.Parse(models.ArchiveIDLayout, progress.ArchiveID)
	if err != nil {
		completedAt = progress.LastUpdated
	}

	return d.finalize(ctx, models.NewBatchArchive(progress, completedAt))
}

// TestSend sends the first message to its recipient with a marked subject. Nothing is recorded.
func (d *Dispatcher) TestSend(ctx context.Context, config models.TransportConfig, message models.OutboundMessage) (models.SendResult, error) {
	if err := config.Validate(); err != nil {
		return models.SendResult{}, err
	}

	message.Subject = TestSubjectPrefix + message.Subject

	err := d.transports(config).Send(ctx, message)
	return models.NewSendResult(message, err, d.now()), nil
}

func (d *Dispatcher) verify(ctx context.Context, transport Transport) error {
	if !d.opts.Verify {
		return nil
	}

	if err := transport.Verify(ctx); err != nil {
		return &models.ConfigurationError{Component: "transport", Err: err}
	}

	return nil
}

// run sends all pending messages of the batch and completes it. Pacing happens between two sends
// and always after the checkpoint of the previous send was written.
func (d *Dispatcher) run(ctx context.Context, transport Transport, progress *models.BatchProgress) (*models.BatchArchive, error) {
	if schedule := progress.Schedule; schedule != nil && d.now().Before(schedule.SendAt) {
		log.InfoContext(ctx).
			Time("sendAt", schedule.SendAt).
			Str("timezone", schedule.Timezone).
			Msg("waiting for scheduled send")

		if err := d.waitUntil(ctx, schedule.SendAt); err != nil {
			return nil, err
		}
	}

	for i, message := range progress.Pending() {
		if i > 0 {
			if err := d.pacer.Wait(ctx); err != nil {
				return nil, err
			}
		}

		if err := d.sendNext(ctx, transport, progress, message); err != nil {
			return nil, err
		}
	}

	archive, err := d.Complete(ctx, progress)
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx).
		Str("archive", archive.ID).
		Int("success", progress.SuccessCount).
		Int("failed", progress.FailCount).
		Msg("batch completed")

	return archive, nil
}

// sendNext marks the message in flight, sends it and records the result. Both states are written
// to the checkpoint before sendNext returns.
func (d *Dispatcher) sendNext(ctx context.Context, transport Transport, progress *models.BatchProgress, message models.OutboundMessage) error {
	ctx = log.WithRecipient(ctx, message.RecipientEmail)

	progress.InFlight = message.RecipientEmail
	progress.LastUpdated = d.now()

	if err := d.checkpoints.Save(ctx, progress); err != nil {
		return err
	}

	sendErr := transport.Send(ctx, message)
	if sendErr != nil && ctx.Err() != nil {
		// the process is stopping, the attempt stays in flight.
		return ctx.Err()
	}

	result := models.NewSendResult(message, sendErr, d.now())
	progress.Record(result, result.SentAt)

	if err := d.checkpoints.Save(ctx, progress); err != nil {
		return err
	}

	event := log.InfoContext(ctx)
	if sendErr != nil {
		event = log.WarnContext(ctx).Err(sendErr)
	}

	event.
		Int("index", progress.CurrentIndex).
		Int("messages", progress.TotalMessages).
		Str("status", result.Status.String()).
		Msg("message processed")

	return nil
}

// finalize writes the archive and removes the completed checkpoint.
func (d *Dispatcher) finalize(ctx context.Context, archive *models.BatchArchive) (*models.BatchArchive, error) {
	if err := d.archives.Save(ctx, archive); err != nil {
		return nil, err
	}

	if err := d.checkpoints.Delete(ctx); err != nil {
		return nil, err
	}

	return archive, nil
}
