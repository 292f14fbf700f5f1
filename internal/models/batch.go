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

package models

import (
	"fmt"
	"time"
)

// Schedule delays the first send of a batch until a point in time.
type Schedule struct {
	SendAt   time.Time `json:"send_at"`
	Timezone string    `json:"timezone,omitempty"`
}

// BatchProgress is the durable checkpoint of a dispatch run.
type BatchProgress struct {
	ID            string            `json:"id"`
	Status        BatchStatus       `json:"status"`
	StartedAt     time.Time         `json:"started_at"`
	LastUpdated   time.Time         `json:"last_updated"`
	TotalMessages int               `json:"total_messages"`
	AllMessages   []OutboundMessage `json:"all_messages"`
	ResultsSoFar  []SendResult      `json:"results_so_far"`
	CurrentIndex  int               `json:"current_index"`
	SuccessCount  int               `json:"success_count"`
	FailCount     int               `json:"fail_count"`
	// InFlight is the recipient of a send attempt that has started but not yet been recorded.
	InFlight string    `json:"in_flight,omitempty"`
	Schedule *Schedule `json:"schedule,omitempty"`
	// ArchiveID is set together with BatchCompleted and names the archive record of this batch.
	ArchiveID string `json:"archive_id,omitempty"`
}

// NewBatchProgress snapshots the messages of a new batch. Messages that fail validation and messages
// to an address that is already part of the batch are returned as dropped instead of being added.
func NewBatchProgress(id string, messages []OutboundMessage, now time.Time) (*BatchProgress, []DroppedMessage) {
	var (
		seen     = NewAddressSet()
		snapshot = make([]OutboundMessage, 0, len(messages))
		dropped  []DroppedMessage
	)

	for _, message := range messages {
		if err := message.Validate(); err != nil {
			dropped = append(dropped, DroppedMessage{Message: message, Reason: err})
			continue
		}

		if !seen.Add(message.RecipientEmail) {
			dropped = append(dropped, DroppedMessage{Message: message, Reason: ErrDuplicateRecipient})
			continue
		}

		snapshot = append(snapshot, message)
	}

	progress := BatchProgress{
		ID:            id,
		Status:        BatchSending,
		StartedAt:     now,
		LastUpdated:   now,
		TotalMessages: len(snapshot),
		AllMessages:   snapshot,
		ResultsSoFar:  []SendResult{},
	}

	return &progress, dropped
}

// Pending returns all messages without a result, in batch order.
func (p *BatchProgress) Pending() []OutboundMessage {
	done := NewAddressSet()
	for _, result := range p.ResultsSoFar {
		done.Add(result.RecipientEmail)
	}

	var pending []OutboundMessage

	for _, message := range p.AllMessages {
		if !done.Contains(message.RecipientEmail) {
			pending = append(pending, message)
		}
	}

	return pending
}

// HasResult reports whether a result for the address was already recorded.
func (p *BatchProgress) HasResult(address string) bool {
	for _, result := range p.ResultsSoFar {
		if SameAddress(result.RecipientEmail, address) {
			return true
		}
	}

	return false
}

// Record appends a result and updates the counters.
func (p *BatchProgress) Record(result SendResult, now time.Time) {
	p.ResultsSoFar = append(p.ResultsSoFar, result)
	p.InFlight = ""
	p.LastUpdated = now

	switch result.Status {
	case StatusSuccess:
		p.SuccessCount++
	case StatusFailed:
		p.FailCount++
	}

	for i, message := range p.AllMessages {
		if SameAddress(message.RecipientEmail, result.RecipientEmail) && i+1 > p.CurrentIndex {
			p.CurrentIndex = i + 1
		}
	}
}

// IsComplete reports whether every message of the batch has exactly one result.
func (p *BatchProgress) IsComplete() bool {
	return len(p.ResultsSoFar) == len(p.AllMessages) && len(p.Pending()) == 0
}

// BatchArchive is the permanent record of a completed batch.
type BatchArchive struct {
	ID           string            `json:"id"`
	BatchID      string            `json:"batch_id"`
	StartedAt    time.Time         `json:"started_at"`
	CompletedAt  time.Time         `json:"completed_at"`
	Messages     []OutboundMessage `json:"messages"`
	Results      []SendResult      `json:"results"`
	Schedule     *Schedule         `json:"schedule,omitempty"`
	Bounces      []BounceRecord    `json:"bounces"`
	ReconciledAt *time.Time        `json:"reconciled_at,omitempty"`
	LookbackDays int               `json:"lookback_days,omitempty"`
}

// ArchiveIDLayout formats the completion timestamp of an archive into its id. Ids sort in
// chronological order.
const ArchiveIDLayout = "20060102T150405.000000000Z"

// NewBatchArchive creates the archive record of a completed batch.
func NewBatchArchive(progress *BatchProgress, completedAt time.Time) *BatchArchive {
	completedAt = completedAt.UTC()

	return &BatchArchive{
		ID:          completedAt.Format(ArchiveIDLayout),
		BatchID:     progress.ID,
		StartedAt:   progress.StartedAt,
		CompletedAt: completedAt,
		Messages:    progress.AllMessages,
		Results:     progress.ResultsSoFar,
		Schedule:    progress.Schedule,
		Bounces:     []BounceRecord{},
	}
}

// ArchiveSummary counts the outcomes of an archived batch.
type ArchiveSummary struct {
	Total   int
	Success int
	Failed  int
	Bounced int
}

// Summary counts the results of the archive. Bounced counts successful results with a matching
// bounce record.
func (a *BatchArchive) Summary() ArchiveSummary {
	bounced := NewAddressSet()
	for _, bounce := range a.Bounces {
		bounced.Add(bounce.BouncedEmail)
	}

	summary := ArchiveSummary{Total: len(a.Results)}

	for _, result := range a.Results {
		switch result.Status {
		case StatusSuccess:
			summary.Success++

			if bounced.Contains(result.RecipientEmail) {
				summary.Bounced++
			}
		case StatusFailed:
			summary.Failed++
		}
	}

	return summary
}

// SummaryLine is the one line description of an archive used in listings.
func (a *BatchArchive) SummaryLine() string {
	s := a.Summary()

	return fmt.Sprintf("%s  total=%d success=%d failed=%d bounced=%d",
		a.CompletedAt.Local().Format("2006-01-02 15:04:05"),
		s.Total, s.Success, s.Failed, s.Bounced)
}
