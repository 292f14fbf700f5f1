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

package outreach

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/afero"

	"github.com/lukasdietrich/briefsend/internal/database"
	"github.com/lukasdietrich/briefsend/internal/log"
	"github.com/lukasdietrich/briefsend/internal/models"
)

// BatchContext carries everything the operator prepared for the next batch. It replaces any
// session state: nothing of it survives a restart, only the checkpoint of a started batch does.
type BatchContext struct {
	Prospects []Prospect
	Messages  []models.OutboundMessage
	// Suppressed are messages dropped because the recipient bounced before.
	Suppressed []models.OutboundMessage
	// Duplicates are messages dropped because another message of the batch reaches the same
	// recipient.
	Duplicates []models.OutboundMessage
	// Defaulted lists the companies for which a collaborator default was substituted.
	Defaulted []string
	Schedule  *models.Schedule
}

// Planner turns a prospects file into the messages of a batch.
type Planner struct {
	fs           afero.Fs
	conn         database.Conn
	suppressions database.SuppressionDao
	resolver     Resolver
	compiler     Compiler
	opts         OutreachOptions
	now          func() time.Time
}

// NewPlanner creates a new Planner.
func NewPlanner(
	fs afero.Fs,
	conn database.Conn,
	suppressions database.SuppressionDao,
	resolver Resolver,
	compiler Compiler,
	opts OutreachOptions,
) *Planner {
	return &Planner{
		fs:           fs,
		conn:         conn,
		suppressions: suppressions,
		resolver:     resolver,
		compiler:     compiler,
		opts:         opts,
		now:          time.Now,
	}
}

// Load reads the configured prospects file.
func (p *Planner) Load() (*ProspectFile, error) {
	return ReadProspectFile(p.fs, p.opts.Prospects)
}

// Plan resolves and drafts a message for every selected address of every included company.
// Collaborator failures are replaced by defaults and never abort planning.
func (p *Planner) Plan(ctx context.Context, file *ProspectFile) (*BatchContext, error) {
	suppressed, err := p.suppressedAddresses(ctx)
	if err != nil {
		return nil, err
	}

	var (
		batch   BatchContext
		seen    = models.NewAddressSet()
		weekday = p.now().Weekday()
	)

	for _, entry := range file.Entries {
		if !entry.Included() {
			continue
		}

		ctx := log.WithOrigin(ctx, "planner")
		defaulted := false

		prospect, err := p.resolver.Resolve(ctx, entry)
		if err != nil {
			logCollaboratorError(ctx, err, entry.Company, "resolver")

			fallback := DefaultProspect(entry.Company)
			prospect = &fallback
			defaulted = true
		}

		batch.Prospects = append(batch.Prospects, *prospect)

		recipients := selectRecipients(entry, *prospect)
		if len(recipients) == 0 {
			log.WarnContext(ctx).
				Str("company", entry.Company).
				Msg("company has no selected recipient")

			continue
		}

		draft, err := p.compiler.Compile(ctx, entry, *prospect)
		if err != nil {
			logCollaboratorError(ctx, err, entry.Company, "compiler")

			fallback := FallbackDraft(*prospect, weekday)
			draft = &fallback
			defaulted = true
		}

		if defaulted {
			batch.Defaulted = append(batch.Defaulted, entry.Company)
		}

		for _, recipient := range recipients {
			message := models.OutboundMessage{
				Company:        prospect.Company,
				RecipientEmail: recipient.address,
				RecipientKind:  recipient.kind,
				DecisionMaker:  prospect.DecisionMaker,
				Subject:        draft.Subject,
				Body:           AppendSignature(draft.Body, p.opts.Signature),
			}

			switch {
			case suppressed.Contains(message.RecipientEmail):
				batch.Suppressed = append(batch.Suppressed, message)
			case !seen.Add(message.RecipientEmail):
				batch.Duplicates = append(batch.Duplicates, message)
			default:
				batch.Messages = append(batch.Messages, message)
			}
		}
	}

	log.InfoContext(ctx).
		Int("messages", len(batch.Messages)).
		Int("suppressed", len(batch.Suppressed)).
		Int("duplicates", len(batch.Duplicates)).
		Int("defaulted", len(batch.Defaulted)).
		Msg("batch planned")

	return &batch, nil
}

func (p *Planner) suppressedAddresses(ctx context.Context) (*models.AddressSet, error) {
	suppressionSlice, err := p.suppressions.FindAll(ctx, p.conn)
	if err != nil {
		return nil, err
	}

	set := models.NewAddressSet()
	for _, suppression := range suppressionSlice {
		set.Add(suppression.Address)
	}

	return set, nil
}

type recipient struct {
	address string
	kind    models.RecipientKind
}

// selectRecipients returns the personal address before the generic one. A generic address equal
// to the personal one is skipped.
func selectRecipients(entry Entry, prospect Prospect) []recipient {
	var recipients []recipient

	if entry.SendPersonal && prospect.PersonalEmail != "" {
		recipients = append(recipients, recipient{prospect.PersonalEmail, models.KindPersonal})
	}

	if entry.Generic() && prospect.GenericEmail != "" &&
		!(entry.SendPersonal && models.SameAddress(prospect.GenericEmail, prospect.PersonalEmail)) {
		recipients = append(recipients, recipient{prospect.GenericEmail, models.KindGeneric})
	}

	return recipients
}

func logCollaboratorError(ctx context.Context, err error, company, collaborator string) {
	event := log.WarnContext(ctx).
		Err(err).
		Str("company", company).
		Str("collaborator", collaborator)

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		event = event.Str("response", parseErr.Raw)
	}

	event.Msg("collaborator failed, using default")
}
