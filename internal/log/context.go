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

package log

import (
	"context"

	"github.com/rs/zerolog"
)

type fieldBatch struct{}
type fieldRecipient struct{}
type fieldOrigin struct{}
type fieldCommand struct{}

// WithBatch adds the batch identifier to the context.
func WithBatch(ctx context.Context, batch string) context.Context {
	return context.WithValue(ctx, fieldBatch{}, batch)
}

// WithRecipient adds the recipient address currently being processed to the context.
func WithRecipient(ctx context.Context, recipient string) context.Context {
	return context.WithValue(ctx, fieldRecipient{}, recipient)
}

// WithOrigin adds the origin of processing to the context.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, fieldOrigin{}, origin)
}

// WithCommand adds the command name to the context.
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, fieldCommand{}, command)
}

// appendContextFields adds defined fields in the context to the log event.
func appendContextFields(ctx context.Context, event *zerolog.Event) *zerolog.Event {
	if batch, ok := ctx.Value(fieldBatch{}).(string); ok {
		event.Str("batch", batch)
	}

	if recipient, ok := ctx.Value(fieldRecipient{}).(string); ok {
		event.Str("recipient", recipient)
	}

	if origin, ok := ctx.Value(fieldOrigin{}).(string); ok {
		event.Str("origin", origin)
	}

	if command, ok := ctx.Value(fieldCommand{}).(string); ok {
		event.Str("command", command)
	}

	return event
}
