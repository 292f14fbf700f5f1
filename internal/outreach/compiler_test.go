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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompiler(t *testing.T, opts TemplateOptions) *TemplateCompiler {
	compiler, err := NewTemplateCompiler(opts)
	require.NoError(t, err)

	// a friday
	compiler.now = func() time.Time { return time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC) }
	return compiler
}

func TestTemplateCompilerDefaults(t *testing.T) {
	compiler := newTestCompiler(t, TemplateOptions{
		Subject: defaultSubjectTemplate,
		Body:    defaultBodyTemplate,
	})

	prospect := DefaultProspect("Acme")
	prospect.DecisionMaker = "Jane"

	draft, err := compiler.Compile(context.Background(), Entry{Company: "Acme"}, prospect)
	require.NoError(t, err)

	assert.Equal(t, "Hi Jane, Happy Friday! ✨", draft.Subject)
	assert.Equal(t,
		"Hi Jane,\n\nI hope this email finds you well. I wanted to reach out about Acme, "+
			"especially when it comes to Standing out in a competitive market.",
		draft.Body)
}

func TestTemplateCompilerRecordedDraft(t *testing.T) {
	compiler := newTestCompiler(t, TemplateOptions{Subject: "unused", Body: "unused"})

	draft, err := compiler.Compile(context.Background(),
		Entry{Company: "Acme", Draft: "```json\n{\"subject\": \"Hey\", \"body\": \"Hello there\"}\n```"},
		DefaultProspect("Acme"))
	require.NoError(t, err)
	assert.Equal(t, &Draft{Subject: "Hey", Body: "Hello there"}, draft)

	_, err = compiler.Compile(context.Background(),
		Entry{Company: "Acme", Draft: "sorry, no draft today"},
		DefaultProspect("Acme"))

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestTemplateCompilerExecutionError(t *testing.T) {
	compiler := newTestCompiler(t, TemplateOptions{Subject: "{{.Unknown}}", Body: "body"})

	_, err := compiler.Compile(context.Background(), Entry{Company: "Acme"}, DefaultProspect("Acme"))

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestNewTemplateCompilerInvalidTemplate(t *testing.T) {
	_, err := NewTemplateCompiler(TemplateOptions{Subject: "{{", Body: "body"})
	assert.Error(t, err)
}
