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
	"strings"
	"text/template"
	"time"
)

// Compiler drafts the message for a prospect. A malformed response fails with a *ParseError.
type Compiler interface {
	Compile(ctx context.Context, entry Entry, prospect Prospect) (*Draft, error)
}

// TemplateCompiler uses the draft recorded in the prospects file and renders the configured
// templates for companies without one.
type TemplateCompiler struct {
	subject *template.Template
	body    *template.Template
	now     func() time.Time
}

// templateData is available in the subject and body templates.
type templateData struct {
	Prospect
	Weekday string
}

// NewTemplateCompiler parses the templates.
func NewTemplateCompiler(opts TemplateOptions) (*TemplateCompiler, error) {
	subject, err := template.New("subject").Option("missingkey=error").Parse(opts.Subject)
	if err != nil {
		return nil, err
	}

	body, err := template.New("body").Option("missingkey=error").Parse(opts.Body)
	if err != nil {
		return nil, err
	}

	return &TemplateCompiler{
		subject: subject,
		body:    body,
		now:     time.Now,
	}, nil
}

func (c *TemplateCompiler) Compile(ctx context.Context, entry Entry, prospect Prospect) (*Draft, error) {
	if strings.TrimSpace(entry.Draft) != "" {
		return DecodeDraft(entry.Draft)
	}

	data := templateData{
		Prospect: prospect,
		Weekday:  c.now().Weekday().String(),
	}

	subject, err := render(c.subject, data)
	if err != nil {
		return nil, err
	}

	body, err := render(c.body, data)
	if err != nil {
		return nil, err
	}

	return &Draft{Subject: subject, Body: body}, nil
}

func render(t *template.Template, data templateData) (string, error) {
	var b strings.Builder

	if err := t.Execute(&b, data); err != nil {
		return "", &ParseError{Raw: t.Root.String(), Err: err}
	}

	return strings.TrimSpace(b.String()), nil
}
