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

import "github.com/spf13/viper"

const (
	defaultSignature = "\n\nBest regards,\n"

	defaultSubjectTemplate = "Hi {{.DecisionMaker}}, Happy {{.Weekday}}! ✨"
	defaultBodyTemplate    = "Hi {{.DecisionMaker}},\n\n" +
		"I hope this email finds you well. I wanted to reach out about {{.Company}}" +
		"{{with .PainPoint}}, especially when it comes to {{.}}{{end}}."
)

func init() {
	viper.SetDefault("outreach.prospects", "prospects.yaml")

	viper.SetDefault("compose.signature", defaultSignature)
	viper.SetDefault("compose.template.subject", defaultSubjectTemplate)
	viper.SetDefault("compose.template.body", defaultBodyTemplate)
}

// OutreachOptions is the configuration of the batch planner.
type OutreachOptions struct {
	Prospects string
	Signature string
}

// OutreachOptionsFromViper reads the planner configuration.
//
// `outreach.prospects` is the yaml file with the recorded collaborator responses per company.
// `compose.signature` is appended to every message body.
func OutreachOptionsFromViper() OutreachOptions {
	return OutreachOptions{
		Prospects: viper.GetString("outreach.prospects"),
		Signature: viper.GetString("compose.signature"),
	}
}

// TemplateOptions holds the templates used when no recorded draft exists for a company.
type TemplateOptions struct {
	Subject string
	Body    string
}

// TemplateOptionsFromViper reads the message templates.
func TemplateOptionsFromViper() TemplateOptions {
	return TemplateOptions{
		Subject: viper.GetString("compose.template.subject"),
		Body:    viper.GetString("compose.template.body"),
	}
}
