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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	for _, tc := range []struct {
		raw      string
		expected string
	}{
		{raw: `{"a":1}`, expected: `{"a":1}`},
		{raw: "  ```json\n{\"a\":1}\n```  ", expected: `{"a":1}`},
		{raw: "```\n{\"a\":1}\n```", expected: `{"a":1}`},
		{raw: "```", expected: ""},
	} {
		assert.Equal(t, tc.expected, stripFences(tc.raw), tc.raw)
	}
}

func TestDecodeProspect(t *testing.T) {
	raw := "```json\n" + `{
		"decision_maker": "Jane Doe",
		"personal_email": " jane@acme.com ",
		"generic_email": "hello@acme.com",
		"country": "DE",
		"product_recommendations": ["bags", "boxes"]
	}` + "\n```"

	prospect, err := DecodeProspect("Acme Corp", raw)
	require.NoError(t, err)

	assert.Equal(t, &Prospect{
		Company:                "Acme Corp",
		Country:                "DE",
		Industry:               "Business",
		DecisionMaker:          "Jane Doe",
		PersonalEmail:          "jane@acme.com",
		GenericEmail:           "hello@acme.com",
		PainPoint:              "Standing out in a competitive market",
		ProductRecommendations: []string{"bags", "boxes"},
	}, prospect)
}

func TestDecodeProspectMalformed(t *testing.T) {
	prospect, err := DecodeProspect("Acme Corp", "I could not find anything, sorry!")
	assert.Nil(t, prospect)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "I could not find anything, sorry!", parseErr.Raw)
	assert.Contains(t, parseErr.Error(), "could not parse collaborator response")
}

func TestDefaultProspect(t *testing.T) {
	assert.Equal(t, Prospect{
		Company:       "Acme Big Corp",
		Industry:      "Business",
		DecisionMaker: "Team",
		GenericEmail:  "info@acmebigcorp.com",
		PainPoint:     "Standing out in a competitive market",
	}, DefaultProspect("Acme Big Corp"))
}

func TestDecodeDraft(t *testing.T) {
	draft, err := DecodeDraft(`{"subject": "Hello", "body": "Hi Jane"}`)
	require.NoError(t, err)
	assert.Equal(t, &Draft{Subject: "Hello", Body: "Hi Jane"}, draft)

	for _, raw := range []string{`{"subject": "Hello"}`, `{"subject": "Hello", "body": "Hi"`, ""} {
		draft, err := DecodeDraft(raw)
		assert.Nil(t, draft, raw)

		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr, raw)
	}
}

func TestFallbackDraft(t *testing.T) {
	draft := FallbackDraft(DefaultProspect("Acme"), time.Friday)

	assert.Equal(t, "Hi Team, Happy Friday! ✨", draft.Subject)
	assert.Equal(t, "Hi Team,\n\nI hope this email finds you well. I wanted to reach out about Acme...", draft.Body)
}

func TestAppendSignature(t *testing.T) {
	assert.Equal(t, "Hi Jane\n\nBest regards,\n", AppendSignature("Hi Jane \n\n", "\n\nBest regards,\n"))
}
