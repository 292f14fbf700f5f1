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
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	defaultDecisionMaker = "Team"
	defaultIndustry      = "Business"
	defaultPainPoint     = "Standing out in a competitive market"
)

// Prospect is the research record of a company produced by the resolver.
type Prospect struct {
	Company                string   `json:"company"`
	Country                string   `json:"country"`
	Industry               string   `json:"industry"`
	DecisionMaker          string   `json:"decision_maker"`
	PersonalEmail          string   `json:"personal_email"`
	GenericEmail           string   `json:"generic_email"`
	StrategyNotes          string   `json:"strategy_notes"`
	PainPoint              string   `json:"pain_point"`
	ProductRecommendations []string `json:"product_recommendations"`
}

// Draft is a message drafted by the compiler, without signature.
type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ParseError is returned by collaborators whose response could not be decoded. The caller
// substitutes a default.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse collaborator response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DecodeProspect decodes a json research response. Missing fields are filled from the defaults of
// the company.
func DecodeProspect(company, raw string) (*Prospect, error) {
	var prospect Prospect

	if err := decodeResponse(raw, &prospect); err != nil {
		return nil, err
	}

	fallback := DefaultProspect(company)
	prospect.Company = company

	if prospect.DecisionMaker == "" {
		prospect.DecisionMaker = fallback.DecisionMaker
	}

	if prospect.GenericEmail == "" {
		prospect.GenericEmail = fallback.GenericEmail
	}

	if prospect.Industry == "" {
		prospect.Industry = fallback.Industry
	}

	if prospect.PainPoint == "" {
		prospect.PainPoint = fallback.PainPoint
	}

	prospect.PersonalEmail = strings.TrimSpace(prospect.PersonalEmail)
	prospect.GenericEmail = strings.TrimSpace(prospect.GenericEmail)

	return &prospect, nil
}

// DecodeDraft decodes a json draft response. A draft without subject or body is invalid.
func DecodeDraft(raw string) (*Draft, error) {
	var draft Draft

	if err := decodeResponse(raw, &draft); err != nil {
		return nil, err
	}

	if strings.TrimSpace(draft.Subject) == "" || strings.TrimSpace(draft.Body) == "" {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("draft without subject or body")}
	}

	return &draft, nil
}

func decodeResponse(raw string, v any) error {
	if err := json.Unmarshal([]byte(stripFences(raw)), v); err != nil {
		return &ParseError{Raw: raw, Err: err}
	}

	return nil
}

// stripFences removes a markdown code fence and its language tag around a response.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		parts := strings.Split(raw, "```")
		raw = strings.TrimPrefix(parts[1], "json")
	}

	return strings.TrimSpace(raw)
}

// DefaultProspect is the research record used when the resolver fails.
func DefaultProspect(company string) Prospect {
	return Prospect{
		Company:       company,
		Industry:      defaultIndustry,
		DecisionMaker: defaultDecisionMaker,
		GenericEmail:  "info@" + slug(company) + ".com",
		PainPoint:     defaultPainPoint,
	}
}

// FallbackDraft is the fixed draft used when the compiler fails.
func FallbackDraft(prospect Prospect, weekday time.Weekday) Draft {
	return Draft{
		Subject: fmt.Sprintf("Hi %s, Happy %s! ✨", prospect.DecisionMaker, weekday),
		Body: fmt.Sprintf("Hi %s,\n\nI hope this email finds you well. I wanted to reach out about %s...",
			prospect.DecisionMaker, prospect.Company),
	}
}

// AppendSignature trims trailing whitespace of the body and appends the signature block.
func AppendSignature(body, signature string) string {
	return strings.TrimRight(body, " \t\r\n") + signature
}

func slug(company string) string {
	return strings.ReplaceAll(strings.ToLower(company), " ", "")
}
