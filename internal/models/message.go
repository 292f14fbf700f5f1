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
	"errors"
	"time"
)

var (
	// ErrUnknownRecipientKind is returned for a message without a known recipient kind.
	ErrUnknownRecipientKind = errors.New("unknown recipient kind")
	// ErrDuplicateRecipient is the reason for dropping a message to an address already part of a
	// batch.
	ErrDuplicateRecipient = errors.New("address already part of the batch")
)

// OutboundMessage is one message to send. It is created by the planner and never changed once it
// is part of a batch.
type OutboundMessage struct {
	Company        string        `json:"company"`
	RecipientEmail string        `json:"recipient_email"`
	RecipientKind  RecipientKind `json:"recipient_kind"`
	DecisionMaker  string        `json:"decision_maker"`
	Subject        string        `json:"subject"`
	Body           string        `json:"body"`
}

// Validate checks that the message has a sendable address and a known recipient kind.
func (m OutboundMessage) Validate() error {
	if _, err := Parse(m.RecipientEmail); err != nil {
		return err
	}

	if !m.RecipientKind.IsValid() {
		return ErrUnknownRecipientKind
	}

	return nil
}

// DroppedMessage is a message left out of a batch snapshot.
type DroppedMessage struct {
	Message OutboundMessage
	Reason  error
}

// SendResult is the outcome of one send attempt.
type SendResult struct {
	Company        string        `json:"company"`
	RecipientEmail string        `json:"recipient_email"`
	RecipientKind  RecipientKind `json:"recipient_kind"`
	Status         SendStatus    `json:"status"`
	Detail         string        `json:"detail"`
	SentAt         time.Time     `json:"sent_at"`
}

// DetailSent is the detail of a successful send result.
const DetailSent = "Sent"

// NewSendResult creates the result for a message. A nil error is a success.
func NewSendResult(message OutboundMessage, err error, sentAt time.Time) SendResult {
	result := SendResult{
		Company:        message.Company,
		RecipientEmail: message.RecipientEmail,
		RecipientKind:  message.RecipientKind,
		Status:         StatusSuccess,
		Detail:         DetailSent,
		SentAt:         sentAt,
	}

	if err != nil {
		result.Status = StatusFailed
		result.Detail = err.Error()
	}

	return result
}
