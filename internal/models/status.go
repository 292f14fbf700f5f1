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

import "fmt"

// RecipientKind tells whether an address reaches a person or a shared company inbox.
type RecipientKind int

const (
	_ RecipientKind = iota
	// KindPersonal is the direct address of a decision maker.
	KindPersonal
	// KindGeneric is a shared address like info@ or contact@.
	KindGeneric
)

// SendStatus is the transport outcome of a single send attempt.
type SendStatus int

const (
	_ SendStatus = iota
	// StatusSuccess means the relay accepted the message.
	StatusSuccess
	// StatusFailed means the send attempt raised a transport level error.
	StatusFailed
)

// BatchStatus is the lifecycle state of a checkpoint.
type BatchStatus int

const (
	_ BatchStatus = iota
	// BatchSending is a batch with messages left to send.
	BatchSending
	// BatchCompleted is a batch where every message has a result.
	BatchCompleted
)

// DeliveryClassification is the reconciled outcome of a send result.
type DeliveryClassification int

const (
	_ DeliveryClassification = iota
	// DeliveryFailed is a message the relay did not accept.
	DeliveryFailed
	// DeliveryBounced is a message accepted by the relay with a matching bounce notification.
	DeliveryBounced
	// DeliveryLikelyDelivered is a message accepted by the relay without a matching bounce within
	// the lookback window. Bounces may still arrive later.
	DeliveryLikelyDelivered
)

var (
	recipientKindNames = map[RecipientKind]string{
		KindPersonal: "personal",
		KindGeneric:  "generic",
	}

	sendStatusNames = map[SendStatus]string{
		StatusSuccess: "success",
		StatusFailed:  "failed",
	}

	batchStatusNames = map[BatchStatus]string{
		BatchSending:   "sending",
		BatchCompleted: "completed",
	}

	classificationNames = map[DeliveryClassification]string{
		DeliveryFailed:          "failed",
		DeliveryBounced:         "bounced",
		DeliveryLikelyDelivered: "likely_delivered",
	}
)

func (k RecipientKind) String() string { return recipientKindNames[k] }

// IsValid reports whether k is one of the defined kinds.
func (k RecipientKind) IsValid() bool {
	_, ok := recipientKindNames[k]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (k RecipientKind) MarshalText() ([]byte, error) { return marshalEnum(recipientKindNames, k) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *RecipientKind) UnmarshalText(b []byte) error {
	return unmarshalEnum(recipientKindNames, k, b)
}

func (s SendStatus) String() string { return sendStatusNames[s] }

// MarshalText implements encoding.TextMarshaler.
func (s SendStatus) MarshalText() ([]byte, error) { return marshalEnum(sendStatusNames, s) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SendStatus) UnmarshalText(b []byte) error { return unmarshalEnum(sendStatusNames, s, b) }

func (s BatchStatus) String() string { return batchStatusNames[s] }

// MarshalText implements encoding.TextMarshaler.
func (s BatchStatus) MarshalText() ([]byte, error) { return marshalEnum(batchStatusNames, s) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *BatchStatus) UnmarshalText(b []byte) error { return unmarshalEnum(batchStatusNames, s, b) }

func (c DeliveryClassification) String() string { return classificationNames[c] }

// MarshalText implements encoding.TextMarshaler.
func (c DeliveryClassification) MarshalText() ([]byte, error) {
	return marshalEnum(classificationNames, c)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *DeliveryClassification) UnmarshalText(b []byte) error {
	return unmarshalEnum(classificationNames, c, b)
}

func marshalEnum[T comparable](names map[T]string, value T) ([]byte, error) {
	name, ok := names[value]
	if !ok {
		return nil, fmt.Errorf("unknown %T value %d", value, any(value))
	}

	return []byte(name), nil
}

func unmarshalEnum[T comparable](names map[T]string, dest *T, b []byte) error {
	for value, name := range names {
		if name == string(b) {
			*dest = value
			return nil
		}
	}

	return fmt.Errorf("unknown %T %q", *dest, b)
}
