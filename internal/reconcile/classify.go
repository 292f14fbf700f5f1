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

package reconcile

import "github.com/lukasdietrich/briefsend/internal/models"

// PresumptiveDeliveryNotice explains the limits of the likely delivered classification to the
// operator.
const PresumptiveDeliveryNotice = "likely delivered means the relay accepted the message and no " +
	"bounce notification arrived within the lookback window. Bounces may arrive later and some " +
	"servers never send them."

// Classification is the reconciled outcome of one send result.
type Classification struct {
	Result         models.SendResult
	Classification models.DeliveryClassification
}

// Classify assigns exactly one classification to every result. Failed results stay failed,
// successful results with a matching bounce record are bounced and the rest is likely delivered.
func Classify(results []models.SendResult, bounces []models.BounceRecord) []Classification {
	bounced := models.NewAddressSet()
	for _, bounce := range bounces {
		bounced.Add(bounce.BouncedEmail)
	}

	classifications := make([]Classification, len(results))

	for i, result := range results {
		classification := models.DeliveryLikelyDelivered

		switch {
		case result.Status == models.StatusFailed:
			classification = models.DeliveryFailed
		case bounced.Contains(result.RecipientEmail):
			classification = models.DeliveryBounced
		}

		classifications[i] = Classification{
			Result:         result,
			Classification: classification,
		}
	}

	return classifications
}

// ClassificationSummary counts classifications.
type ClassificationSummary struct {
	Failed          int
	Bounced         int
	LikelyDelivered int
}

// Summarize counts the classifications by kind.
func Summarize(classifications []Classification) ClassificationSummary {
	var summary ClassificationSummary

	for _, c := range classifications {
		switch c.Classification {
		case models.DeliveryFailed:
			summary.Failed++
		case models.DeliveryBounced:
			summary.Bounced++
		case models.DeliveryLikelyDelivered:
			summary.LikelyDelivered++
		}
	}

	return summary
}
