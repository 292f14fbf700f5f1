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

package shell

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukasdietrich/briefsend/internal/models"
	"github.com/lukasdietrich/briefsend/internal/reconcile"
)

func TestParseSchedule(t *testing.T) {
	var (
		location = time.FixedZone("CET", 3600)
		now      = time.Date(2024, 3, 8, 9, 0, 0, 0, location)
	)

	for _, answer := range []string{"", "now", " NOW ", "2024-03-08 08:00"} {
		schedule, err := parseSchedule(answer, now, location)
		assert.NoError(t, err, answer)
		assert.Nil(t, schedule, answer)
	}

	schedule, err := parseSchedule("2024-03-09 07:30", now, location)
	require.NoError(t, err)
	assert.Equal(t, &models.Schedule{
		SendAt:   time.Date(2024, 3, 9, 7, 30, 0, 0, location),
		Timezone: "CET",
	}, schedule)

	_, err = parseSchedule("tomorrow", now, location)
	assert.ErrorContains(t, err, "invalid send time")
}

func TestIsYes(t *testing.T) {
	for _, answer := range []string{"y", "Y", "yes", " YES "} {
		assert.True(t, isYes(answer), answer)
	}

	for _, answer := range []string{"", "n", "no", "yep", "sure"} {
		assert.False(t, isYes(answer), answer)
	}
}

func TestLookup(t *testing.T) {
	s := NewShell(nil, nil, nil, nil, nil, nil)

	cmd, ok := s.commands.lookup([]string{"batch", "resume"})
	assert.True(t, ok)
	assert.Equal(t, "resume", cmd.name)
	assert.NotNil(t, cmd.action)

	cmd, ok = s.commands.lookup([]string{"suppression"})
	assert.True(t, ok)
	assert.Nil(t, cmd.action)
	assert.Len(t, cmd.children, 2)

	_, ok = s.commands.lookup([]string{"batch", "explode"})
	assert.False(t, ok)

	_, ok = s.commands.lookup(nil)
	assert.False(t, ok)
}

func TestClassificationLines(t *testing.T) {
	reconciledAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)

	report := reconcile.Report{
		Archive: &models.BatchArchive{ReconciledAt: &reconciledAt, LookbackDays: 7},
		Classifications: []reconcile.Classification{
			{
				Result:         models.SendResult{RecipientEmail: "a@example.com", Company: "A", Detail: "Sent"},
				Classification: models.DeliveryLikelyDelivered,
			},
			{
				Result:         models.SendResult{RecipientEmail: "c@example.com", Company: "C", Detail: "550 no such user"},
				Classification: models.DeliveryFailed,
			},
		},
		Summary: reconcile.ClassificationSummary{Failed: 1, LikelyDelivered: 1},
		Notice:  reconcile.PresumptiveDeliveryNotice,
	}

	lines := classificationLines(&report)

	assert.Equal(t, []string{
		"likely delivered a@example.com                    A",
		"FAILED           c@example.com                    C  (550 no such user)",
		"",
		"failed=1 bounced=0 likely_delivered=1",
		"Bounces as of 2024-03-10 12:00:00, looking back 7 days.",
		reconcile.PresumptiveDeliveryNotice,
	}, lines)
}
