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

package delivery

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPacerFixedDelay(t *testing.T) {
	pacer := NewPacer(DispatchOptions{Pacing: PacingOptions{Min: 3 * time.Second, Max: 3 * time.Second}})
	assert.Equal(t, 3*time.Second, pacer.Delay())

	pacer = NewPacer(DispatchOptions{Pacing: PacingOptions{Min: 3 * time.Second, Max: time.Second}})
	assert.Equal(t, 3*time.Second, pacer.Delay())
}

func TestPacerDelayWithinRange(t *testing.T) {
	pacer := Pacer{
		min:    5 * time.Second,
		max:    10 * time.Second,
		random: rand.New(rand.NewSource(42)),
	}

	for i := 0; i < 1000; i++ {
		delay := pacer.Delay()
		assert.GreaterOrEqual(t, int64(delay), int64(5*time.Second))
		assert.LessOrEqual(t, int64(delay), int64(10*time.Second))
	}
}

func TestPacerWait(t *testing.T) {
	var slept time.Duration

	pacer := Pacer{
		min: time.Minute,
		max: time.Minute,
		sleep: func(ctx context.Context, d time.Duration) error {
			slept = d
			return nil
		},
	}

	assert.NoError(t, pacer.Wait(context.Background()))
	assert.Equal(t, time.Minute, slept)
}

func TestSleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, context.Canceled, sleepContext(ctx, time.Hour))
}

func TestSleepContextFires(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}

func TestWaitUntilPast(t *testing.T) {
	assert.NoError(t, WaitUntil(context.Background(), time.Now().Add(-time.Hour)))
}

func TestWaitUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Equal(t, context.DeadlineExceeded, WaitUntil(ctx, time.Now().Add(time.Hour)))
}
