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
	"time"
)

// Pacer waits a random duration between two sends.
type Pacer struct {
	min    time.Duration
	max    time.Duration
	random *rand.Rand
	sleep  func(context.Context, time.Duration) error
}

// NewPacer creates a new Pacer. A range with max <= min results in a fixed delay of min.
func NewPacer(opts DispatchOptions) *Pacer {
	return &Pacer{
		min:    opts.Pacing.Min,
		max:    opts.Pacing.Max,
		random: rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:  sleepContext,
	}
}

// Delay draws the next delay uniformly from the configured range.
func (p *Pacer) Delay() time.Duration {
	if p.max <= p.min {
		return p.min
	}

	return p.min + time.Duration(p.random.Int63n(int64(p.max-p.min)+1))
}

// Wait blocks for the next delay or until the context is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.sleep(ctx, p.Delay())
}

// WaitUntil blocks until the point in time is reached or the context is done. A point in the past
// returns immediately.
func WaitUntil(ctx context.Context, until time.Time) error {
	return sleepContext(ctx, time.Until(until))
}

// sleepContext is a single cancellable timer firing once.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
