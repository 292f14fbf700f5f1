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
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/lukasdietrich/briefsend/internal/models"
)

func TestDispatchOptionsFromViper(t *testing.T) {
	viper.Set("dispatch.pacing.min", "1s")
	viper.Set("dispatch.pacing.max", "2s")
	viper.Set("dispatch.verify", false)
	viper.Set("dispatch.inflight", "confirm")

	expected := DispatchOptions{
		Pacing:   PacingOptions{Min: time.Second, Max: 2 * time.Second},
		Verify:   false,
		InFlight: InFlightConfirm,
	}
	actual := DispatchOptionsFromViper()
	assert.Equal(t, expected, actual)
}

func TestDispatchOptionsFromViperInvalidPolicy(t *testing.T) {
	viper.Set("dispatch.inflight", "sometimes")
	assert.Equal(t, InFlightRetry, DispatchOptionsFromViper().InFlight)
}

func TestTransportConfigFromViper(t *testing.T) {
	viper.Set("transport.host", "smtp.example.com")
	viper.Set("transport.port", 587)
	viper.Set("transport.account", "sales@example.com")
	viper.Set("transport.credential", "hunter2")

	expected := models.TransportConfig{
		Host:       "smtp.example.com",
		Port:       587,
		Account:    "sales@example.com",
		Credential: "hunter2",
	}
	assert.Equal(t, expected, TransportConfigFromViper())
}

func TestTransportOptionsFromViper(t *testing.T) {
	viper.Set("transport.hostname", "mail.example.com")
	viper.Set("transport.timeout", "10s")

	expected := TransportOptions{Hostname: "mail.example.com", Timeout: 10 * time.Second}
	assert.Equal(t, expected, TransportOptionsFromViper())
}

func TestParseInFlightPolicy(t *testing.T) {
	policy, err := ParseInFlightPolicy("retry")
	assert.NoError(t, err)
	assert.Equal(t, InFlightRetry, policy)

	_, err = ParseInFlightPolicy("")
	assert.Error(t, err)
}
