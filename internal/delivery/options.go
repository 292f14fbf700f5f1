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
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefsend/internal/log"
	"github.com/lukasdietrich/briefsend/internal/models"
)

func init() {
	viper.SetDefault("transport.host", "")
	viper.SetDefault("transport.port", models.ImplicitTLSPortSMTP)
	viper.SetDefault("transport.account", "")
	viper.SetDefault("transport.credential", "")
	viper.SetDefault("transport.hostname", "localhost")
	viper.SetDefault("transport.timeout", "30s")

	viper.SetDefault("dispatch.pacing.min", "5s")
	viper.SetDefault("dispatch.pacing.max", "10s")
	viper.SetDefault("dispatch.verify", true)
	viper.SetDefault("dispatch.inflight", string(InFlightRetry))

	viper.SetDefault("compose.sender.name", "")
	viper.SetDefault("compose.image", "")
}

// InFlightPolicy decides how a resumed batch treats a message whose send attempt started but
// never got a result.
type InFlightPolicy string

const (
	// InFlightRetry sends the message again and warns the operator about a possible duplicate.
	InFlightRetry InFlightPolicy = "retry"
	// InFlightConfirm refuses to resume until the operator confirms the retry.
	InFlightConfirm InFlightPolicy = "confirm"
)

// ParseInFlightPolicy parses the name of a policy.
func ParseInFlightPolicy(name string) (InFlightPolicy, error) {
	switch policy := InFlightPolicy(name); policy {
	case InFlightRetry, InFlightConfirm:
		return policy, nil
	default:
		return "", fmt.Errorf("unknown in-flight policy %q", name)
	}
}

// PacingOptions is the range of the delay between two sends.
type PacingOptions struct {
	Min time.Duration
	Max time.Duration
}

// DispatchOptions is the configuration of the dispatcher.
type DispatchOptions struct {
	Pacing   PacingOptions
	Verify   bool
	InFlight InFlightPolicy
}

// DispatchOptionsFromViper reads the dispatcher configuration.
//
// `dispatch.pacing.min` and `dispatch.pacing.max` bound the random delay between two sends.
// `dispatch.verify` enables the reachability probe of the relay before a batch starts.
// `dispatch.inflight` is either "retry" or "confirm".
func DispatchOptionsFromViper() DispatchOptions {
	policy, err := ParseInFlightPolicy(viper.GetString("dispatch.inflight"))
	if err != nil {
		log.Warn().
			Err(err).
			Str("fallback", string(InFlightRetry)).
			Msg("invalid dispatch.inflight")

		policy = InFlightRetry
	}

	return DispatchOptions{
		Pacing: PacingOptions{
			Min: viper.GetDuration("dispatch.pacing.min"),
			Max: viper.GetDuration("dispatch.pacing.max"),
		},
		Verify:   viper.GetBool("dispatch.verify"),
		InFlight: policy,
	}
}

// TransportOptions is the configuration of the smtp client which does not belong to the
// credentials of a relay.
type TransportOptions struct {
	Hostname string
	Timeout  time.Duration
}

// TransportOptionsFromViper reads the smtp client configuration.
//
// `transport.hostname` is the name sent with EHLO.
// `transport.timeout` limits the duration of a single smtp session.
func TransportOptionsFromViper() TransportOptions {
	return TransportOptions{
		Hostname: viper.GetString("transport.hostname"),
		Timeout:  viper.GetDuration("transport.timeout"),
	}
}

// TransportConfigFromViper reads the credentials of the relay.
func TransportConfigFromViper() models.TransportConfig {
	return models.TransportConfig{
		Host:       viper.GetString("transport.host"),
		Port:       viper.GetInt("transport.port"),
		Account:    viper.GetString("transport.account"),
		Credential: viper.GetString("transport.credential"),
	}
}

// ComposeOptions is the configuration of the mime composer.
type ComposeOptions struct {
	SenderName string
	Image      string
}

// ComposeOptionsFromViper reads the composer configuration.
//
// `compose.sender.name` is the display name of the From header.
// `compose.image` is the path of an optional image embedded below the html body.
func ComposeOptionsFromViper() ComposeOptions {
	return ComposeOptions{
		SenderName: viper.GetString("compose.sender.name"),
		Image:      viper.GetString("compose.image"),
	}
}
