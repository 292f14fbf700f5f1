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

import (
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefsend/internal/models"
)

func init() {
	viper.SetDefault("mailbox.host", "")
	viper.SetDefault("mailbox.port", models.ImplicitTLSPortIMAP)
	viper.SetDefault("mailbox.account", "")
	viper.SetDefault("mailbox.credential", "")
	viper.SetDefault("mailbox.folder", "INBOX")

	viper.SetDefault("reconcile.daysback", 7)
}

// MailboxConfigFromViper reads the credentials of the mailbox receiving bounce notifications.
func MailboxConfigFromViper() models.MailboxConfig {
	return models.MailboxConfig{
		Host:       viper.GetString("mailbox.host"),
		Port:       viper.GetInt("mailbox.port"),
		Account:    viper.GetString("mailbox.account"),
		Credential: viper.GetString("mailbox.credential"),
		Folder:     viper.GetString("mailbox.folder"),
	}
}

// ReconcileOptions is the configuration of the reconciler.
type ReconcileOptions struct {
	DaysBack int
}

// ReconcileOptionsFromViper reads the reconciler configuration.
//
// `reconcile.daysback` is the default lookback window in days.
func ReconcileOptionsFromViper() ReconcileOptions {
	return ReconcileOptions{
		DaysBack: viper.GetInt("reconcile.daysback"),
	}
}
