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

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefsend/internal/log"
)

const usageText = `
Usage:
  briefsend [OPTIONS] COMMAND

  Send outreach batches that survive interruption.

Version:
  %s

Commands:
  shell     Start an interactive shell to plan, send and reconcile batches
  send      Plan a batch from the prospects file and send it
  resume    Continue an interrupted batch
  scan      Scan the mailbox for bounces of a completed batch

Options:
%s
`

var (
	// Version is set at compile-time.
	Version string
)

func init() {
	viper.SetDefault("log.level", "info")
}

func main() {
	var configFilename string

	flags := pflag.NewFlagSet("briefsend", pflag.ContinueOnError)
	flags.StringVarP(&configFilename, "config", "c", "", "Path to a configuration file")
	flags.Bool("confirm-inflight", false, "Send an interrupted message again without asking (resume)")
	flags.String("archive", "", "Id of the batch to scan, defaults to the newest (scan)")
	flags.Int("days", 0, "Number of days to look back for bounces (scan)")
	flags.Usage = printUsage(flags)

	if err := flags.Parse(os.Args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}

		log.Fatal().Err(err).Msg("invalid arguments")
	}

	bindFlag(flags, "dispatch.confirminflight", "confirm-inflight")
	bindFlag(flags, "reconcile.archive", "archive")
	bindFlag(flags, "reconcile.days", "days")

	switch commandName := flags.Arg(1); commandName {
	case "shell", "send", "resume", "scan":
		setupConfig(configFilename)
		setupLogger(commandName)
		printConfig()
		runCommand(commandName)
	default:
		flags.Usage()
	}
}

type command interface {
	run() error
}

func runCommand(commandName string) {
	var (
		cmd     command
		cleanup func()
		err     error
	)

	switch commandName {
	case "shell":
		cmd, cleanup, err = newShellCommand()
	case "send":
		cmd, cleanup, err = newSendCommand()
	case "resume":
		cmd, cleanup, err = newResumeCommand()
	case "scan":
		cmd, cleanup, err = newScanCommand()
	}

	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize the application")
	}

	err = cmd.run()
	cleanup()

	if err != nil {
		log.Fatal().Err(err).Str("command", commandName).Msg("command failed")
	}
}

func bindFlag(flags *pflag.FlagSet, key, name string) {
	if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
		log.Fatal().Err(err).Str("flag", name).Msg("could not bind flag")
	}
}

func printUsage(flags *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, usageText,
			Version,
			flags.FlagUsages())
	}
}

func setupLogger(commandName string) {
	if commandName == "shell" {
		log.UseConsole()
	}

	level := viper.GetString("log.level")
	if err := log.SetLevel(level); err != nil {
		log.Fatal().Err(err).Msg("unknown log level")
	}

	log.Info().Str("level", level).Msg("setting log level")
}

func setupConfig(filename string) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	viper.SetTypeByDefaultValue(true)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetEnvPrefix("BRIEFSEND")

	if filename != "" {
		readConfig(filename)
	} else {
		log.Info().Msg("no config file provided. using environment only")
	}
}

func readConfig(filename string) {
	log.Info().Str("filename", filename).Msg("loading configuration")
	viper.SetConfigFile(filename)

	if err := viper.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			log.Warn().Err(err).Msg("configuration file missing")
		} else {
			log.Fatal().Err(err).Msg("could not load configuration")
		}
	}
}

func printConfig() {
	keys := viper.AllKeys()
	sort.Strings(keys)

	for _, key := range keys {
		if strings.HasSuffix(key, ".credential") {
			log.Debug().Str("key", key).Msg("config value hidden")
			continue
		}

		v, err := json.Marshal(viper.Get(key))
		if err != nil {
			continue
		}

		log.Debug().Str("key", key).RawJSON("value", v).Msg("config value")
	}
}
