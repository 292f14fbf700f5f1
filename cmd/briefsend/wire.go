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

//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/lukasdietrich/briefsend/internal/crypto"
	"github.com/lukasdietrich/briefsend/internal/database"
	"github.com/lukasdietrich/briefsend/internal/delivery"
	"github.com/lukasdietrich/briefsend/internal/outreach"
	"github.com/lukasdietrich/briefsend/internal/reconcile"
	"github.com/lukasdietrich/briefsend/internal/shell"
	"github.com/lukasdietrich/briefsend/internal/storage"
)

var wireSet = wire.NewSet(
	wire.Struct(new(shellCommand), "*"),
	wire.Struct(new(sendCommand), "*"),
	wire.Struct(new(resumeCommand), "*"),
	wire.Struct(new(scanCommand), "*"),

	crypto.WireSet,
	storage.WireSet,
	database.WireSet,
	delivery.WireSet,
	outreach.WireSet,
	reconcile.WireSet,
	shell.WireSet,
)

func newShellCommand() (*shellCommand, func(), error) {
	panic(wire.Build(wireSet))
}

func newSendCommand() (*sendCommand, func(), error) {
	panic(wire.Build(wireSet))
}

func newResumeCommand() (*resumeCommand, func(), error) {
	panic(wire.Build(wireSet))
}

func newScanCommand() (*scanCommand, func(), error) {
	panic(wire.Build(wireSet))
}
