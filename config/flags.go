/*
 *  Copyright (C) 2017 gyee authors
 *
 *  This file is part of the gyee library.
 *
 *  the gyee library is free software: you can redistribute it and/or modify
 *  it under the terms of the GNU General Public License as published by
 *  the Free Software Foundation, either version 3 of the License, or
 *  (at your option) any later version.
 *
 *  the gyee library is distributed in the hope that it will be useful,
 *  but WITHOUT ANY WARRANTY; without even the implied warranty of
 *  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 *  GNU General Public License for more details.
 *
 *  You should have received a copy of the GNU General Public License
 *  along with the gyee library.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package config

import (
	"strings"

	"github.com/urfave/cli"
)

var (
	ConfigFileFlag = cli.StringFlag{
		Name:  "config, c",
		Usage: "TOML configuration file",
	}

	DataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "data directory for logs and trace sessions",
	}

	LogLevelFlag = cli.StringFlag{
		Name:  "loglevel",
		Usage: "log level: trace, debug, info, warn, error",
	}

	//Trace Flag
	TraceFlag = cli.BoolFlag{
		Name:  "trace",
		Usage: "record scheduler events into the data directory",
	}

	SessionFlag = cli.StringFlag{
		Name:  "session",
		Usage: "trace session id",
	}

	//Sim Flag
	TicksFlag = cli.UintFlag{
		Name:  "ticks",
		Usage: "hardware ticks to simulate, 0 runs until interrupted",
	}

	HzFlag = cli.UintFlag{
		Name:  "hz",
		Usage: "simulated hardware tick rate, 0 ticks as fast as the kernel goes idle",
	}
)

// long name of a flag declared as "long, short"
func flagName(f cli.Flag) string {
	return strings.TrimSpace(strings.Split(f.GetName(), ",")[0])
}

func getAppConfig(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet(DataDirFlag.Name) {
		cfg.DataDir = ctx.GlobalString(DataDirFlag.Name)
	}
	if ctx.GlobalIsSet(LogLevelFlag.Name) {
		cfg.Log.Level = ctx.GlobalString(LogLevelFlag.Name)
	}
}

func getTraceConfig(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet(TraceFlag.Name) {
		cfg.Trace.Enabled = ctx.GlobalBool(TraceFlag.Name)
	}
}

func getSimConfig(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet(TicksFlag.Name) {
		cfg.Sim.Ticks = uint32(ctx.GlobalUint(TicksFlag.Name))
	}
	if ctx.GlobalIsSet(HzFlag.Name) {
		cfg.Sim.Hz = uint32(ctx.GlobalUint(HzFlag.Name))
	}
}

// MergeFlags copies the flags set on a subcommand to the global flag set, so that
// GetConfig sees them wherever they were given.
func MergeFlags(action func(ctx *cli.Context) error) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		for _, name := range ctx.FlagNames() {
			if ctx.IsSet(name) {
				ctx.GlobalSet(name, ctx.String(name))
			}
		}
		return action(ctx)
	}
}
