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

package main

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli"
	"github.com/yeeco/rtk/config"
	"github.com/yeeco/rtk/utils/logging"
)

var (
	app = cli.NewApp()
)

func init() {
	app.Name = filepath.Base(os.Args[0])
	app.Author = ""
	app.Email = ""
	app.Version = ""
	app.Usage = "the rtk kernel simulator"
	app.HideVersion = true
	app.Copyright = "Copyright 2017-2019 The gyee Authors"
	app.Flags = []cli.Flag{
		config.ConfigFileFlag,
		config.DataDirFlag,
		config.LogLevelFlag,
		config.TraceFlag,
		config.TicksFlag,
		config.HzFlag,
		config.SessionFlag,
	}
	app.Commands = []cli.Command{
		runCommand,
		traceCommand,
		configCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
	app.Action = config.MergeFlags(run)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		logging.Logger.Fatal(err)
	}
}
