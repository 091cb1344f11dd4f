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
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"github.com/yeeco/rtk/config"
	"github.com/yeeco/rtk/persistent"
	"github.com/yeeco/rtk/trace"
)

var (
	traceCommand = cli.Command{
		Name:     "trace",
		Usage:    "Inspect recorded traces",
		Category: "TRACE COMMANDS",
		Description: `
Inspect the scheduler trace sessions recorded by run --trace.`,

		Subcommands: []cli.Command{
			{
				Name:      "dump",
				Usage:     "List sessions, or print the records of one",
				Action:    config.MergeFlags(dumpTrace),
				Flags:     []cli.Flag{config.DataDirFlag, config.SessionFlag},
				ArgsUsage: "",
				Description: `
Without --session list the recorded sessions, with --session print its records.`,
			},
		},
	}
)

var kindColor = map[trace.Kind]*color.Color{
	trace.KindTaskCreate:  color.New(color.FgGreen),
	trace.KindTaskDel:     color.New(color.FgRed),
	trace.KindTaskSw:      color.New(color.FgCyan),
	trace.KindTimerExpire: color.New(color.FgYellow),
}

func dumpTrace(ctx *cli.Context) error {
	cfg, err := config.GetConfig(ctx)
	if err != nil {
		return err
	}
	storage, err := persistent.NewLevelStorage(cfg.TraceDir())
	if err != nil {
		return err
	}
	defer storage.Close()
	reader, err := trace.NewReader(storage)
	if err != nil {
		return err
	}

	id := ctx.GlobalString(config.SessionFlag.Name)
	if id == "" {
		sessions, err := reader.Sessions()
		if err != nil {
			return err
		}
		for _, s := range sessions {
			started := time.Unix(0, int64(s.Started)).Format(time.RFC3339)
			color.New(color.Bold).Printf("%s", s.UUID())
			fmt.Printf("  started %s, %d ticks, %d records, %d dropped\n", started, s.Ticks, s.Records, s.Dropped)
		}
		return nil
	}

	count := 0
	err = reader.Records(id, func(rec *trace.Record) bool {
		if c, ok := kindColor[rec.Kind]; ok {
			c.Println(rec.String())
		} else {
			fmt.Println(rec.String())
		}
		count++
		return true
	})
	if err != nil {
		return errors.Wrapf(err, "dump session %s", id)
	}
	fmt.Printf("%d records\n", count)
	return nil
}
