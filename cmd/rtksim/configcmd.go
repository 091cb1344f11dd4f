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

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"github.com/yeeco/rtk/config"
)

var (
	configCommand = cli.Command{
		Name:     "config",
		Usage:    "Manage config",
		Category: "CONFIG COMMANDS",
		Description: `
Manage rtk config, generate a default config file.`,

		Subcommands: []cli.Command{
			{
				Name:      "new",
				Usage:     "Generate a default config file",
				Action:    config.MergeFlags(createDefaultConfig),
				ArgsUsage: "<filename>",
				Description: `
Generate a default config file.`,
			},
			{
				Name:      "show",
				Usage:     "Print the effective config",
				Action:    config.MergeFlags(showConfig),
				Flags:     []cli.Flag{config.ConfigFileFlag, config.DataDirFlag},
				ArgsUsage: "",
				Description: `
Print the configuration obtained from the config file and flags.`,
			},
		},
	}
)

func createDefaultConfig(ctx *cli.Context) error {
	fileName := ctx.Args().First()
	if len(fileName) == 0 {
		return errors.New("please give a config file arg")
	}
	if err := config.SaveConfigToFile(fileName, config.GetDefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("create default config %s\n", fileName)
	return nil
}

func showConfig(ctx *cli.Context) error {
	cfg, err := config.GetConfig(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("data dir:  %s\n", cfg.DataDir)
	fmt.Printf("kernel:    %+v\n", cfg.Kernel)
	fmt.Printf("log:       %+v\n", cfg.Log)
	fmt.Printf("trace:     %+v\n", cfg.Trace)
	fmt.Printf("sim:       %+v\n", cfg.Sim)
	return nil
}
