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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	"github.com/yeeco/rtk/kernel"
)

func TestDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NotNil(t, cfg)
	require.Equal(t, kernel.DefaultConfig(), cfg.KernelConfig())
	require.Equal(t, "info", cfg.Log.Level)
	require.False(t, cfg.Trace.Enabled)
	require.Equal(t, uint32(1000), cfg.Sim.Ticks)
}

func TestSaveLoadConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "rtk-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	cfg := GetDefaultConfig()
	cfg.DataDir = dir
	cfg.Kernel.MaxTasks = 5
	cfg.Kernel.TimerDivisor = 10
	cfg.Trace.Enabled = true
	path := filepath.Join(dir, "conf", "rtk.toml")
	require.NoError(t, SaveConfigToFile(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestLoadPartialConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "rtk-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "rtk.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte("[kernel]\nmax_timers = 3\n[sim]\nhz = 0\n"), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Kernel.MaxTimers)
	require.Equal(t, 32, cfg.Kernel.MaxTasks)
	require.Equal(t, uint32(0), cfg.Sim.Hz)
	require.Equal(t, uint32(1000), cfg.Sim.Ticks)

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}

func TestGetConfigFlags(t *testing.T) {
	var cfg *Config
	app := cli.NewApp()
	app.Flags = []cli.Flag{ConfigFileFlag, DataDirFlag, LogLevelFlag, TraceFlag, TicksFlag, HzFlag}
	app.Action = func(ctx *cli.Context) error {
		var err error
		cfg, err = GetConfig(ctx)
		return err
	}
	err := app.Run([]string{"rtk", "--ticks", "50", "--hz", "0", "--trace", "--datadir", "/tmp/rtk", "--loglevel", "debug"})
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, uint32(50), cfg.Sim.Ticks)
	require.Equal(t, uint32(0), cfg.Sim.Hz)
	require.True(t, cfg.Trace.Enabled)
	require.Equal(t, "/tmp/rtk", cfg.DataDir)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, filepath.Join("/tmp/rtk", "trace"), cfg.TraceDir())
}

func TestGetConfigFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "rtk-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "rtk.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte("[sim]\nticks = 7\n[kernel]\nmax_timers = 3\n"), 0600))

	for _, args := range [][]string{
		{"rtk", "--config", path},
		{"rtk", "-c", path},
		{"rtk", "--config", path, "--ticks", "9"},
	} {
		var cfg *Config
		app := cli.NewApp()
		app.Flags = []cli.Flag{ConfigFileFlag, TicksFlag}
		app.Action = func(ctx *cli.Context) error {
			var err error
			cfg, err = GetConfig(ctx)
			return err
		}
		require.NoError(t, app.Run(args))
		require.NotNil(t, cfg)
		require.Equal(t, 3, cfg.Kernel.MaxTimers, "%v", args)
		if len(args) == 3 {
			require.Equal(t, uint32(7), cfg.Sim.Ticks, "%v", args)
		} else {
			require.Equal(t, uint32(9), cfg.Sim.Ticks, "%v", args)
		}
	}

	app := cli.NewApp()
	app.Flags = []cli.Flag{ConfigFileFlag}
	app.Action = func(ctx *cli.Context) error {
		_, err := GetConfig(ctx)
		return err
	}
	require.Error(t, app.Run([]string{"rtk", "-c", filepath.Join(dir, "missing.toml")}))
}
