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
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"github.com/yeeco/rtk/kernel"
	"github.com/yeeco/rtk/utils"
)

type Config struct {
	DataDir string       `toml:"data_dir"`
	Kernel  KernelConfig `toml:"kernel"`
	Log     LogConfig    `toml:"log"`
	Trace   TraceConfig  `toml:"trace"`
	Sim     SimConfig    `toml:"sim"`
}

// Kernel pools, priorities and tick rates
type KernelConfig struct {
	LowestPrio     uint8  `toml:"lowest_prio"`
	MaxTasks       int    `toml:"max_tasks"`
	MaxEvents      int    `toml:"max_events"`
	MaxFlagGroups  int    `toml:"max_flag_groups"`
	MaxTimers      int    `toml:"max_timers"`
	TimerWheelSize int    `toml:"timer_wheel_size"`
	TimerTaskPrio  uint8  `toml:"timer_task_prio"`
	TicksPerSec    uint32 `toml:"ticks_per_sec"`
	TimerDivisor   uint32 `toml:"timer_divisor"`
}

type LogConfig struct {
	Level         string `toml:"level"`
	Dir           string `toml:"dir"` // empty: no log files
	RotationCount uint   `toml:"rotation_count"`
}

//Scheduler trace recording
type TraceConfig struct {
	Enabled    bool `toml:"enabled"`
	BufferSize int  `toml:"buffer_size"`
}

//Simulator board: tick rate and run length
type SimConfig struct {
	Hz    uint32 `toml:"hz"`
	Ticks uint32 `toml:"ticks"`
}

const defaultConfig = `
[kernel]
lowest_prio = 63
max_tasks = 32
max_events = 32
max_flag_groups = 8
max_timers = 16
timer_wheel_size = 8
timer_task_prio = 61
ticks_per_sec = 100
timer_divisor = 1

[log]
level = "info"
dir = ""
rotation_count = 7

[trace]
enabled = false
buffer_size = 4096

[sim]
hz = 100
ticks = 1000
`

func GetDefaultConfig() *Config {
	var config Config
	if _, err := toml.Decode(defaultConfig, &config); err != nil {
		panic("default config: " + err.Error())
	}
	config.DataDir = utils.DefaultDataDir()
	return &config
}

// LoadConfig reads a TOML file over the defaults, keys absent from the file keep
// their default values. Sections must stay values: decoding into a pointer
// replaces a whole section.
func LoadConfig(path string) (*Config, error) {
	config := GetDefaultConfig()
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	return config, nil
}

func SaveConfigToFile(path string, config *Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return errors.Wrapf(err, "create config dir %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create config %s", path)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return errors.Wrapf(err, "encode config %s", path)
	}
	return nil
}

// GetConfig loads the configuration file named by the flags, or the defaults, and
// applies the flag overrides.
func GetConfig(ctx *cli.Context) (*Config, error) {
	config := GetDefaultConfig()
	if file := ctx.GlobalString(flagName(ConfigFileFlag)); file != "" {
		var err error
		if config, err = LoadConfig(file); err != nil {
			return nil, err
		}
	}
	getAppConfig(ctx, config)
	getTraceConfig(ctx, config)
	getSimConfig(ctx, config)
	return config, nil
}

// KernelConfig maps the kernel section onto a kernel configuration.
func (c *Config) KernelConfig() kernel.Config {
	kc := c.Kernel
	return kernel.Config{
		LowestPrio:     kc.LowestPrio,
		MaxTasks:       kc.MaxTasks,
		MaxEvents:      kc.MaxEvents,
		MaxFlagGroups:  kc.MaxFlagGroups,
		MaxTimers:      kc.MaxTimers,
		TimerWheelSize: kc.TimerWheelSize,
		TimerTaskPrio:  kc.TimerTaskPrio,
		TicksPerSec:    kc.TicksPerSec,
		TimerDivisor:   kc.TimerDivisor,
	}
}

// TraceDir is where trace sessions are stored.
func (c *Config) TraceDir() string {
	return filepath.Join(c.DataDir, "trace")
}
