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
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"github.com/yeeco/rtk/config"
	"github.com/yeeco/rtk/kernel"
	"github.com/yeeco/rtk/log"
	"github.com/yeeco/rtk/persistent"
	"github.com/yeeco/rtk/trace"
	"github.com/yeeco/rtk/utils"
	"github.com/yeeco/rtk/utils/fdlimit"
	"github.com/yeeco/rtk/utils/logging"
)

// ticks between trace flushes
const flushInterval = 100

var (
	runCommand = cli.Command{
		Name:      "run",
		Usage:     "Boot the kernel with the demo workload",
		Action:    config.MergeFlags(run),
		ArgsUsage: "",
		Flags: []cli.Flag{
			config.ConfigFileFlag,
			config.DataDirFlag,
			config.LogLevelFlag,
			config.TraceFlag,
			config.TicksFlag,
			config.HzFlag,
		},
		Category: "SIMULATOR COMMANDS",
		Description: `
Boot the kernel, start the demo tasks and drive the hardware tick from a board
ticker. With --trace the scheduler events are recorded into the data directory.`,
	}
)

func setupLogging(cfg *config.Config) error {
	if cfg.Log.Level != "" {
		if err := logging.SetLevel(cfg.Log.Level); err != nil {
			return err
		}
	}
	if cfg.Log.Dir != "" {
		logging.SetFileRotationHooker(cfg.Log.Dir, cfg.Log.RotationCount)
	}
	return nil
}

// lock the data directory and open the trace store in it
func openTraceStore(cfg *config.Config) (*flock.Flock, persistent.Storage, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, nil, errors.Wrapf(err, "create data dir %s", cfg.DataDir)
	}
	lock := flock.New(filepath.Join(cfg.DataDir, "LOCK"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, nil, errors.Wrap(err, "lock data dir")
	}
	if !locked {
		return nil, nil, errors.Errorf("data dir %s in use", cfg.DataDir)
	}
	if err := fdlimit.FixFdLimit(); err != nil {
		log.Warnf("run: %s", err)
	}
	storage, err := persistent.NewLevelStorage(cfg.TraceDir())
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}
	return lock, storage, nil
}

func run(ctx *cli.Context) error {
	cfg, err := config.GetConfig(ctx)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	var hook kernel.Hook
	var rec *trace.Recorder
	var storage persistent.Storage
	if cfg.Trace.Enabled {
		lock, st, err := openTraceStore(cfg)
		if err != nil {
			return err
		}
		defer lock.Unlock()
		defer st.Close()
		if rec, err = trace.NewRecorder(cfg.Trace.BufferSize); err != nil {
			return err
		}
		hook, storage = rec, st
		log.Infof("run: recording trace session %s", rec.SessionID())
	}

	k, err := kernel.New(cfg.KernelConfig(), hook)
	if err != nil {
		return errors.Wrap(err, "kernel")
	}
	demo, err := newDemo(k)
	if err != nil {
		return errors.Wrap(err, "demo workload")
	}
	if err := k.Start(); err != nil {
		return errors.Wrap(err, "start")
	}

	flush := func() {
		if rec == nil {
			return
		}
		if err := rec.Flush(storage); err != nil {
			log.Errorf("run: trace flush: %s", err)
		}
	}
	board := newBoard(k, cfg.Sim.Hz, cfg.Sim.Ticks)
	board.onTick = func(tick uint32) {
		if tick%flushInterval == 0 {
			flush()
		}
	}
	board.run()
	k.WaitIdle()
	flush()

	demo.report(os.Stdout)
	st := k.Stat()
	fmt.Printf("ticks %d, timer ticks %d, context switches %d, idle %d\n",
		st.Time, st.TimerTime, st.CtxSwitches, st.IdleCtr)
	fmt.Printf("tasks %d, events %d, flag groups %d, timers %d\n",
		st.Tasks, st.Events, st.FlagGroups, st.Timers)
	fmt.Println(utils.MemUsage())
	if rec != nil {
		fmt.Printf("trace session %s\n", rec.SessionID())
	}
	return nil
}

//
// The simulated board: a periodic hardware timer raising the tick interrupt. With
// hz 0 the next tick is raised as soon as the kernel is idle.
//
type board struct {
	k      *kernel.Kernel
	hz     uint32
	ticks  uint32
	onTick func(tick uint32)
	quit   chan os.Signal
}

func newBoard(k *kernel.Kernel, hz, ticks uint32) *board {
	b := &board{
		k:     k,
		hz:    hz,
		ticks: ticks,
		quit:  make(chan os.Signal, 1),
	}
	signal.Notify(b.quit, syscall.SIGINT, syscall.SIGTERM)
	return b
}

func (b *board) tick(n uint32) {
	b.k.Interrupt(b.k.TickSignal)
	if b.onTick != nil {
		b.onTick(n)
	}
}

func (b *board) run() {
	defer signal.Stop(b.quit)
	if b.hz == 0 {
		for n := uint32(1); b.ticks == 0 || n <= b.ticks; n++ {
			select {
			case <-b.quit:
				return
			default:
			}
			b.tick(n)
			b.k.WaitIdle()
		}
		return
	}

	ticker := time.NewTicker(time.Second / time.Duration(b.hz))
	defer ticker.Stop()
	for n := uint32(1); b.ticks == 0 || n <= b.ticks; n++ {
		select {
		case <-b.quit:
			return
		case <-ticker.C:
			b.tick(n)
		}
	}
}
