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
	"io"

	"github.com/yeeco/rtk/kernel"
	"github.com/yeeco/rtk/log"
)

// Demo task priorities
const (
	prioMutexHigh = 6
	prioProducer  = 10
	prioConsumer  = 12
	prioFlagA     = 14
	prioFlagB     = 15
	prioMutexMid  = 16
	prioMutexLow  = 20
	mutexCeiling  = 4
)

// Demo flag bits
const (
	flagA    kernel.Flags = 0x1
	flagB    kernel.Flags = 0x2
	flagTick kernel.Flags = 0x4
)

//
// Demo workload: a producer and a consumer on a semaphore and a mailbox, two tasks
// meeting on a flag group paced by a periodic timer, and three tasks of different
// priority sharing a ceiling mutex. Counters are touched by tasks only.
//
type demo struct {
	k     *kernel.Kernel
	sem   *kernel.Event
	mbox  *kernel.Event
	mutex *kernel.Event
	flags *kernel.FlagGroup
	tick  *kernel.Timer
	once  *kernel.Timer

	produced   int
	consumed   int
	mboxFull   int
	timeouts   int
	rendezvous int
	mutexUses  map[uint8]int
	maxPromote uint8
	onceFired  bool
}

func newDemo(k *kernel.Kernel) (*demo, error) {
	d := &demo{k: k, mutexUses: make(map[uint8]int), maxPromote: kernel.PrioSelf}
	var err error
	if d.sem, err = k.SemCreate(0); err != nil {
		return nil, err
	}
	d.sem.SetName("items")
	if d.mbox, err = k.MboxCreate(nil); err != nil {
		return nil, err
	}
	d.mbox.SetName("latest")
	if d.mutex, err = k.MutexCreate(mutexCeiling); err != nil {
		return nil, err
	}
	d.mutex.SetName("shared")
	if d.flags, err = k.FlagCreate(0); err != nil {
		return nil, err
	}
	d.flags.SetName("rendezvous")

	if d.tick, err = k.TimerCreate(0, 10, kernel.TimerPeriodic, d.tickCallback, nil, "pace"); err != nil {
		return nil, err
	}
	if d.once, err = k.TimerCreate(50, 0, kernel.TimerOneShot, d.onceCallback, "warmup done", "warmup"); err != nil {
		return nil, err
	}
	if err = k.TimerStart(d.tick); err != nil {
		return nil, err
	}
	if err = k.TimerStart(d.once); err != nil {
		return nil, err
	}

	tasks := []struct {
		entry kernel.TaskEntry
		arg   interface{}
		prio  uint8
		name  string
	}{
		{d.producer, nil, prioProducer, "producer"},
		{d.consumer, nil, prioConsumer, "consumer"},
		{d.flagLeader, nil, prioFlagA, "flag-leader"},
		{d.flagFollower, nil, prioFlagB, "flag-follower"},
		{d.mutexTask, uint32(5), prioMutexHigh, "mutex-high"},
		{d.mutexTask, uint32(3), prioMutexMid, "mutex-mid"},
		{d.mutexTask, uint32(2), prioMutexLow, "mutex-low"},
	}
	for _, t := range tasks {
		if err = k.TaskCreate(t.entry, t.arg, t.prio, t.name); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *demo) producer(arg interface{}) {
	for n := 1; ; n++ {
		d.k.TimeDly(5)
		if err := d.k.SemPost(d.sem); err != nil {
			log.Warnf("producer: %s", err)
			continue
		}
		d.produced++
		if err := d.k.MboxPost(d.mbox, n); err == kernel.ErrMboxFull {
			d.mboxFull++
		}
	}
}

func (d *demo) consumer(arg interface{}) {
	for {
		if err := d.k.SemPend(d.sem, 0); err != nil {
			log.Warnf("consumer: %s", err)
			continue
		}
		d.consumed++
		if _, err := d.k.MboxPend(d.mbox, 3); err == kernel.ErrTimeout {
			d.timeouts++
		}
	}
}

// the leader answers each pace tick with its bit and waits for the follower's reply
func (d *demo) flagLeader(arg interface{}) {
	consume := kernel.FlagWait{Type: kernel.WaitSetAll, Consume: true}
	for {
		if _, err := d.k.FlagPend(d.flags, flagTick, consume, 0); err != nil {
			log.Warnf("flag leader: %s", err)
			continue
		}
		d.k.FlagPost(d.flags, flagA, kernel.FlagSet)
		if _, err := d.k.FlagPend(d.flags, flagB, consume, 0); err != nil {
			log.Warnf("flag leader: %s", err)
			continue
		}
		d.rendezvous++
	}
}

func (d *demo) flagFollower(arg interface{}) {
	consume := kernel.FlagWait{Type: kernel.WaitSetAll, Consume: true}
	for {
		if _, err := d.k.FlagPend(d.flags, flagA, consume, 0); err != nil {
			log.Warnf("flag follower: %s", err)
			continue
		}
		d.k.FlagPost(d.flags, flagB, kernel.FlagSet)
	}
}

func (d *demo) mutexTask(arg interface{}) {
	period := arg.(uint32)
	for {
		err := d.k.MutexPend(d.mutex, 0)
		if err != nil && err != kernel.ErrCeilingViolation {
			log.Warnf("mutex task: %s", err)
			continue
		}
		if info, err := d.k.TaskQuery(kernel.PrioSelf); err == nil {
			d.mutexUses[info.BasePrio]++
		}
		d.k.TimeDly(1)
		if info, err := d.k.TaskQuery(kernel.PrioSelf); err == nil && info.Prio < d.maxPromote {
			d.maxPromote = info.Prio
		}
		if err := d.k.MutexPost(d.mutex); err != nil {
			log.Warnf("mutex task: %s", err)
		}
		d.k.TimeDly(period)
	}
}

func (d *demo) tickCallback(tmr *kernel.Timer, arg interface{}) {
	if _, err := d.k.FlagPost(d.flags, flagTick, kernel.FlagSet); err != nil {
		log.Warnf("%s: %s", tmr.Name(), err)
	}
}

func (d *demo) onceCallback(tmr *kernel.Timer, arg interface{}) {
	d.onceFired = true
	log.Infof("%s: %v", tmr.Name(), arg)
}

func (d *demo) report(w io.Writer) {
	fmt.Fprintf(w, "producer/consumer: produced %d, consumed %d, mailbox full %d, mailbox timeouts %d\n",
		d.produced, d.consumed, d.mboxFull, d.timeouts)
	fmt.Fprintf(w, "flag rendezvous: %d\n", d.rendezvous)
	fmt.Fprintf(w, "mutex: uses %v, highest priority while owning %d (ceiling %d)\n",
		d.mutexUses, d.maxPromote, mutexCeiling)
	fmt.Fprintf(w, "one-shot timer fired: %v\n", d.onceFired)
}
