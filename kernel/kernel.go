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

package kernel

import (
	"sync"

	"github.com/yeeco/rtk/log"
)

// Kernel configuration
type Config struct {
	LowestPrio     uint8  // priority of the idle task, at most PrioMax
	MaxTasks       int    // user task control blocks
	MaxEvents      int    // semaphores, mutexes and mailboxes
	MaxFlagGroups  int    // event flag groups
	MaxTimers      int    // software timers
	TimerWheelSize int    // timer wheel spokes
	TimerTaskPrio  uint8  // priority of the timer task
	TicksPerSec    uint32 // hardware tick rate
	TimerDivisor   uint32 // hardware ticks per timer tick
}

func DefaultConfig() Config {
	return Config{
		LowestPrio:     PrioMax,
		MaxTasks:       32,
		MaxEvents:      32,
		MaxFlagGroups:  8,
		MaxTimers:      16,
		TimerWheelSize: 8,
		TimerTaskPrio:  PrioMax - 2,
		TicksPerSec:    100,
		TimerDivisor:   1,
	}
}

func (cfg *Config) validate() error {
	switch {
	case cfg.LowestPrio > PrioMax || cfg.LowestPrio == 0:
		return ErrInvalidConfig
	case cfg.TimerTaskPrio >= cfg.LowestPrio:
		return ErrInvalidConfig
	case cfg.MaxTasks < 0 || cfg.MaxEvents < 0 || cfg.MaxFlagGroups < 0 || cfg.MaxTimers < 0:
		return ErrInvalidConfig
	case cfg.TimerWheelSize <= 0 || cfg.TimerDivisor == 0 || cfg.TicksPerSec == 0:
		return ErrInvalidConfig
	}
	return nil
}

// Kernel statistics
type Stat struct {
	Running     bool   // started
	Time        uint32 // hardware ticks
	TimerTime   uint32 // timer ticks
	PrioCur     uint8  // running priority
	CtxSwitches uint64 // context switches
	IdleCtr     uint64 // switches to the idle task
	Tasks       int    // task control blocks in use, system tasks included
	Events      int    // events in use, timer semaphore included
	FlagGroups  int    // flag groups in use
	Timers      int    // timers in use
}

//
// The kernel: one object owning every pool, the ready index, the current task and
// the timer wheel. All shared state is touched with the critical section held.
//
type Kernel struct {
	cfg  Config
	mu   sync.Mutex // critical section
	cpu  cpu        // host port
	hook Hook

	running     bool
	intNesting  uint8
	lockNesting uint8

	rdy     prioTbl
	prioTcb [PrioMax + 1]*TCB
	cur     *TCB
	idle    *TCB

	tcbs    []TCB
	tcbFree freeList
	tcbList *TCB // tasks in use

	events    []Event
	eventFree freeList

	flagGrps []FlagGroup
	flagFree freeList

	timers    []Timer
	timerFree freeList
	wheel     []wheelSpoke
	wheelGen  uint64 // bumped on every wheel link and unlink
	tmrTime   uint32
	tmrSem    *Event
	tmrDivCtr uint32

	time        uint32
	ctxSwitches uint64
	idleCtr     uint64
}

// New initializes a kernel: pools, ready index, the idle task and the timer task.
func New(cfg Config, hook Hook) (*Kernel, error) {
	if err := cfg.validate(); err != nil {
		log.Debugf("New: invalid configuration: %+v", cfg)
		return nil, err
	}
	if hook == nil {
		hook = NopHook{}
	}
	k := &Kernel{
		cfg:       cfg,
		hook:      hook,
		tcbs:      make([]TCB, cfg.MaxTasks+2),
		tcbFree:   newFreeList(cfg.MaxTasks + 2),
		events:    make([]Event, cfg.MaxEvents+1),
		eventFree: newFreeList(cfg.MaxEvents + 1),
		flagGrps:  make([]FlagGroup, cfg.MaxFlagGroups),
		flagFree:  newFreeList(cfg.MaxFlagGroups),
		timers:    make([]Timer, cfg.MaxTimers),
		timerFree: newFreeList(cfg.MaxTimers),
		wheel:     make([]wheelSpoke, cfg.TimerWheelSize),
	}
	for i := range k.tcbs {
		k.tcbs[i].idx = i
	}
	for i := range k.events {
		k.events[i].idx = i
	}
	for i := range k.flagGrps {
		k.flagGrps[i].idx = i
	}
	for i := range k.timers {
		k.timers[i].idx = i
		k.timers[i].spoke = -1
	}

	// the idle task has no execution context: running it leaves the cpu free
	k.idle = k.tcbAlloc()
	k.idle.prio = cfg.LowestPrio
	k.idle.basePrio = cfg.LowestPrio
	k.idle.name = "idle"
	k.prioTcb[cfg.LowestPrio] = k.idle
	k.tcbLink(k.idle)
	k.setReady(cfg.LowestPrio)
	k.cur = k.idle

	var err error
	if k.tmrSem, err = k.SemCreate(0); err != nil {
		panic("New: timer semaphore: " + err.Error())
	}
	k.tmrSem.name = "timer"
	if err = k.TaskCreate(k.timerTask, nil, cfg.TimerTaskPrio, "timer"); err != nil {
		panic("New: timer task: " + err.Error())
	}

	log.Debugf("New: kernel initialized, lowest priority %d, %d tasks, %d events, %d flag groups, %d timers",
		cfg.LowestPrio, cfg.MaxTasks, cfg.MaxEvents, cfg.MaxFlagGroups, cfg.MaxTimers)
	return k, nil
}

// Start begins multitasking: the highest ready task gets the cpu. Start returns once
// the cpu has been handed over; tasks keep running on their own goroutines.
func (k *Kernel) Start() error {
	k.cpu.acquire()
	k.enterCritical()
	if k.running {
		k.exitCritical()
		k.cpu.release()
		log.Debug("Start: kernel already running")
		return ErrAlreadyRunning
	}
	next := k.prioTcb[k.rdy.highest()]
	k.running = true
	k.switchTo(next)
	k.exitCritical()

	log.Infof("Start: kernel running, first task %s at priority %d", next.name, next.prio)
	k.cpu.resume(next)
	return nil
}

func (k *Kernel) Config() Config {
	return k.cfg
}

func (k *Kernel) Running() bool {
	k.enterCritical()
	defer k.exitCritical()
	return k.running
}

// PrioCur returns the priority of the running task.
func (k *Kernel) PrioCur() uint8 {
	k.enterCritical()
	defer k.exitCritical()
	return k.cur.prio
}

func (k *Kernel) Stat() Stat {
	k.enterCritical()
	defer k.exitCritical()
	return Stat{
		Running:     k.running,
		Time:        k.time,
		TimerTime:   k.tmrTime,
		PrioCur:     k.cur.prio,
		CtxSwitches: k.ctxSwitches,
		IdleCtr:     k.idleCtr,
		Tasks:       len(k.tcbs) - k.tcbFree.free(),
		Events:      len(k.events) - k.eventFree.free(),
		FlagGroups:  len(k.flagGrps) - k.flagFree.free(),
		Timers:      len(k.timers) - k.timerFree.free(),
	}
}

func (k *Kernel) enterCritical() {
	k.mu.Lock()
}

func (k *Kernel) exitCritical() {
	k.mu.Unlock()
}
