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
	"github.com/yeeco/rtk/log"
)

// Timer modes
type TimerMode uint8

const (
	TimerOneShot  TimerMode = iota + 1 // fire once after the delay
	TimerPeriodic                      // fire after the delay, then every period
)

// Timer states
type TimerState uint8

const (
	TimerUnused    TimerState = iota // not created
	TimerStopped                     // created, not started or stopped
	TimerCompleted                   // one-shot timer fired
	TimerRunning                     // linked in the wheel
)

var timerStateName = []string{
	"unused",
	"stopped",
	"completed",
	"running",
}

func (st TimerState) String() string {
	if int(st) >= len(timerStateName) {
		return "invalid"
	}
	return timerStateName[st]
}

// Timer stop options
type StopOpt uint8

const (
	StopNone        StopOpt = iota // stop without calling back
	StopCallback                   // call back with the timer argument
	StopCallbackArg                // call back with the argument given to TimerStop
)

// Timer callback, called from the timer task with the scheduler locked
type TimerCallback func(tmr *Timer, arg interface{})

//
// Software timer. A running timer is linked into the wheel spoke of its match tick,
// match modulo the wheel size.
//
type Timer struct {
	state  TimerState
	mode   TimerMode
	dly    uint32 // initial delay in timer ticks
	period uint32 // period in timer ticks
	match  uint32 // timer tick of the next expiry
	cb     TimerCallback
	arg    interface{}
	name   string

	next, prev *Timer
	spoke      int // -1 while not linked
	idx        int
}

type wheelSpoke struct {
	first *Timer
	n     int
}

func (tmr *Timer) Name() string {
	return tmr.name
}

// link tmr into the wheel with its next expiry counted from now
func (k *Kernel) tmrLink(tmr *Timer, reload bool) {
	tmr.state = TimerRunning
	if reload || tmr.dly == 0 {
		tmr.match = k.tmrTime + tmr.period
	} else {
		tmr.match = k.tmrTime + tmr.dly
	}
	spoke := int(tmr.match % uint32(len(k.wheel)))
	sp := &k.wheel[spoke]
	tmr.prev = nil
	tmr.next = sp.first
	if sp.first != nil {
		sp.first.prev = tmr
	}
	sp.first = tmr
	sp.n++
	tmr.spoke = spoke
	k.wheelGen++
}

func (k *Kernel) tmrUnlink(tmr *Timer) {
	sp := &k.wheel[tmr.spoke]
	if tmr.prev != nil {
		tmr.prev.next = tmr.next
	} else {
		sp.first = tmr.next
	}
	if tmr.next != nil {
		tmr.next.prev = tmr.prev
	}
	sp.n--
	tmr.next, tmr.prev = nil, nil
	tmr.spoke = -1
	k.wheelGen++
}

// check a timer service call
func (k *Kernel) tmrCheck(tmr *Timer) error {
	if k.intNesting > 0 {
		return ErrTimerISR
	}
	if tmr == nil {
		return ErrTimerInvalid
	}
	if tmr.state == TimerUnused {
		return ErrTimerInactive
	}
	return nil
}

//
// TimerCreate creates a stopped timer. A one-shot timer needs a delay; a periodic
// timer needs a period and first fires after dly, or after period when dly is 0.
//
func (k *Kernel) TimerCreate(dly, period uint32, mode TimerMode, cb TimerCallback, arg interface{}, name string) (*Timer, error) {
	switch mode {
	case TimerPeriodic:
		if period == 0 {
			log.Debugf("TimerCreate: periodic timer %s without period", name)
			return nil, ErrTimerInvalidPeriod
		}
	case TimerOneShot:
		if dly == 0 {
			log.Debugf("TimerCreate: one-shot timer %s without delay", name)
			return nil, ErrTimerInvalidDly
		}
	default:
		log.Debugf("TimerCreate: invalid mode %d", mode)
		return nil, ErrTimerInvalidOpt
	}
	k.enterCritical()
	if k.intNesting > 0 {
		k.exitCritical()
		log.Debug("TimerCreate: called from interrupt")
		return nil, ErrTimerISR
	}
	i, ok := k.timerFree.pop()
	if !ok {
		k.exitCritical()
		log.Debugf("TimerCreate: no timer available for %s", name)
		return nil, ErrTimerNonAvail
	}
	tmr := &k.timers[i]
	tmr.state = TimerStopped
	tmr.mode = mode
	tmr.dly = dly
	tmr.period = period
	tmr.cb = cb
	tmr.arg = arg
	tmr.name = name
	k.exitCritical()
	return tmr, nil
}

// TimerStart starts a timer, or restarts a running one, counting from now.
func (k *Kernel) TimerStart(tmr *Timer) error {
	k.enterCritical()
	if err := k.tmrCheck(tmr); err != nil {
		k.exitCritical()
		log.Debugf("TimerStart: %s", err)
		return err
	}
	if tmr.state == TimerRunning {
		k.tmrUnlink(tmr)
	}
	k.tmrLink(tmr, false)
	k.exitCritical()
	return nil
}

//
// TimerStop stops a running timer, calling back as opt requests: StopCallback with
// the timer argument, StopCallbackArg with arg. Stopping a timer that is not
// running returns ErrTimerStopped.
//
func (k *Kernel) TimerStop(tmr *Timer, opt StopOpt, arg interface{}) error {
	if opt > StopCallbackArg {
		log.Debugf("TimerStop: invalid option %d", opt)
		return ErrInvalidOpt
	}
	k.enterCritical()
	if err := k.tmrCheck(tmr); err != nil {
		k.exitCritical()
		log.Debugf("TimerStop: %s", err)
		return err
	}
	if tmr.state != TimerRunning {
		k.exitCritical()
		return ErrTimerStopped
	}
	k.tmrUnlink(tmr)
	tmr.state = TimerStopped
	cb := tmr.cb
	if opt == StopCallback {
		arg = tmr.arg
	}
	k.exitCritical()

	if opt == StopNone {
		return nil
	}
	if cb == nil {
		log.Debugf("TimerStop: timer %s has no callback", tmr.name)
		return ErrTimerNoCallback
	}
	cb(tmr, arg)
	return nil
}

// TimerDel deletes a timer, stopping it first when running.
func (k *Kernel) TimerDel(tmr *Timer) error {
	k.enterCritical()
	if err := k.tmrCheck(tmr); err != nil {
		k.exitCritical()
		log.Debugf("TimerDel: %s", err)
		return err
	}
	if tmr.state == TimerRunning {
		k.tmrUnlink(tmr)
	}
	idx := tmr.idx
	*tmr = Timer{idx: idx, spoke: -1}
	k.timerFree.push(idx)
	k.exitCritical()
	return nil
}

//
// TimerRemainGet returns the timer ticks left before the timer fires: the time to
// its match when running, its delay (or period) when stopped, 0 when completed.
//
func (k *Kernel) TimerRemainGet(tmr *Timer) (uint32, error) {
	k.enterCritical()
	defer k.exitCritical()
	if err := k.tmrCheck(tmr); err != nil {
		return 0, err
	}
	switch tmr.state {
	case TimerRunning:
		return tmr.match - k.tmrTime, nil
	case TimerStopped:
		if tmr.mode == TimerPeriodic && tmr.dly == 0 {
			return tmr.period, nil
		}
		return tmr.dly, nil
	}
	return 0, nil
}

func (k *Kernel) TimerStateGet(tmr *Timer) (TimerState, error) {
	k.enterCritical()
	defer k.exitCritical()
	if k.intNesting > 0 {
		return TimerUnused, ErrTimerISR
	}
	if tmr == nil {
		return TimerUnused, ErrTimerInvalid
	}
	return tmr.state, nil
}

func (k *Kernel) TimerNameGet(tmr *Timer) (string, error) {
	k.enterCritical()
	defer k.exitCritical()
	if err := k.tmrCheck(tmr); err != nil {
		return "", err
	}
	return tmr.name, nil
}

// TimerTime returns the timer tick count.
func (k *Kernel) TimerTime() uint32 {
	k.enterCritical()
	defer k.exitCritical()
	return k.tmrTime
}

// TimerSignal wakes the timer task for one timer tick. TickSignal calls it.
func (k *Kernel) TimerSignal() error {
	return k.SemPost(k.tmrSem)
}

//
// The timer task: one timer tick per signal. Expired timers of the current spoke are
// unlinked, periodic ones relinked from their match tick, and called back with the
// scheduler locked. A callback may start, stop or delete timers; the spoke is then
// walked again from its head.
//
func (k *Kernel) timerTask(arg interface{}) {
	for {
		if err := k.SemPend(k.tmrSem, 0); err != nil {
			log.Errorf("timerTask: pend failed: %s", err)
			continue
		}
		k.SchedLock()
		k.tmrTick()
		k.SchedUnlock()
	}
}

func (k *Kernel) tmrTick() {
	k.enterCritical()
	k.tmrTime++
	now := k.tmrTime
	sp := &k.wheel[int(now%uint32(len(k.wheel)))]
	for tmr := sp.first; tmr != nil; {
		next := tmr.next
		if tmr.match != now {
			tmr = next
			continue
		}
		k.tmrUnlink(tmr)
		if tmr.mode == TimerPeriodic {
			k.tmrLink(tmr, true)
		} else {
			tmr.state = TimerCompleted
		}
		k.hook.TimerExpire(tmr.name, now)
		cb, arg := tmr.cb, tmr.arg
		gen := k.wheelGen
		k.exitCritical()

		if cb != nil {
			cb(tmr, arg)
		}

		k.enterCritical()
		if k.wheelGen != gen {
			next = sp.first
		}
		tmr = next
	}
	k.exitCritical()
}
