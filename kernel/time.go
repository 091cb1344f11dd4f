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

//
// TickSignal is the hardware tick handler, to be called once per tick from an
// interrupt. It counts down every delayed or timed pend, readying the tasks whose
// count reaches zero. A task readied by a timeout stays in its wait list until it
// runs and unlinks itself. Every TimerDivisor ticks the timer task is signalled.
//
func (k *Kernel) TickSignal() {
	k.enterCritical()
	k.time++
	k.hook.TimeTick(k.time)
	if !k.running {
		k.exitCritical()
		return
	}
	for t := k.tcbList; t != nil; t = t.next {
		if t.dly == 0 {
			continue
		}
		if t.dly--; t.dly != 0 {
			continue
		}
		if t.stat&StatPendAny != 0 {
			t.stat &^= StatPendAny
			t.pend = PendTimeout
		} else {
			t.pend = PendOK
		}
		if t.stat&StatSuspend == 0 {
			k.setReady(t.prio)
		}
	}
	k.tmrDivCtr++
	signal := k.tmrDivCtr >= k.cfg.TimerDivisor
	if signal {
		k.tmrDivCtr = 0
	}
	k.exitCritical()

	if signal {
		if err := k.TimerSignal(); err != nil {
			log.Debugf("TickSignal: timer signal failed: %s", err)
		}
	}
}

// TimeDly blocks the calling task for ticks, 0 returns at once.
func (k *Kernel) TimeDly(ticks uint32) error {
	k.enterCritical()
	if err := k.pendContext(); err != nil {
		k.exitCritical()
		log.Debugf("TimeDly: %s", err)
		return err
	}
	if ticks == 0 {
		k.exitCritical()
		return nil
	}
	k.clearReady(k.cur.prio)
	k.cur.dly = ticks
	k.exitCritical()

	k.sched()
	return nil
}

// TimeDlyHMSM blocks the calling task for a wall clock duration, rounded to ticks.
func (k *Kernel) TimeDlyHMSM(hours, minutes, seconds, millis uint32) error {
	if minutes > 59 || seconds > 59 || millis > 999 {
		log.Debugf("TimeDlyHMSM: invalid time %d:%d:%d.%d", hours, minutes, seconds, millis)
		return ErrInvalidOpt
	}
	tps := k.cfg.TicksPerSec
	ticks := ((hours*3600+minutes*60+seconds)*tps + (millis*tps+500)/1000)
	return k.TimeDly(ticks)
}

// TimeDlyResume ends the delay of the task at prio. A task in a timed pend is woken
// as timed out.
func (k *Kernel) TimeDlyResume(prio uint8) error {
	if prio >= k.cfg.LowestPrio {
		log.Debugf("TimeDlyResume: invalid priority %d", prio)
		return ErrPrioInvalid
	}
	k.enterCritical()
	t := k.taskAt(prio)
	if t == nil {
		k.exitCritical()
		log.Debugf("TimeDlyResume: no task at priority %d", prio)
		return ErrTaskNotExist
	}
	if t.dly == 0 {
		k.exitCritical()
		log.Debugf("TimeDlyResume: task %s not delayed", t.name)
		return ErrTimeNotDly
	}
	t.dly = 0
	if t.stat&StatPendAny != 0 {
		t.stat &^= StatPendAny
		t.pend = PendTimeout
	} else {
		t.pend = PendOK
	}
	if t.stat&StatSuspend == 0 {
		k.setReady(t.prio)
	}
	k.exitCritical()

	k.sched()
	return nil
}

// TimeGet returns the hardware tick count.
func (k *Kernel) TimeGet() uint32 {
	k.enterCritical()
	defer k.exitCritical()
	return k.time
}

func (k *Kernel) TimeSet(ticks uint32) {
	k.enterCritical()
	k.time = ticks
	k.exitCritical()
}
