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
	"runtime"
)

//
// Reschedule decision at task level: switch when the highest ready task is not the
// running one, unless in an interrupt, the scheduler is locked or the kernel is not
// started yet. The caller parks here until it is scheduled again.
//
func (k *Kernel) sched() {
	k.enterCritical()
	if k.intNesting != 0 || k.lockNesting != 0 || !k.running {
		k.exitCritical()
		return
	}
	next := k.prioTcb[k.rdy.highest()]
	if next == k.cur {
		k.exitCritical()
		return
	}
	from := k.cur
	if from.run == nil {
		panic("sched: called outside of task context")
	}
	k.switchTo(next)
	run, kill := from.run, from.kill
	k.exitCritical()

	k.cpu.resume(next)
	k.cpu.park(run, kill)
}

// Reschedule lets a higher priority ready task run. Only tasks may call it.
func (k *Kernel) Reschedule() {
	k.sched()
}

func (k *Kernel) switchTo(next *TCB) {
	from := k.cur
	next.ctxSwitches++
	k.ctxSwitches++
	if next == k.idle {
		k.idleCtr++
	}
	k.cur = next
	k.hook.TaskSw(from.prio, next.prio)
}

// SchedLock disables rescheduling, locks nest up to 255 deep.
func (k *Kernel) SchedLock() {
	k.enterCritical()
	if k.running && k.intNesting == 0 && k.lockNesting < 255 {
		k.lockNesting++
	}
	k.exitCritical()
}

// SchedUnlock undoes one SchedLock, the outermost unlock reschedules.
func (k *Kernel) SchedUnlock() {
	k.enterCritical()
	if !k.running || k.intNesting != 0 || k.lockNesting == 0 {
		k.exitCritical()
		return
	}
	k.lockNesting--
	resched := k.lockNesting == 0
	k.exitCritical()
	if resched {
		k.sched()
	}
}

// IntEnter notes entry into a nested interrupt service routine. Interrupt does this
// for the outermost one.
func (k *Kernel) IntEnter() {
	k.enterCritical()
	if k.running && k.intNesting < 255 {
		k.intNesting++
	}
	k.exitCritical()
}

// IntExit notes exit from a nested interrupt service routine.
func (k *Kernel) IntExit() {
	k.enterCritical()
	if k.running && k.intNesting > 1 {
		k.intNesting--
	}
	k.exitCritical()
}

//
// Outermost interrupt exit: the preemption point. The interrupted task, when there
// is one, performs the switch itself at its checkpoint, so a switch is returned only
// when the idle task was interrupted.
//
func (k *Kernel) intExit() *TCB {
	k.enterCritical()
	defer k.exitCritical()
	if !k.running {
		return nil
	}
	if k.intNesting > 0 {
		k.intNesting--
	}
	if k.intNesting != 0 || k.lockNesting != 0 || k.cur != k.idle {
		return nil
	}
	next := k.prioTcb[k.rdy.highest()]
	if next == k.idle {
		return nil
	}
	k.switchTo(next)
	return next
}

// IntNesting returns the interrupt nesting depth.
func (k *Kernel) IntNesting() uint8 {
	k.enterCritical()
	defer k.exitCritical()
	return k.intNesting
}

// LockNesting returns the scheduler lock depth.
func (k *Kernel) LockNesting() uint8 {
	k.enterCritical()
	defer k.exitCritical()
	return k.lockNesting
}

// a task returned from its entry function, a scheduler lock it still holds is dropped
func (k *Kernel) taskReturn() {
	k.enterCritical()
	k.lockNesting = 0
	k.exitCritical()
	if err := k.TaskDel(PrioSelf); err != nil {
		panic("taskReturn: " + err.Error())
	}
	runtime.Goexit()
}
