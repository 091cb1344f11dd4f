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

	"github.com/yeeco/rtk/log"
)

// Task status bits
type TaskStat uint8

const (
	StatRdy     TaskStat = 0x00 // ready to run
	StatSem     TaskStat = 0x01 // pending on semaphore
	StatMbox    TaskStat = 0x02 // pending on mailbox
	StatSuspend TaskStat = 0x08 // suspended
	StatMutex   TaskStat = 0x10 // pending on mutex
	StatFlag    TaskStat = 0x20 // pending on event flag group
	StatPendAny          = StatSem | StatMbox | StatMutex | StatFlag
)

// Outcome of a pend
type PendStat uint8

const (
	PendOK      PendStat = iota // satisfied or not pending
	PendTimeout                 // timed out
	PendAbort                   // aborted
)

// Task entry point, a task returning from it is deleted
type TaskEntry func(arg interface{})

//
// Task control block. A task waiting on an event refers to it through event, the
// event's wait list holds the task's priority bit; a task waiting on a flag group is
// linked through its embedded flag node.
//
type TCB struct {
	prio     uint8       // current priority, a mutex ceiling while promoted
	basePrio uint8       // priority given at creation or by TaskChangePrio
	stat     TaskStat    // status bits
	pend     PendStat    // pend outcome
	dly      uint32      // ticks left to timeout or end of delay, 0: none
	event    *Event      // event waited on
	msg      interface{} // message delivered by a mailbox post
	flag     flagNode    // flag group wait node
	flagsRdy Flags       // flags that made the task ready
	mutexes  int         // mutexes owned
	ceilDiag bool        // mutex handed over above its ceiling

	name        string
	entry       TaskEntry
	arg         interface{}
	ctxSwitches uint64
	run         chan struct{} // resume signal
	kill        chan struct{} // closed on delete

	idx        int
	next, prev *TCB // tasks in use
}

// Task information
type TaskInfo struct {
	Prio        uint8
	BasePrio    uint8
	Name        string
	Stat        TaskStat
	Pend        PendStat
	Dly         uint32
	Mutexes     int
	CtxSwitches uint64
}

func (k *Kernel) tcbAlloc() *TCB {
	i, ok := k.tcbFree.pop()
	if !ok {
		return nil
	}
	return &k.tcbs[i]
}

func (k *Kernel) tcbRelease(t *TCB) {
	idx := t.idx
	*t = TCB{idx: idx}
	k.tcbFree.push(idx)
}

func (k *Kernel) tcbLink(t *TCB) {
	t.prev = nil
	t.next = k.tcbList
	if k.tcbList != nil {
		k.tcbList.prev = t
	}
	k.tcbList = t
}

func (k *Kernel) tcbUnlink(t *TCB) {
	if t.prev != nil {
		t.prev.next = t.next
	} else {
		k.tcbList = t.next
	}
	if t.next != nil {
		t.next.prev = t.prev
	}
	t.next, t.prev = nil, nil
}

// task at prio, nil for free and reserved slots
func (k *Kernel) taskAt(prio uint8) *TCB {
	t := k.prioTcb[prio]
	if t == tcbReserved {
		return nil
	}
	return t
}

func (k *Kernel) isSysTask(t *TCB) bool {
	return t == k.idle || t.basePrio == k.cfg.TimerTaskPrio
}

// TaskCreate creates a task at prio, ready to run. Before Start it may be called from
// any goroutine, after Start only from tasks.
func (k *Kernel) TaskCreate(entry TaskEntry, arg interface{}, prio uint8, name string) error {
	if entry == nil {
		log.Debug("TaskCreate: nil entry")
		return ErrTaskEntryNil
	}
	if prio > k.cfg.LowestPrio {
		log.Debugf("TaskCreate: invalid priority %d", prio)
		return ErrPrioInvalid
	}

	k.enterCritical()
	if k.intNesting > 0 {
		k.exitCritical()
		log.Debug("TaskCreate: called from interrupt")
		return ErrCreateISR
	}
	if k.prioTcb[prio] != nil {
		k.exitCritical()
		log.Debugf("TaskCreate: priority %d exists", prio)
		return ErrPrioExist
	}
	t := k.tcbAlloc()
	if t == nil {
		k.exitCritical()
		log.Debugf("TaskCreate: no more task control blocks for %s", name)
		return ErrTaskNoMoreTCB
	}
	t.prio = prio
	t.basePrio = prio
	t.name = name
	t.entry = entry
	t.arg = arg
	t.flag.tcb = t
	k.spawn(t)
	k.prioTcb[prio] = t
	k.tcbLink(t)
	k.setReady(prio)
	k.hook.TaskCreate(prio, name)
	k.exitCritical()

	log.Debugf("TaskCreate: task %s created at priority %d", name, prio)
	k.sched()
	return nil
}

// TaskDel deletes the task at prio, PrioSelf for the caller. A deleting task does
// not return.
func (k *Kernel) TaskDel(prio uint8) error {
	k.enterCritical()
	if k.intNesting > 0 {
		k.exitCritical()
		log.Debug("TaskDel: called from interrupt")
		return ErrDelISR
	}
	if prio == PrioSelf {
		prio = k.cur.prio
	}
	if prio > k.cfg.LowestPrio {
		k.exitCritical()
		log.Debugf("TaskDel: invalid priority %d", prio)
		return ErrPrioInvalid
	}
	t := k.taskAt(prio)
	if t == nil {
		k.exitCritical()
		log.Debugf("TaskDel: no task at priority %d", prio)
		return ErrTaskNotExist
	}
	if k.isSysTask(t) {
		k.exitCritical()
		log.Debugf("TaskDel: %s is a system task", t.name)
		return ErrSysTask
	}
	if t.mutexes > 0 {
		k.exitCritical()
		log.Debugf("TaskDel: %s owns %d mutexes", t.name, t.mutexes)
		return ErrTaskOwnsMutex
	}
	self := k.running && t == k.cur
	if self && k.lockNesting > 0 {
		k.exitCritical()
		log.Debugf("TaskDel: %s deleting itself with the scheduler locked", t.name)
		return ErrSchedLocked
	}

	k.clearReady(t.prio)
	if t.event != nil {
		k.eventTaskRemove(t, t.event)
	}
	if t.flag.grp != nil {
		k.flagUnlink(&t.flag)
	}
	k.hook.TaskDel(t.prio, t.name)
	k.prioTcb[t.prio] = nil
	k.tcbUnlink(t)
	name, kill := t.name, t.kill

	if self {
		next := k.prioTcb[k.rdy.highest()]
		k.switchTo(next)
		k.tcbRelease(t)
		k.exitCritical()
		log.Debugf("TaskDel: task %s deleted itself", name)
		k.cpu.resume(next)
		runtime.Goexit()
	}
	k.tcbRelease(t)
	k.exitCritical()

	close(kill)
	log.Debugf("TaskDel: task %s deleted", name)
	return nil
}

// TaskSuspend suspends the task at prio, PrioSelf for the caller.
func (k *Kernel) TaskSuspend(prio uint8) error {
	k.enterCritical()
	if prio == PrioSelf {
		if k.intNesting > 0 {
			k.exitCritical()
			log.Debug("TaskSuspend: self suspension from interrupt")
			return ErrPrioInvalid
		}
		prio = k.cur.prio
	}
	if prio > k.cfg.LowestPrio {
		k.exitCritical()
		log.Debugf("TaskSuspend: invalid priority %d", prio)
		return ErrPrioInvalid
	}
	t := k.taskAt(prio)
	if t == nil {
		k.exitCritical()
		log.Debugf("TaskSuspend: no task at priority %d", prio)
		return ErrTaskNotExist
	}
	if t == k.idle {
		k.exitCritical()
		log.Debug("TaskSuspend: idle task")
		return ErrSysTask
	}
	self := t == k.cur
	k.clearReady(t.prio)
	t.stat |= StatSuspend
	k.exitCritical()

	if self {
		k.sched()
	}
	return nil
}

// TaskResume resumes a suspended task. A task still delayed or pending stays blocked.
func (k *Kernel) TaskResume(prio uint8) error {
	if prio >= k.cfg.LowestPrio {
		log.Debugf("TaskResume: invalid priority %d", prio)
		return ErrPrioInvalid
	}
	k.enterCritical()
	t := k.taskAt(prio)
	if t == nil {
		k.exitCritical()
		log.Debugf("TaskResume: no task at priority %d", prio)
		return ErrTaskNotExist
	}
	if t.stat&StatSuspend == 0 {
		k.exitCritical()
		log.Debugf("TaskResume: task %s not suspended", t.name)
		return ErrTaskNotSuspended
	}
	t.stat &^= StatSuspend
	if t.stat&StatPendAny == 0 && t.dly == 0 {
		k.setReady(t.prio)
	}
	k.exitCritical()

	k.sched()
	return nil
}

// TaskChangePrio moves a task to an unoccupied priority, PrioSelf for the caller.
func (k *Kernel) TaskChangePrio(oldPrio, newPrio uint8) error {
	if newPrio >= k.cfg.LowestPrio {
		log.Debugf("TaskChangePrio: invalid priority %d", newPrio)
		return ErrPrioInvalid
	}
	k.enterCritical()
	if oldPrio == PrioSelf {
		oldPrio = k.cur.prio
	}
	if oldPrio >= k.cfg.LowestPrio {
		k.exitCritical()
		log.Debugf("TaskChangePrio: invalid priority %d", oldPrio)
		return ErrPrioInvalid
	}
	if k.prioTcb[newPrio] != nil {
		k.exitCritical()
		log.Debugf("TaskChangePrio: priority %d exists", newPrio)
		return ErrPrioExist
	}
	t := k.taskAt(oldPrio)
	if t == nil {
		k.exitCritical()
		log.Debugf("TaskChangePrio: no task at priority %d", oldPrio)
		return ErrTaskNotExist
	}
	if k.isSysTask(t) {
		k.exitCritical()
		log.Debugf("TaskChangePrio: %s is a system task", t.name)
		return ErrSysTask
	}
	if t.mutexes > 0 {
		k.exitCritical()
		log.Debugf("TaskChangePrio: %s owns %d mutexes", t.name, t.mutexes)
		return ErrTaskOwnsMutex
	}
	k.moveTask(t, newPrio)
	t.basePrio = newPrio
	k.prioTcb[oldPrio] = nil
	k.prioTcb[newPrio] = t
	k.exitCritical()

	k.sched()
	return nil
}

// TaskQuery returns a snapshot of the task at prio, PrioSelf for the caller.
func (k *Kernel) TaskQuery(prio uint8) (TaskInfo, error) {
	k.enterCritical()
	defer k.exitCritical()
	if prio == PrioSelf {
		prio = k.cur.prio
	}
	if prio > k.cfg.LowestPrio {
		return TaskInfo{}, ErrPrioInvalid
	}
	t := k.taskAt(prio)
	if t == nil {
		return TaskInfo{}, ErrTaskNotExist
	}
	return TaskInfo{
		Prio:        t.prio,
		BasePrio:    t.basePrio,
		Name:        t.name,
		Stat:        t.stat,
		Pend:        t.pend,
		Dly:         t.dly,
		Mutexes:     t.mutexes,
		CtxSwitches: t.ctxSwitches,
	}, nil
}

func (k *Kernel) TaskNameGet(prio uint8) (string, error) {
	info, err := k.TaskQuery(prio)
	return info.Name, err
}

func (k *Kernel) TaskNameSet(prio uint8, name string) error {
	k.enterCritical()
	defer k.exitCritical()
	if prio == PrioSelf {
		prio = k.cur.prio
	}
	if prio > k.cfg.LowestPrio {
		return ErrPrioInvalid
	}
	t := k.taskAt(prio)
	if t == nil {
		return ErrTaskNotExist
	}
	t.name = name
	return nil
}
