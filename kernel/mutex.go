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

// Ceiling of a mutex without priority ceiling promotion
const CeilingDisabled = uint8(0xFF)

// Marks a priority slot reserved for a mutex ceiling
var tcbReserved = &TCB{name: "reserved"}

// Mutex snapshot
type MutexData struct {
	Available bool
	OwnerPrio uint8 // current priority of the owner
	OrigPrio  uint8 // priority of the owner at acquisition
	Ceiling   uint8 // CeilingDisabled without promotion
	Waiting   []uint8
}

//
// MutexCreate creates a mutex with a priority ceiling. The ceiling priority slot is
// reserved for as long as the mutex exists: no task can be created there, and an
// owner is promoted to it while other tasks wait.
//
func (k *Kernel) MutexCreate(ceiling uint8) (*Event, error) {
	if ceiling != CeilingDisabled && ceiling >= k.cfg.LowestPrio {
		log.Debugf("MutexCreate: invalid ceiling %d", ceiling)
		return nil, ErrPrioInvalid
	}
	k.enterCritical()
	if k.intNesting > 0 {
		k.exitCritical()
		log.Debug("MutexCreate: called from interrupt")
		return nil, ErrCreateISR
	}
	if ceiling != CeilingDisabled && k.prioTcb[ceiling] != nil {
		k.exitCritical()
		log.Debugf("MutexCreate: ceiling priority %d exists", ceiling)
		return nil, ErrPrioExist
	}
	ev := k.eventAlloc(eventMutex)
	if ev == nil {
		k.exitCritical()
		log.Debug("MutexCreate: event pool empty")
		return nil, ErrEventPoolEmpty
	}
	ev.ceiling = ceiling
	ev.ceilingOn = ceiling != CeilingDisabled
	if ev.ceilingOn {
		k.prioTcb[ceiling] = tcbReserved
	}
	k.exitCritical()
	return ev, nil
}

// take ownership for t, reporting whether t runs above the ceiling
func (k *Kernel) mutexGrant(ev *Event, t *TCB) bool {
	ev.owner = t
	ev.ownerPrio = t.prio
	t.mutexes++
	return ev.ceilingOn && t.prio < ev.ceiling
}

// raise the owner to the ceiling when a task more urgent than the owner waits
func (k *Kernel) mutexPromote(ev *Event, waiter uint8) {
	owner := ev.owner
	if !ev.ceilingOn || waiter >= owner.basePrio || owner.basePrio <= ev.ceiling {
		return
	}
	ev.promoted = true
	k.mutexReprio(owner)
}

//
// Move t to the most urgent ceiling among the mutexes it is promoted for, or back to
// its base priority when there is none. A ceiling slot left behind goes back to its
// mutex.
//
func (k *Kernel) mutexReprio(t *TCB) {
	prio := t.basePrio
	for i := range k.events {
		ev := &k.events[i]
		if ev.typ == eventMutex && ev.owner == t && ev.promoted && ev.ceiling < prio {
			prio = ev.ceiling
		}
	}
	old := t.prio
	if old == prio {
		return
	}
	if old != t.basePrio {
		k.prioTcb[old] = tcbReserved
	}
	k.moveTask(t, prio)
	if prio != t.basePrio {
		k.prioTcb[prio] = t
	}
}

// release ev held by owner, undoing the promotion it caused
func (k *Kernel) mutexRelease(ev *Event) {
	owner := ev.owner
	ev.owner = nil
	ev.promoted = false
	owner.mutexes--
	k.mutexReprio(owner)
}

// MutexPend acquires the mutex, waiting up to timeout ticks, 0 waits forever. When
// the caller runs above the ceiling the mutex is granted and ErrCeilingViolation
// is returned.
func (k *Kernel) MutexPend(ev *Event, timeout uint32) error {
	k.enterCritical()
	if err := k.eventCheck(ev, eventMutex); err != nil {
		k.exitCritical()
		log.Debugf("MutexPend: %s", err)
		return err
	}
	if err := k.pendContext(); err != nil {
		k.exitCritical()
		log.Debugf("MutexPend: %s", err)
		return err
	}
	cur := k.cur
	if ev.owner == nil {
		diag := k.mutexGrant(ev, cur)
		k.exitCritical()
		if diag {
			log.Warnf("MutexPend: task %s at priority %d above ceiling %d of %s",
				cur.name, cur.prio, ev.ceiling, ev.name)
			return ErrCeilingViolation
		}
		return nil
	}
	if ev.owner == cur {
		k.exitCritical()
		log.Debugf("MutexPend: task %s already owns %s", cur.name, ev.name)
		return ErrMutexNested
	}
	k.mutexPromote(ev, cur.prio)
	cur.stat |= StatMutex
	cur.pend = PendOK
	cur.dly = timeout
	cur.ceilDiag = false
	k.eventTaskWait(ev)
	k.exitCritical()

	k.sched()

	k.enterCritical()
	err := k.eventPendResult()
	diag := cur.ceilDiag
	cur.ceilDiag = false
	k.exitCritical()
	if err == nil && diag {
		log.Warnf("MutexPend: task %s at priority %d above ceiling %d of %s",
			cur.name, cur.prio, ev.ceiling, ev.name)
		return ErrCeilingViolation
	}
	return err
}

// MutexAccept acquires the mutex without blocking, reporting whether it did.
func (k *Kernel) MutexAccept(ev *Event) (bool, error) {
	k.enterCritical()
	if err := k.eventCheck(ev, eventMutex); err != nil {
		k.exitCritical()
		log.Debugf("MutexAccept: %s", err)
		return false, err
	}
	if k.intNesting > 0 {
		k.exitCritical()
		log.Debug("MutexAccept: called from interrupt")
		return false, ErrPendISR
	}
	if ev.owner != nil {
		k.exitCritical()
		return false, nil
	}
	cur := k.cur
	diag := k.mutexGrant(ev, cur)
	k.exitCritical()
	if diag {
		log.Warnf("MutexAccept: task %s at priority %d above ceiling %d of %s",
			cur.name, cur.prio, ev.ceiling, ev.name)
		return true, ErrCeilingViolation
	}
	return true, nil
}

// MutexPost releases the mutex, restoring the caller's priority and handing the
// mutex to the highest priority waiter. A caller still promoted by another mutex
// stays at that ceiling.
func (k *Kernel) MutexPost(ev *Event) error {
	k.enterCritical()
	if err := k.eventCheck(ev, eventMutex); err != nil {
		k.exitCritical()
		log.Debugf("MutexPost: %s", err)
		return err
	}
	if k.intNesting > 0 {
		k.exitCritical()
		log.Debug("MutexPost: called from interrupt")
		return ErrPostISR
	}
	cur := k.cur
	if ev.owner != cur {
		k.exitCritical()
		log.Debugf("MutexPost: task %s does not own %s", cur.name, ev.name)
		return ErrNotMutexOwner
	}
	k.mutexRelease(ev)
	if ev.wait.empty() {
		k.exitCritical()
		k.sched()
		return nil
	}
	t := k.eventTaskRdy(ev, nil, StatMutex, PendOK)
	t.ceilDiag = k.mutexGrant(ev, t)
	if !ev.wait.empty() {
		k.mutexPromote(ev, ev.wait.highest())
	}
	k.exitCritical()
	k.sched()
	return nil
}

// MutexDel deletes a mutex. DelAlways restores a promoted owner and wakes every
// waiter with an abort.
func (k *Kernel) MutexDel(ev *Event, opt DelOpt) error {
	k.enterCritical()
	if err := k.eventCheck(ev, eventMutex); err != nil {
		k.exitCritical()
		log.Debugf("MutexDel: %s", err)
		return err
	}
	if k.intNesting > 0 {
		k.exitCritical()
		log.Debug("MutexDel: called from interrupt")
		return ErrDelISR
	}
	waiting := !ev.wait.empty()
	switch opt {
	case DelNoPend:
		if waiting {
			k.exitCritical()
			log.Debugf("MutexDel: tasks waiting on %s", ev.name)
			return ErrTaskWaiting
		}
	case DelAlways:
		k.eventAbortAll(ev, StatMutex)
	default:
		k.exitCritical()
		log.Debugf("MutexDel: invalid option %d", opt)
		return ErrInvalidOpt
	}
	if ev.owner != nil {
		k.mutexRelease(ev)
	}
	if ev.ceilingOn {
		k.prioTcb[ev.ceiling] = nil
	}
	k.eventRelease(ev)
	k.exitCritical()
	k.sched()
	return nil
}

func (k *Kernel) MutexQuery(ev *Event) (MutexData, error) {
	k.enterCritical()
	if err := k.eventCheck(ev, eventMutex); err != nil {
		k.exitCritical()
		return MutexData{}, err
	}
	md := MutexData{
		Available: ev.owner == nil,
		Ceiling:   ev.ceiling,
	}
	if ev.owner != nil {
		md.OwnerPrio = ev.owner.prio
		md.OrigPrio = ev.ownerPrio
	}
	wait := ev.wait
	k.exitCritical()
	md.Waiting = wait.list()
	return md, nil
}
