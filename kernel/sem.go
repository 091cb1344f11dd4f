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

const semMax = 65535

// Semaphore snapshot
type SemData struct {
	Count   uint16
	Waiting []uint8 // priorities of the waiters, highest first
}

// SemCreate creates a counting semaphore holding cnt.
func (k *Kernel) SemCreate(cnt uint16) (*Event, error) {
	k.enterCritical()
	if k.intNesting > 0 {
		k.exitCritical()
		log.Debug("SemCreate: called from interrupt")
		return nil, ErrCreateISR
	}
	ev := k.eventAlloc(eventSem)
	if ev == nil {
		k.exitCritical()
		log.Debug("SemCreate: event pool empty")
		return nil, ErrEventPoolEmpty
	}
	ev.count = cnt
	k.exitCritical()
	return ev, nil
}

// SemPend takes one unit, waiting up to timeout ticks for it, 0 waits forever.
func (k *Kernel) SemPend(ev *Event, timeout uint32) error {
	k.enterCritical()
	if err := k.eventCheck(ev, eventSem); err != nil {
		k.exitCritical()
		log.Debugf("SemPend: %s", err)
		return err
	}
	if err := k.pendContext(); err != nil {
		k.exitCritical()
		log.Debugf("SemPend: %s", err)
		return err
	}
	if ev.count > 0 {
		ev.count--
		k.exitCritical()
		return nil
	}
	cur := k.cur
	cur.stat |= StatSem
	cur.pend = PendOK
	cur.dly = timeout
	k.eventTaskWait(ev)
	k.exitCritical()

	k.sched()

	k.enterCritical()
	err := k.eventPendResult()
	k.exitCritical()
	return err
}

// SemPost gives one unit to the highest priority waiter, or adds it to the count.
func (k *Kernel) SemPost(ev *Event) error {
	k.enterCritical()
	if err := k.eventCheck(ev, eventSem); err != nil {
		k.exitCritical()
		log.Debugf("SemPost: %s", err)
		return err
	}
	if !ev.wait.empty() {
		k.eventTaskRdy(ev, nil, StatSem, PendOK)
		k.exitCritical()
		k.sched()
		return nil
	}
	if ev.count == semMax {
		k.exitCritical()
		log.Debugf("SemPost: %s overflow", ev.name)
		return ErrSemOverflow
	}
	ev.count++
	k.exitCritical()
	return nil
}

// SemAccept takes one unit without blocking. It returns the count before the
// decrement, 0 when none was available.
func (k *Kernel) SemAccept(ev *Event) (uint16, error) {
	k.enterCritical()
	if err := k.eventCheck(ev, eventSem); err != nil {
		k.exitCritical()
		log.Debugf("SemAccept: %s", err)
		return 0, err
	}
	cnt := ev.count
	if cnt > 0 {
		ev.count--
	}
	k.exitCritical()
	return cnt, nil
}

// SemPendAbort wakes one or every waiter with an abort and returns how many.
func (k *Kernel) SemPendAbort(ev *Event, opt PendAbortOpt) (int, error) {
	if opt != PendAbortOne && opt != PendAbortAll {
		log.Debugf("SemPendAbort: invalid option %d", opt)
		return 0, ErrInvalidOpt
	}
	k.enterCritical()
	if err := k.eventCheck(ev, eventSem); err != nil {
		k.exitCritical()
		log.Debugf("SemPendAbort: %s", err)
		return 0, err
	}
	if ev.wait.empty() {
		k.exitCritical()
		return 0, nil
	}
	n := 1
	if opt == PendAbortAll {
		n = k.eventAbortAll(ev, StatSem)
	} else {
		k.eventTaskRdy(ev, nil, StatSem, PendAbort)
	}
	k.exitCritical()
	k.sched()
	return n, nil
}

// SemDel deletes a semaphore. DelNoPend refuses while tasks wait, DelAlways wakes
// them with an abort.
func (k *Kernel) SemDel(ev *Event, opt DelOpt) error {
	k.enterCritical()
	if err := k.eventCheck(ev, eventSem); err != nil {
		k.exitCritical()
		log.Debugf("SemDel: %s", err)
		return err
	}
	if k.intNesting > 0 {
		k.exitCritical()
		log.Debug("SemDel: called from interrupt")
		return ErrDelISR
	}
	if ev == k.tmrSem {
		k.exitCritical()
		log.Debug("SemDel: timer semaphore")
		return ErrSysTask
	}
	waiting := !ev.wait.empty()
	switch opt {
	case DelNoPend:
		if waiting {
			k.exitCritical()
			log.Debugf("SemDel: tasks waiting on %s", ev.name)
			return ErrTaskWaiting
		}
	case DelAlways:
		k.eventAbortAll(ev, StatSem)
	default:
		k.exitCritical()
		log.Debugf("SemDel: invalid option %d", opt)
		return ErrInvalidOpt
	}
	k.eventRelease(ev)
	k.exitCritical()
	if waiting {
		k.sched()
	}
	return nil
}

func (k *Kernel) SemQuery(ev *Event) (SemData, error) {
	k.enterCritical()
	if err := k.eventCheck(ev, eventSem); err != nil {
		k.exitCritical()
		return SemData{}, err
	}
	cnt, wait := ev.count, ev.wait
	k.exitCritical()
	return SemData{Count: cnt, Waiting: wait.list()}, nil
}

// SemSet sets the count of a semaphore no task waits on.
func (k *Kernel) SemSet(ev *Event, cnt uint16) error {
	k.enterCritical()
	if err := k.eventCheck(ev, eventSem); err != nil {
		k.exitCritical()
		log.Debugf("SemSet: %s", err)
		return err
	}
	if !ev.wait.empty() {
		k.exitCritical()
		log.Debugf("SemSet: tasks waiting on %s", ev.name)
		return ErrTaskWaiting
	}
	ev.count = cnt
	k.exitCritical()
	return nil
}
