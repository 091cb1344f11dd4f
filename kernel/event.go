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

// Event types
type eventType uint8

const (
	eventUnused eventType = iota
	eventSem
	eventMbox
	eventMutex
)

var eventTypeName = []string{
	"unused",
	"semaphore",
	"mailbox",
	"mutex",
}

// Delete options
type DelOpt uint8

const (
	DelNoPend DelOpt = iota // delete only when no task waits
	DelAlways               // delete, waking every waiter with an abort
)

// Pend abort options
type PendAbortOpt uint8

const (
	PendAbortOne PendAbortOpt = iota // abort the highest priority waiter
	PendAbortAll                     // abort every waiter
)

//
// Event control block shared by semaphores, mailboxes and mutexes. wait is the
// wait list: the priorities of the tasks pending on the event.
//
type Event struct {
	typ  eventType
	name string
	wait prioTbl

	count uint16      // semaphore
	msg   interface{} // mailbox

	owner     *TCB  // mutex owner, nil while available
	ownerPrio uint8 // owner priority at acquisition
	ceiling   uint8 // reserved ceiling priority
	ceilingOn bool
	promoted  bool // owner raised to the ceiling for a waiter

	idx int
}

func (ev *Event) Name() string {
	return ev.name
}

func (ev *Event) SetName(name string) {
	ev.name = name
}

func (k *Kernel) eventAlloc(typ eventType) *Event {
	i, ok := k.eventFree.pop()
	if !ok {
		return nil
	}
	ev := &k.events[i]
	ev.typ = typ
	return ev
}

func (k *Kernel) eventRelease(ev *Event) {
	idx := ev.idx
	*ev = Event{idx: idx}
	k.eventFree.push(idx)
}

// check an event handle against the expected type
func (k *Kernel) eventCheck(ev *Event, typ eventType) error {
	if ev == nil {
		return ErrPeventNil
	}
	if ev.typ != typ {
		return ErrEventType
	}
	return nil
}

// a blocking call is allowed, critical section held
func (k *Kernel) pendContext() error {
	switch {
	case k.intNesting > 0:
		return ErrPendISR
	case k.lockNesting > 0:
		return ErrPendLocked
	case !k.running:
		return ErrNotRunning
	}
	return nil
}

//
// Block the running task on ev: its priority leaves the ready index and enters the
// wait list. The caller has set the status bits and the timeout.
//
func (k *Kernel) eventTaskWait(ev *Event) {
	t := k.cur
	t.event = ev
	ev.wait.set(t.prio)
	k.clearReady(t.prio)
}

//
// Ready the highest priority waiter of ev with the outcome pend, delivering msg.
// Returns the readied task.
//
func (k *Kernel) eventTaskRdy(ev *Event, msg interface{}, msk TaskStat, pend PendStat) *TCB {
	prio := ev.wait.highest()
	t := k.prioTcb[prio]
	if t == nil || t == tcbReserved || t.event != ev {
		panic("eventTaskRdy: wait list out of sync")
	}
	t.dly = 0
	t.msg = msg
	t.stat &^= msk
	t.pend = pend
	if t.stat&StatSuspend == 0 {
		k.setReady(prio)
	}
	k.eventTaskRemove(t, ev)
	return t
}

// unlink t from the wait list of ev
func (k *Kernel) eventTaskRemove(t *TCB, ev *Event) {
	ev.wait.clear(t.prio)
	t.event = nil
}

//
// Collect the outcome of a pend the running task woke from, unlinking it when it
// timed out, and reset its pend state.
//
func (k *Kernel) eventPendResult() error {
	t := k.cur
	var err error
	switch t.pend {
	case PendAbort:
		err = ErrPendAbort
	case PendTimeout:
		if t.event != nil {
			k.eventTaskRemove(t, t.event)
		}
		err = ErrTimeout
	}
	t.stat &^= StatPendAny
	t.pend = PendOK
	t.event = nil
	return err
}

// wake every waiter of ev as aborted, returns how many
func (k *Kernel) eventAbortAll(ev *Event, msk TaskStat) int {
	n := 0
	for !ev.wait.empty() {
		k.eventTaskRdy(ev, nil, msk, PendAbort)
		n++
	}
	return n
}

func (typ eventType) String() string {
	if int(typ) >= len(eventTypeName) {
		return "invalid"
	}
	return eventTypeName[typ]
}
