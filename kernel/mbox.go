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
	"reflect"

	"github.com/yeeco/rtk/log"
)

// Mailbox post options
type PostOpt struct {
	Broadcast bool // deliver to every waiter
	NoSched   bool // do not reschedule after the post
}

// Mailbox snapshot
type MboxData struct {
	Msg     interface{}
	Waiting []uint8
}

// a nil interface, or a nil pointer stored in one
func nilMsg(msg interface{}) bool {
	if msg == nil {
		return true
	}
	v := reflect.ValueOf(msg)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// MboxCreate creates a mailbox, holding msg unless it is nil.
func (k *Kernel) MboxCreate(msg interface{}) (*Event, error) {
	k.enterCritical()
	if k.intNesting > 0 {
		k.exitCritical()
		log.Debug("MboxCreate: called from interrupt")
		return nil, ErrCreateISR
	}
	ev := k.eventAlloc(eventMbox)
	if ev == nil {
		k.exitCritical()
		log.Debug("MboxCreate: event pool empty")
		return nil, ErrEventPoolEmpty
	}
	if !nilMsg(msg) {
		ev.msg = msg
	}
	k.exitCritical()
	return ev, nil
}

// MboxPend takes the message, waiting up to timeout ticks for one, 0 waits forever.
func (k *Kernel) MboxPend(ev *Event, timeout uint32) (interface{}, error) {
	k.enterCritical()
	if err := k.eventCheck(ev, eventMbox); err != nil {
		k.exitCritical()
		log.Debugf("MboxPend: %s", err)
		return nil, err
	}
	if err := k.pendContext(); err != nil {
		k.exitCritical()
		log.Debugf("MboxPend: %s", err)
		return nil, err
	}
	if msg := ev.msg; msg != nil {
		ev.msg = nil
		k.exitCritical()
		return msg, nil
	}
	cur := k.cur
	cur.stat |= StatMbox
	cur.pend = PendOK
	cur.dly = timeout
	k.eventTaskWait(ev)
	k.exitCritical()

	k.sched()

	k.enterCritical()
	msg := cur.msg
	cur.msg = nil
	err := k.eventPendResult()
	k.exitCritical()
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// MboxPost hands msg to the highest priority waiter, or deposits it.
func (k *Kernel) MboxPost(ev *Event, msg interface{}) error {
	return k.mboxPost("MboxPost", ev, msg, PostOpt{})
}

// MboxPostOpt posts with options: Broadcast hands msg to every waiter, NoSched
// leaves rescheduling to a later call.
func (k *Kernel) MboxPostOpt(ev *Event, msg interface{}, opt PostOpt) error {
	return k.mboxPost("MboxPostOpt", ev, msg, opt)
}

func (k *Kernel) mboxPost(fn string, ev *Event, msg interface{}, opt PostOpt) error {
	if nilMsg(msg) {
		log.Debugf("%s: nil message", fn)
		return ErrPostNil
	}
	k.enterCritical()
	if err := k.eventCheck(ev, eventMbox); err != nil {
		k.exitCritical()
		log.Debugf("%s: %s", fn, err)
		return err
	}
	if !ev.wait.empty() {
		if opt.Broadcast {
			for !ev.wait.empty() {
				k.eventTaskRdy(ev, msg, StatMbox, PendOK)
			}
		} else {
			k.eventTaskRdy(ev, msg, StatMbox, PendOK)
		}
		k.exitCritical()
		if !opt.NoSched {
			k.sched()
		}
		return nil
	}
	if ev.msg != nil {
		k.exitCritical()
		log.Debugf("%s: %s full", fn, ev.name)
		return ErrMboxFull
	}
	ev.msg = msg
	k.exitCritical()
	return nil
}

// MboxAccept takes the message without blocking, nil when empty.
func (k *Kernel) MboxAccept(ev *Event) (interface{}, error) {
	k.enterCritical()
	defer k.exitCritical()
	if err := k.eventCheck(ev, eventMbox); err != nil {
		return nil, err
	}
	msg := ev.msg
	ev.msg = nil
	return msg, nil
}

// MboxPendAbort wakes one or every waiter with an abort and returns how many.
func (k *Kernel) MboxPendAbort(ev *Event, opt PendAbortOpt) (int, error) {
	if opt != PendAbortOne && opt != PendAbortAll {
		log.Debugf("MboxPendAbort: invalid option %d", opt)
		return 0, ErrInvalidOpt
	}
	k.enterCritical()
	if err := k.eventCheck(ev, eventMbox); err != nil {
		k.exitCritical()
		log.Debugf("MboxPendAbort: %s", err)
		return 0, err
	}
	if ev.wait.empty() {
		k.exitCritical()
		return 0, nil
	}
	n := 1
	if opt == PendAbortAll {
		n = k.eventAbortAll(ev, StatMbox)
	} else {
		k.eventTaskRdy(ev, nil, StatMbox, PendAbort)
	}
	k.exitCritical()
	k.sched()
	return n, nil
}

// MboxDel deletes a mailbox. DelAlways wakes every waiter with an abort.
func (k *Kernel) MboxDel(ev *Event, opt DelOpt) error {
	k.enterCritical()
	if err := k.eventCheck(ev, eventMbox); err != nil {
		k.exitCritical()
		log.Debugf("MboxDel: %s", err)
		return err
	}
	if k.intNesting > 0 {
		k.exitCritical()
		log.Debug("MboxDel: called from interrupt")
		return ErrDelISR
	}
	waiting := !ev.wait.empty()
	switch opt {
	case DelNoPend:
		if waiting {
			k.exitCritical()
			log.Debugf("MboxDel: tasks waiting on %s", ev.name)
			return ErrTaskWaiting
		}
	case DelAlways:
		k.eventAbortAll(ev, StatMbox)
	default:
		k.exitCritical()
		log.Debugf("MboxDel: invalid option %d", opt)
		return ErrInvalidOpt
	}
	k.eventRelease(ev)
	k.exitCritical()
	if waiting {
		k.sched()
	}
	return nil
}

func (k *Kernel) MboxQuery(ev *Event) (MboxData, error) {
	k.enterCritical()
	if err := k.eventCheck(ev, eventMbox); err != nil {
		k.exitCritical()
		return MboxData{}, err
	}
	msg, wait := ev.msg, ev.wait
	k.exitCritical()
	return MboxData{Msg: msg, Waiting: wait.list()}, nil
}
