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

// Event flags
type Flags uint32

// Flag wait types
type WaitType uint8

const (
	WaitClrAll WaitType = iota // all bits of the mask cleared
	WaitClrAny                 // any bit of the mask cleared
	WaitSetAll                 // all bits of the mask set
	WaitSetAny                 // any bit of the mask set
)

// Flag wait request
type FlagWait struct {
	Type    WaitType
	Consume bool // flip the matched bits back once satisfied
}

// Flag post operations
type FlagOp uint8

const (
	FlagClr FlagOp = iota // clear the bits of the mask
	FlagSet               // set the bits of the mask
)

//
// Event flag group. Waiters are kept on a doubly linked list of nodes, each node
// carrying its own mask and wait request; nodes live in the task control blocks.
//
type FlagGroup struct {
	used  bool
	flags Flags
	head  *flagNode
	tail  *flagNode
	name  string
	idx   int
}

type flagNode struct {
	next, prev *flagNode
	tcb        *TCB
	grp        *FlagGroup // nil while not waiting
	mask       Flags
	wait       FlagWait
}

func (grp *FlagGroup) Name() string {
	return grp.name
}

func (grp *FlagGroup) SetName(name string) {
	grp.name = name
}

// evaluate a wait request against flags, returning the matched bits
func flagTest(flags, mask Flags, typ WaitType) (Flags, bool) {
	switch typ {
	case WaitSetAll:
		rdy := flags & mask
		return rdy, rdy == mask
	case WaitSetAny:
		rdy := flags & mask
		return rdy, rdy != 0
	case WaitClrAll:
		rdy := ^flags & mask
		return rdy, rdy == mask
	case WaitClrAny:
		rdy := ^flags & mask
		return rdy, rdy != 0
	}
	return 0, false
}

// consume the matched bits of a satisfied request
func (grp *FlagGroup) consume(rdy Flags, typ WaitType) {
	if typ == WaitSetAll || typ == WaitSetAny {
		grp.flags &^= rdy
	} else {
		grp.flags |= rdy
	}
}

func (k *Kernel) flagCheck(grp *FlagGroup) error {
	if grp == nil {
		return ErrFlagInvalidPgrp
	}
	if !grp.used {
		return ErrEventType
	}
	return nil
}

func (k *Kernel) flagLink(grp *FlagGroup, n *flagNode) {
	n.grp = grp
	n.next = nil
	n.prev = grp.tail
	if grp.tail != nil {
		grp.tail.next = n
	} else {
		grp.head = n
	}
	grp.tail = n
}

func (k *Kernel) flagUnlink(n *flagNode) {
	grp := n.grp
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		grp.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		grp.tail = n.prev
	}
	n.next, n.prev, n.grp = nil, nil, nil
}

// ready the task of a wait node, reporting whether it became ready to run
func (k *Kernel) flagTaskRdy(n *flagNode, rdy Flags, pend PendStat) bool {
	t := n.tcb
	k.flagUnlink(n)
	t.dly = 0
	t.flagsRdy = rdy
	t.stat &^= StatFlag
	t.pend = pend
	if t.stat&StatSuspend != 0 {
		return false
	}
	k.setReady(t.prio)
	return true
}

// FlagCreate creates an event flag group holding flags.
func (k *Kernel) FlagCreate(flags Flags) (*FlagGroup, error) {
	k.enterCritical()
	if k.intNesting > 0 {
		k.exitCritical()
		log.Debug("FlagCreate: called from interrupt")
		return nil, ErrCreateISR
	}
	i, ok := k.flagFree.pop()
	if !ok {
		k.exitCritical()
		log.Debug("FlagCreate: flag group pool depleted")
		return nil, ErrFlagGrpDepleted
	}
	grp := &k.flagGrps[i]
	grp.used = true
	grp.flags = flags
	k.exitCritical()
	return grp, nil
}

//
// FlagPend waits up to timeout ticks, 0 forever, for the bits of mask to reach the
// state requested by wait, returning the bits that satisfied it. With Consume the
// satisfying bits are flipped back.
//
func (k *Kernel) FlagPend(grp *FlagGroup, mask Flags, wait FlagWait, timeout uint32) (Flags, error) {
	if wait.Type > WaitSetAny {
		log.Debugf("FlagPend: invalid wait type %d", wait.Type)
		return 0, ErrFlagWaitType
	}
	k.enterCritical()
	if err := k.flagCheck(grp); err != nil {
		k.exitCritical()
		log.Debugf("FlagPend: %s", err)
		return 0, err
	}
	if err := k.pendContext(); err != nil {
		k.exitCritical()
		log.Debugf("FlagPend: %s", err)
		return 0, err
	}
	cur := k.cur
	if rdy, ok := flagTest(grp.flags, mask, wait.Type); ok {
		if wait.Consume {
			grp.consume(rdy, wait.Type)
		}
		cur.flagsRdy = rdy
		k.exitCritical()
		return rdy, nil
	}
	n := &cur.flag
	n.mask = mask
	n.wait = wait
	k.flagLink(grp, n)
	cur.stat |= StatFlag
	cur.pend = PendOK
	cur.dly = timeout
	k.clearReady(cur.prio)
	k.exitCritical()

	k.sched()

	k.enterCritical()
	var rdy Flags
	var err error
	switch cur.pend {
	case PendOK:
		rdy = cur.flagsRdy
	case PendAbort:
		err = ErrPendAbort
	case PendTimeout:
		if n.grp != nil {
			k.flagUnlink(n)
		}
		err = ErrTimeout
	}
	cur.stat &^= StatFlag
	cur.pend = PendOK
	k.exitCritical()
	return rdy, err
}

// FlagPendGetFlagsRdy returns the bits that made the calling task ready.
func (k *Kernel) FlagPendGetFlagsRdy() Flags {
	k.enterCritical()
	defer k.exitCritical()
	return k.cur.flagsRdy
}

//
// FlagPost sets or clears the bits of mask, then readies every waiter whose request
// is now satisfied, consuming bits as each requests it. Later waiters see the bits
// left by earlier ones. Returns the resulting flags.
//
func (k *Kernel) FlagPost(grp *FlagGroup, mask Flags, op FlagOp) (Flags, error) {
	if op != FlagClr && op != FlagSet {
		log.Debugf("FlagPost: invalid operation %d", op)
		return 0, ErrFlagInvalidOpt
	}
	k.enterCritical()
	if err := k.flagCheck(grp); err != nil {
		k.exitCritical()
		log.Debugf("FlagPost: %s", err)
		return 0, err
	}
	if op == FlagSet {
		grp.flags |= mask
	} else {
		grp.flags &^= mask
	}
	resched := false
	for n := grp.head; n != nil; {
		next := n.next
		if rdy, ok := flagTest(grp.flags, n.mask, n.wait.Type); ok {
			if n.wait.Consume {
				grp.consume(rdy, n.wait.Type)
			}
			if k.flagTaskRdy(n, rdy, PendOK) {
				resched = true
			}
		}
		n = next
	}
	flags := grp.flags
	k.exitCritical()

	if resched {
		k.sched()
	}
	return flags, nil
}

// FlagAccept checks the request without blocking. When unsatisfied it returns the
// matching bits found with ErrFlagNotRdy.
func (k *Kernel) FlagAccept(grp *FlagGroup, mask Flags, wait FlagWait) (Flags, error) {
	if wait.Type > WaitSetAny {
		log.Debugf("FlagAccept: invalid wait type %d", wait.Type)
		return 0, ErrFlagWaitType
	}
	k.enterCritical()
	if err := k.flagCheck(grp); err != nil {
		k.exitCritical()
		log.Debugf("FlagAccept: %s", err)
		return 0, err
	}
	rdy, ok := flagTest(grp.flags, mask, wait.Type)
	if !ok {
		k.exitCritical()
		return rdy, ErrFlagNotRdy
	}
	if wait.Consume {
		grp.consume(rdy, wait.Type)
	}
	k.exitCritical()
	return rdy, nil
}

// FlagDel deletes an event flag group. DelAlways wakes every waiter with an abort.
func (k *Kernel) FlagDel(grp *FlagGroup, opt DelOpt) error {
	k.enterCritical()
	if err := k.flagCheck(grp); err != nil {
		k.exitCritical()
		log.Debugf("FlagDel: %s", err)
		return err
	}
	if k.intNesting > 0 {
		k.exitCritical()
		log.Debug("FlagDel: called from interrupt")
		return ErrDelISR
	}
	waiting := grp.head != nil
	switch opt {
	case DelNoPend:
		if waiting {
			k.exitCritical()
			log.Debugf("FlagDel: tasks waiting on %s", grp.name)
			return ErrTaskWaiting
		}
	case DelAlways:
		for grp.head != nil {
			k.flagTaskRdy(grp.head, 0, PendAbort)
		}
	default:
		k.exitCritical()
		log.Debugf("FlagDel: invalid option %d", opt)
		return ErrInvalidOpt
	}
	idx := grp.idx
	*grp = FlagGroup{idx: idx}
	k.flagFree.push(idx)
	k.exitCritical()
	if waiting {
		k.sched()
	}
	return nil
}

func (k *Kernel) FlagQuery(grp *FlagGroup) (Flags, error) {
	k.enterCritical()
	defer k.exitCritical()
	if err := k.flagCheck(grp); err != nil {
		return 0, err
	}
	return grp.flags, nil
}

func (k *Kernel) FlagNameGet(grp *FlagGroup) (string, error) {
	k.enterCritical()
	defer k.exitCritical()
	if err := k.flagCheck(grp); err != nil {
		return "", err
	}
	return grp.name, nil
}

func (k *Kernel) FlagNameSet(grp *FlagGroup, name string) error {
	k.enterCritical()
	defer k.exitCritical()
	if err := k.flagCheck(grp); err != nil {
		return err
	}
	grp.name = name
	return nil
}

// FlagWaiting returns the priorities of the tasks waiting on grp, in arrival order.
func (k *Kernel) FlagWaiting(grp *FlagGroup) ([]uint8, error) {
	k.enterCritical()
	defer k.exitCritical()
	if err := k.flagCheck(grp); err != nil {
		return nil, err
	}
	var prios []uint8
	for n := grp.head; n != nil; n = n.next {
		prios = append(prios, n.tcb.prio)
	}
	return prios, nil
}
