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
	"sync"
	"time"
)

//
// Host port. Each task runs on its own goroutine and the cpu token admits one
// execution context at a time: the running task, or an interrupt. A task to task
// switch passes the token along with the resume signal, so it is never released in
// between. The idle task has no goroutine, running it releases the token.
//
type cpu struct {
	token sync.Mutex
}

func (c *cpu) acquire() {
	c.token.Lock()
}

func (c *cpu) release() {
	c.token.Unlock()
}

// hand the cpu to t
func (c *cpu) resume(t *TCB) {
	if t.run == nil {
		c.release()
		return
	}
	t.run <- struct{}{}
}

// block the calling goroutine until resumed, exit it when its task is deleted
func (c *cpu) park(run <-chan struct{}, kill <-chan struct{}) {
	select {
	case <-run:
	case <-kill:
		runtime.Goexit()
	}
}

// start the execution context of t, parked until first scheduled
func (k *Kernel) spawn(t *TCB) {
	run := make(chan struct{}, 1)
	kill := make(chan struct{})
	t.run, t.kill = run, kill
	entry, arg := t.entry, t.arg
	go func() {
		k.cpu.park(run, kill)
		entry(arg)
		k.taskReturn()
	}()
}

// Interrupt runs isr as an interrupt service routine: it waits for the cpu, brackets
// isr with IntEnter and IntExit and, when a task became ready while the cpu was idle,
// hands the cpu to it. A task that is running is interrupted only at Checkpoint.
func (k *Kernel) Interrupt(isr func()) {
	k.cpu.acquire()
	k.IntEnter()
	isr()
	if next := k.intExit(); next != nil {
		k.cpu.resume(next)
		return
	}
	k.cpu.release()
}

// Checkpoint opens an interrupt window in the calling task and performs any
// preemption the interrupts decided. Only tasks may call it.
func (k *Kernel) Checkpoint() {
	k.cpu.release()
	runtime.Gosched()
	k.cpu.acquire()
	k.sched()
}

// WaitIdle blocks until every task is blocked and the cpu is idle.
func (k *Kernel) WaitIdle() {
	for {
		k.cpu.acquire()
		k.enterCritical()
		idle := !k.running || k.cur == k.idle
		k.exitCritical()
		k.cpu.release()
		if idle {
			return
		}
		time.Sleep(time.Millisecond)
	}
}
