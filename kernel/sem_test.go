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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSemCount(t *testing.T) {
	k := newTestKernel(t)
	sem, err := k.SemCreate(0)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, k.SemPost(sem))
	}
	for i := 0; i < 4; i++ {
		cnt, err := k.SemAccept(sem)
		require.NoError(t, err)
		require.Equal(t, uint16(10-i), cnt)
	}
	data, err := k.SemQuery(sem)
	require.NoError(t, err)
	require.Equal(t, uint16(6), data.Count)

	require.NoError(t, k.SemSet(sem, 0))
	cnt, err := k.SemAccept(sem)
	require.NoError(t, err)
	require.Equal(t, uint16(0), cnt)

	require.NoError(t, k.SemSet(sem, semMax))
	require.Equal(t, ErrSemOverflow, k.SemPost(sem))
	data, _ = k.SemQuery(sem)
	require.Equal(t, uint16(semMax), data.Count)
}

func TestSemHandleErrors(t *testing.T) {
	k := newTestKernel(t)
	mbox, err := k.MboxCreate(nil)
	require.NoError(t, err)

	require.Equal(t, ErrPeventNil, k.SemPend(nil, 0))
	require.Equal(t, ErrPeventNil, k.SemPost(nil))
	require.Equal(t, ErrEventType, k.SemPost(mbox))
	_, err = k.SemQuery(mbox)
	require.Equal(t, ErrEventType, err)

	sem, err := k.SemCreate(1)
	require.NoError(t, err)
	require.Equal(t, ErrNotRunning, k.SemPend(sem, 0))
	_, err = k.SemPendAbort(sem, PendAbortOpt(7))
	require.Equal(t, ErrInvalidOpt, err)
	require.Equal(t, ErrInvalidOpt, k.SemDel(sem, DelOpt(7)))
	require.Equal(t, ErrSysTask, k.SemDel(k.tmrSem, DelAlways))

	require.NoError(t, k.SemDel(sem, DelNoPend))
	require.Equal(t, ErrEventType, k.SemPost(sem))
	require.Equal(t, 2, k.Stat().Events)

	startTestKernel(t, k)
	sem, err = k.SemCreate(1)
	require.NoError(t, err)
	isr(k, func() { err = k.SemPend(sem, 0) })
	require.Equal(t, ErrPendISR, err)
	isr(k, func() { _, err = k.SemCreate(0) })
	require.Equal(t, ErrCreateISR, err)
}

func TestSemWakeOrder(t *testing.T) {
	k := newTestKernel(t)
	var tr trail
	sem, err := k.SemCreate(0)
	require.NoError(t, err)
	for _, prio := range []uint8{30, 20, 25} {
		prio := prio
		require.NoError(t, k.TaskCreate(func(arg interface{}) {
			tr.add("%d woke %v", prio, k.SemPend(sem, 0))
		}, nil, prio, "waiter"))
	}

	startTestKernel(t, k)
	data, err := k.SemQuery(sem)
	require.NoError(t, err)
	require.Equal(t, []uint8{20, 25, 30}, data.Waiting)
	require.Equal(t, ErrTaskWaiting, k.SemSet(sem, 3))

	isr(k, func() { k.SemPost(sem) })
	require.Equal(t, []string{"20 woke <nil>"}, tr.get())
	isr(k, func() { k.SemPost(sem) })
	isr(k, func() { k.SemPost(sem) })
	require.Equal(t, []string{"20 woke <nil>", "25 woke <nil>", "30 woke <nil>"}, tr.get())

	data, _ = k.SemQuery(sem)
	require.Equal(t, uint16(0), data.Count)
	require.Empty(t, data.Waiting)
}

func TestSemTimeout(t *testing.T) {
	k := newTestKernel(t)
	var tr trail
	sem, err := k.SemCreate(0)
	require.NoError(t, err)
	require.NoError(t, k.TaskCreate(func(arg interface{}) {
		tr.add("%v", k.SemPend(sem, 3))
	}, nil, 10, "waiter"))

	startTestKernel(t, k)
	tickN(k, 2)
	require.Empty(t, tr.get())
	require.Equal(t, StatSem, taskStat(t, k, 10))

	tickN(k, 1)
	require.Equal(t, []string{ErrTimeout.Error()}, tr.get())
	data, err := k.SemQuery(sem)
	require.NoError(t, err)
	require.Empty(t, data.Waiting)

	isr(k, func() { err = k.SemPost(sem) })
	require.NoError(t, err)
	data, _ = k.SemQuery(sem)
	require.Equal(t, uint16(1), data.Count)
}

func TestSemPendAbort(t *testing.T) {
	k := newTestKernel(t)
	var tr trail
	sem, err := k.SemCreate(0)
	require.NoError(t, err)
	for _, prio := range []uint8{20, 10, 15} {
		prio := prio
		require.NoError(t, k.TaskCreate(func(arg interface{}) {
			tr.add("%d %v", prio, k.SemPend(sem, 0))
		}, nil, prio, "waiter"))
	}
	startTestKernel(t, k)

	var n int
	isr(k, func() { n, err = k.SemPendAbort(sem, PendAbortOne) })
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []string{"10 " + ErrPendAbort.Error()}, tr.get())

	isr(k, func() { n, err = k.SemPendAbort(sem, PendAbortAll) })
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []string{
		"10 " + ErrPendAbort.Error(),
		"15 " + ErrPendAbort.Error(),
		"20 " + ErrPendAbort.Error(),
	}, tr.get())

	isr(k, func() { n, err = k.SemPendAbort(sem, PendAbortAll) })
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestSemDel(t *testing.T) {
	k := newTestKernel(t)
	var tr trail
	sem, err := k.SemCreate(0)
	require.NoError(t, err)
	require.NoError(t, k.TaskCreate(func(arg interface{}) {
		tr.add("waiter %v", k.SemPend(sem, 0))
	}, nil, 10, "waiter"))
	require.NoError(t, k.TaskCreate(func(arg interface{}) {
		tr.add("nopend %v", k.SemDel(sem, DelNoPend))
		tr.add("always %v", k.SemDel(sem, DelAlways))
		tr.add("post %v", k.SemPost(sem))
	}, nil, 30, "controller"))

	startTestKernel(t, k)
	require.Equal(t, []string{
		"nopend " + ErrTaskWaiting.Error(),
		"waiter " + ErrPendAbort.Error(),
		"always <nil>",
		"post " + ErrEventType.Error(),
	}, tr.get())
	require.Equal(t, 1, k.Stat().Events)
}

func TestSemPostBeforeTimedOutWaiterRuns(t *testing.T) {
	k := newTestKernel(t)
	var tr trail
	sem, err := k.SemCreate(0)
	require.NoError(t, err)
	require.NoError(t, k.TaskCreate(func(arg interface{}) {
		tr.add("%v", k.SemPend(sem, 2))
	}, nil, 10, "waiter"))

	startTestKernel(t, k)
	tickN(k, 1)

	var data SemData
	var info TaskInfo
	isr(k, func() {
		k.TickSignal()
		data, _ = k.SemQuery(sem)
		info, _ = k.TaskQuery(10)
		err = k.SemPost(sem)
	})
	require.Equal(t, []uint8{10}, data.Waiting)
	require.Equal(t, PendTimeout, info.Pend)
	require.NoError(t, err)
	require.Equal(t, []string{"<nil>"}, tr.get())

	data, err = k.SemQuery(sem)
	require.NoError(t, err)
	require.Equal(t, uint16(0), data.Count)
	require.Empty(t, data.Waiting)
}
