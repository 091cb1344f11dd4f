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
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlagTest(t *testing.T) {
	tests := []struct {
		flags, mask Flags
		typ         WaitType
		rdy         Flags
		ok          bool
	}{
		{0x0F, 0x03, WaitSetAll, 0x03, true},
		{0x0D, 0x03, WaitSetAll, 0x01, false},
		{0x0D, 0x03, WaitSetAny, 0x01, true},
		{0x0C, 0x03, WaitSetAny, 0x00, false},
		{0x0C, 0x03, WaitClrAll, 0x03, true},
		{0x0D, 0x03, WaitClrAll, 0x02, false},
		{0x0D, 0x03, WaitClrAny, 0x02, true},
		{0x0F, 0x03, WaitClrAny, 0x00, false},
		{0x0F, 0x03, WaitType(9), 0x00, false},
	}
	for _, test := range tests {
		rdy, ok := flagTest(test.flags, test.mask, test.typ)
		require.Equal(t, test.rdy, rdy, "flags %#x mask %#x type %d", test.flags, test.mask, test.typ)
		require.Equal(t, test.ok, ok, "flags %#x mask %#x type %d", test.flags, test.mask, test.typ)
	}
}

func TestFlagAccept(t *testing.T) {
	k := newTestKernel(t)
	grp, err := k.FlagCreate(0x0F)
	require.NoError(t, err)

	rdy, err := k.FlagAccept(grp, 0x03, FlagWait{Type: WaitSetAll, Consume: true})
	require.NoError(t, err)
	require.Equal(t, Flags(0x03), rdy)
	flags, _ := k.FlagQuery(grp)
	require.Equal(t, Flags(0x0C), flags)

	rdy, err = k.FlagAccept(grp, 0x06, FlagWait{Type: WaitSetAll})
	require.Equal(t, ErrFlagNotRdy, err)
	require.Equal(t, Flags(0x04), rdy)

	rdy, err = k.FlagAccept(grp, 0x03, FlagWait{Type: WaitClrAll, Consume: true})
	require.NoError(t, err)
	require.Equal(t, Flags(0x03), rdy)
	flags, _ = k.FlagQuery(grp)
	require.Equal(t, Flags(0x0F), flags)

	flags, err = k.FlagPost(grp, 0x05, FlagClr)
	require.NoError(t, err)
	require.Equal(t, Flags(0x0A), flags)

	_, err = k.FlagAccept(grp, 0x1, FlagWait{Type: WaitType(4)})
	require.Equal(t, ErrFlagWaitType, err)
	_, err = k.FlagPost(grp, 0x1, FlagOp(2))
	require.Equal(t, ErrFlagInvalidOpt, err)
	_, err = k.FlagPend(nil, 0x1, FlagWait{Type: WaitSetAny}, 0)
	require.Equal(t, ErrFlagInvalidPgrp, err)
	_, err = k.FlagPend(grp, 0x1, FlagWait{Type: WaitSetAny}, 0)
	require.Equal(t, ErrNotRunning, err)
}

func TestFlagPool(t *testing.T) {
	k := newTestKernel(t, func(cfg *Config) { cfg.MaxFlagGroups = 2 })
	a, err := k.FlagCreate(0)
	require.NoError(t, err)
	_, err = k.FlagCreate(0)
	require.NoError(t, err)
	_, err = k.FlagCreate(0)
	require.Equal(t, ErrFlagGrpDepleted, err)
	require.True(t, err.(Errno).IsExhausted())

	require.NoError(t, k.FlagNameSet(a, "rendezvous"))
	name, err := k.FlagNameGet(a)
	require.NoError(t, err)
	require.Equal(t, "rendezvous", name)
	require.Equal(t, "rendezvous", a.Name())

	require.NoError(t, k.FlagDel(a, DelNoPend))
	_, err = k.FlagNameGet(a)
	require.Equal(t, ErrEventType, err)
	_, err = k.FlagQuery(a)
	require.Equal(t, ErrEventType, err)
	_, err = k.FlagCreate(0)
	require.NoError(t, err)
	require.Equal(t, 2, k.Stat().FlagGroups)
}

func TestFlagPendSetAll(t *testing.T) {
	for _, consume := range []bool{false, true} {
		t.Run(fmt.Sprintf("consume=%v", consume), func(t *testing.T) {
			k := newTestKernel(t)
			var tr trail
			grp, err := k.FlagCreate(0)
			require.NoError(t, err)
			require.NoError(t, k.TaskCreate(func(arg interface{}) {
				rdy, err := k.FlagPend(grp, 0x03, FlagWait{Type: WaitSetAll, Consume: consume}, 0)
				tr.add("rdy %#x %v", rdy, err)
				tr.add("flags rdy %#x", k.FlagPendGetFlagsRdy())
			}, nil, 10, "waiter"))

			startTestKernel(t, k)
			var flags Flags
			isr(k, func() { flags, err = k.FlagPost(grp, 0x01, FlagSet) })
			require.NoError(t, err)
			require.Equal(t, Flags(0x01), flags)
			require.Empty(t, tr.get())
			require.Equal(t, StatFlag, taskStat(t, k, 10))

			isr(k, func() { flags, err = k.FlagPost(grp, 0x06, FlagSet) })
			require.NoError(t, err)
			require.Equal(t, []string{"rdy 0x3 <nil>", "flags rdy 0x3"}, tr.get())

			want := Flags(0x07)
			if consume {
				want = 0x04
			}
			require.Equal(t, want, flags)
			got, _ := k.FlagQuery(grp)
			require.Equal(t, want, got)
		})
	}
}

func TestFlagPendClrAny(t *testing.T) {
	k := newTestKernel(t)
	var tr trail
	grp, err := k.FlagCreate(0xFF)
	require.NoError(t, err)
	require.NoError(t, k.TaskCreate(func(arg interface{}) {
		rdy, err := k.FlagPend(grp, 0x30, FlagWait{Type: WaitClrAny, Consume: true}, 0)
		tr.add("rdy %#x %v", rdy, err)
	}, nil, 10, "waiter"))

	startTestKernel(t, k)
	var flags Flags
	isr(k, func() { flags, err = k.FlagPost(grp, 0x11, FlagClr) })
	require.NoError(t, err)
	require.Equal(t, []string{"rdy 0x10 <nil>"}, tr.get())
	require.Equal(t, Flags(0xFE), flags)
}

func TestFlagWaitersInArrivalOrder(t *testing.T) {
	k := newTestKernel(t)
	var tr trail
	grp, err := k.FlagCreate(0)
	require.NoError(t, err)
	wait := FlagWait{Type: WaitSetAny, Consume: true}
	require.NoError(t, k.TaskCreate(func(arg interface{}) {
		k.TimeDly(1)
		rdy, err := k.FlagPend(grp, 0x1, wait, 0)
		tr.add("10 got %#x %v", rdy, err)
	}, nil, 10, "late"))
	require.NoError(t, k.TaskCreate(func(arg interface{}) {
		rdy, err := k.FlagPend(grp, 0x1, wait, 0)
		tr.add("20 got %#x %v", rdy, err)
	}, nil, 20, "early"))

	startTestKernel(t, k)
	tickN(k, 1)
	waiting, err := k.FlagWaiting(grp)
	require.NoError(t, err)
	require.Equal(t, []uint8{20, 10}, waiting)

	isr(k, func() { k.FlagPost(grp, 0x1, FlagSet) })
	require.Equal(t, []string{"20 got 0x1 <nil>"}, tr.get())
	flags, _ := k.FlagQuery(grp)
	require.Equal(t, Flags(0), flags)
	waiting, _ = k.FlagWaiting(grp)
	require.Equal(t, []uint8{10}, waiting)

	isr(k, func() { k.FlagPost(grp, 0x1, FlagSet) })
	require.Equal(t, []string{"20 got 0x1 <nil>", "10 got 0x1 <nil>"}, tr.get())
}

func TestFlagTimeoutAndDel(t *testing.T) {
	k := newTestKernel(t)
	var tr trail
	grp, err := k.FlagCreate(0)
	require.NoError(t, err)
	require.NoError(t, k.TaskCreate(func(arg interface{}) {
		_, err := k.FlagPend(grp, 0x1, FlagWait{Type: WaitSetAll}, 2)
		tr.add("waiter %v", err)
		_, err = k.FlagPend(grp, 0x1, FlagWait{Type: WaitSetAll}, 0)
		tr.add("waiter %v", err)
	}, nil, 10, "waiter"))
	require.NoError(t, k.TaskCreate(func(arg interface{}) {
		k.TimeDly(3)
		tr.add("nopend %v", k.FlagDel(grp, DelNoPend))
		tr.add("always %v", k.FlagDel(grp, DelAlways))
	}, nil, 30, "controller"))

	startTestKernel(t, k)
	tickN(k, 2)
	require.Equal(t, []string{"waiter " + ErrTimeout.Error()}, tr.get())
	waiting, err := k.FlagWaiting(grp)
	require.NoError(t, err)
	require.Equal(t, []uint8{10}, waiting)

	tickN(k, 1)
	require.Equal(t, []string{
		"waiter " + ErrTimeout.Error(),
		"nopend " + ErrTaskWaiting.Error(),
		"waiter " + ErrPendAbort.Error(),
		"always <nil>",
	}, tr.get())
	_, err = k.FlagQuery(grp)
	require.Equal(t, ErrEventType, err)
}
