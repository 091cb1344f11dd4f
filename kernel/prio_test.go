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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrioTblSetClear(t *testing.T) {
	var pt prioTbl
	require.True(t, pt.empty())

	for prio := uint8(0); prio <= PrioMax; prio++ {
		pt.set(prio)
		require.True(t, pt.isSet(prio))
		require.Equal(t, uint8(1)<<(prio&7), pt.tbl[prio>>3])
		require.Equal(t, uint8(1)<<(prio>>3), pt.grp)
		require.Equal(t, prio, pt.highest())
		pt.clear(prio)
		require.False(t, pt.isSet(prio))
		require.True(t, pt.empty())
	}
}

func TestPrioTblGroupBit(t *testing.T) {
	var pt prioTbl
	pt.set(9)
	pt.set(14)
	require.Equal(t, uint8(0x2), pt.grp)
	pt.clear(9)
	require.Equal(t, uint8(0x2), pt.grp)
	require.Equal(t, uint8(14), pt.highest())
	pt.clear(14)
	require.Equal(t, uint8(0), pt.grp)
	require.Panics(t, func() { pt.highest() })
}

func TestPrioTblHighestRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	var pt prioTbl
	present := make(map[uint8]bool)
	for i := 0; i < 5000; i++ {
		prio := uint8(rnd.Intn(PrioMax + 1))
		if present[prio] {
			pt.clear(prio)
			delete(present, prio)
		} else {
			pt.set(prio)
			present[prio] = true
		}
		if len(present) == 0 {
			require.True(t, pt.empty())
			continue
		}
		lowest := uint8(PrioMax)
		for p := range present {
			if p < lowest {
				lowest = p
			}
		}
		require.Equal(t, lowest, pt.highest())
		for y := 0; y < prioGroups; y++ {
			require.Equal(t, pt.tbl[y] != 0, pt.grp&(1<<uint(y)) != 0)
		}
	}
}

func TestPrioTblList(t *testing.T) {
	var pt prioTbl
	for _, prio := range []uint8{40, 3, 63, 8, 0} {
		pt.set(prio)
	}
	require.Equal(t, []uint8{0, 3, 8, 40, 63}, pt.list())
}

func TestFreeList(t *testing.T) {
	fl := newFreeList(3)
	require.Equal(t, 3, fl.free())
	for want := 0; want < 3; want++ {
		i, ok := fl.pop()
		require.True(t, ok)
		require.Equal(t, want, i)
	}
	_, ok := fl.pop()
	require.False(t, ok)

	fl.push(1)
	i, ok := fl.pop()
	require.True(t, ok)
	require.Equal(t, 1, i)

	fl.push(0)
	fl.push(1)
	fl.push(2)
	require.Panics(t, func() { fl.push(2) })
}
