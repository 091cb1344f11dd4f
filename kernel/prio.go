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
	"math/bits"
)

const (
	prioGroups = 8                  // groups of the two level index
	PrioMax    = prioGroups*8 - 1   // highest configurable lowest priority
	PrioSelf   = uint8(0xFF)        // the calling task
)

//
// Two level priority bitmap: bit y of grp is set iff tbl[y] is not zero, bit x of
// tbl[y] is set iff priority y<<3|x is present. The ready index and every wait list
// are prioTbls.
//
type prioTbl struct {
	grp uint8
	tbl [prioGroups]uint8
}

func (pt *prioTbl) set(prio uint8) {
	y := prio >> 3
	pt.tbl[y] |= 1 << (prio & 7)
	pt.grp |= 1 << y
}

func (pt *prioTbl) clear(prio uint8) {
	y := prio >> 3
	pt.tbl[y] &^= 1 << (prio & 7)
	if pt.tbl[y] == 0 {
		pt.grp &^= 1 << y
	}
}

func (pt *prioTbl) isSet(prio uint8) bool {
	return pt.tbl[prio>>3]&(1<<(prio&7)) != 0
}

func (pt *prioTbl) empty() bool {
	return pt.grp == 0
}

// highest present priority, the table must not be empty
func (pt *prioTbl) highest() uint8 {
	if pt.grp == 0 {
		panic("highest: empty priority table")
	}
	y := bits.TrailingZeros8(pt.grp)
	x := bits.TrailingZeros8(pt.tbl[y])
	return uint8(y<<3 | x)
}

// present priorities, highest first
func (pt *prioTbl) list() []uint8 {
	var prios []uint8
	for y := 0; y < prioGroups; y++ {
		row := pt.tbl[y]
		for row != 0 {
			x := bits.TrailingZeros8(row)
			prios = append(prios, uint8(y<<3|x))
			row &^= 1 << uint(x)
		}
	}
	return prios
}

//
// Ready index operations, called with the critical section held
//

func (k *Kernel) setReady(prio uint8) {
	k.rdy.set(prio)
}

func (k *Kernel) clearReady(prio uint8) {
	k.rdy.clear(prio)
}

// HighestReady returns the highest ready priority. The idle task keeps the index
// non empty once the kernel is initialized.
func (k *Kernel) HighestReady() uint8 {
	k.enterCritical()
	defer k.exitCritical()
	return k.rdy.highest()
}

//
// Move task to priority newPrio in whichever of the ready index and its wait list it
// is present in. A task readied by a timeout is in both until it unlinks itself.
//
func (k *Kernel) moveTask(t *TCB, newPrio uint8) {
	old := t.prio
	if k.rdy.isSet(old) {
		k.rdy.clear(old)
		k.rdy.set(newPrio)
	}
	if ev := t.event; ev != nil && ev.wait.isSet(old) {
		ev.wait.clear(old)
		ev.wait.set(newPrio)
	}
	t.prio = newPrio
}
