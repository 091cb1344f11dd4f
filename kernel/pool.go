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

//
// Free index stack over a statically sized arena. Indices are handed out lowest
// first, and the backing slice never grows past the arena size.
//
type freeList struct {
	idx []int
}

func newFreeList(size int) freeList {
	fl := freeList{idx: make([]int, size)}
	for i := range fl.idx {
		fl.idx[i] = size - 1 - i
	}
	return fl
}

func (fl *freeList) pop() (int, bool) {
	n := len(fl.idx)
	if n == 0 {
		return -1, false
	}
	i := fl.idx[n-1]
	fl.idx = fl.idx[:n-1]
	return i, true
}

func (fl *freeList) push(i int) {
	if len(fl.idx) == cap(fl.idx) {
		panic("push: free list overflow, double free")
	}
	fl.idx = append(fl.idx, i)
}

// number of free slots
func (fl *freeList) free() int {
	return len(fl.idx)
}
