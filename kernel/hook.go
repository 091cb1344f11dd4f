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
// Kernel hooks, called inside the critical section: an implementation must not call
// back into the kernel and must return promptly.
//
type Hook interface {
	TaskCreate(prio uint8, name string)
	TaskDel(prio uint8, name string)
	TaskSw(from, to uint8)
	TimeTick(tick uint32)
	TimerExpire(name string, tick uint32)
}

// Hook doing nothing, embed it to implement part of Hook
type NopHook struct{}

func (NopHook) TaskCreate(prio uint8, name string)   {}
func (NopHook) TaskDel(prio uint8, name string)      {}
func (NopHook) TaskSw(from, to uint8)                {}
func (NopHook) TimeTick(tick uint32)                 {}
func (NopHook) TimerExpire(name string, tick uint32) {}
