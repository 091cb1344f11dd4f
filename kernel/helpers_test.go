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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// events reported by tasks, assertions stay in the test goroutine
type trail struct {
	mu  sync.Mutex
	evs []string
}

func (tr *trail) add(format string, args ...interface{}) {
	tr.mu.Lock()
	tr.evs = append(tr.evs, fmt.Sprintf(format, args...))
	tr.mu.Unlock()
}

func (tr *trail) get() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.evs...)
}

func newTestKernel(t *testing.T, opts ...func(cfg *Config)) *Kernel {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	k, err := New(cfg, nil)
	require.NoError(t, err)
	return k
}

func startTestKernel(t *testing.T, k *Kernel) {
	require.NoError(t, k.Start())
	k.WaitIdle()
}

// raise n tick interrupts, letting the tasks settle after each
func tickN(k *Kernel, n int) {
	for i := 0; i < n; i++ {
		k.Interrupt(k.TickSignal)
		k.WaitIdle()
	}
}

// run fn as an interrupt service routine and let the tasks settle
func isr(k *Kernel, fn func()) {
	k.Interrupt(fn)
	k.WaitIdle()
}

func taskStat(t *testing.T, k *Kernel, prio uint8) TaskStat {
	info, err := k.TaskQuery(prio)
	require.NoError(t, err)
	return info.Stat
}
