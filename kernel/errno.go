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
)

// Kernel errnos
type Errno uint8

const (
	ErrNone               Errno = iota // none of errors
	ErrTimeout                         // pend timed out
	ErrPendAbort                       // pend aborted
	ErrPendISR                         // pend from interrupt context
	ErrPendLocked                      // pend with the scheduler locked
	ErrPostISR                         // mutex post from interrupt context
	ErrCreateISR                       // create from interrupt context
	ErrDelISR                          // delete from interrupt context
	ErrNotRunning                      // kernel not started
	ErrAlreadyRunning                  // kernel started twice
	ErrSchedLocked                     // operation requires the scheduler unlocked
	ErrPeventNil                       // nil event
	ErrEventType                       // wrong object type
	ErrInvalidOpt                      // invalid option
	ErrInvalidConfig                   // invalid configuration
	ErrPrioInvalid                     // priority out of range
	ErrPrioExist                       // priority occupied or reserved
	ErrTaskNotExist                    // no task at priority
	ErrTaskNoMoreTCB                   // task pool exhausted
	ErrTaskNotSuspended                // task not suspended
	ErrTaskEntryNil                    // nil task entry
	ErrTaskOwnsMutex                   // task owns a mutex
	ErrSysTask                         // not permitted on a system task
	ErrTimeNotDly                      // task not delayed
	ErrTaskWaiting                     // tasks are waiting
	ErrEventPoolEmpty                  // event pool exhausted
	ErrSemOverflow                     // semaphore count overflow
	ErrNotMutexOwner                   // caller does not own the mutex
	ErrCeilingViolation                // owner priority above the mutex ceiling
	ErrMutexNested                     // owner pends on its own mutex
	ErrMboxFull                        // mailbox already holds a message
	ErrPostNil                         // nil message
	ErrFlagInvalidPgrp                 // nil flag group
	ErrFlagWaitType                    // invalid flag wait type
	ErrFlagNotRdy                      // flag condition not met
	ErrFlagInvalidOpt                  // invalid flag post operation
	ErrFlagGrpDepleted                 // flag group pool exhausted
	ErrTimerInvalid                    // nil timer
	ErrTimerInactive                   // timer not created
	ErrTimerISR                        // timer service from interrupt context
	ErrTimerInvalidDly                 // one-shot timer without delay
	ErrTimerInvalidPeriod              // periodic timer without period
	ErrTimerInvalidOpt                 // invalid timer mode
	ErrTimerNonAvail                   // timer pool exhausted
	ErrTimerStopped                    // timer already stopped
	ErrTimerNoCallback                 // timer has no callback
	ErrInvalid                         // just for bound checking
)

var ErrnoDescription = []string{
	"ErrNone",
	"ErrTimeout",
	"ErrPendAbort",
	"ErrPendISR",
	"ErrPendLocked",
	"ErrPostISR",
	"ErrCreateISR",
	"ErrDelISR",
	"ErrNotRunning",
	"ErrAlreadyRunning",
	"ErrSchedLocked",
	"ErrPeventNil",
	"ErrEventType",
	"ErrInvalidOpt",
	"ErrInvalidConfig",
	"ErrPrioInvalid",
	"ErrPrioExist",
	"ErrTaskNotExist",
	"ErrTaskNoMoreTCB",
	"ErrTaskNotSuspended",
	"ErrTaskEntryNil",
	"ErrTaskOwnsMutex",
	"ErrSysTask",
	"ErrTimeNotDly",
	"ErrTaskWaiting",
	"ErrEventPoolEmpty",
	"ErrSemOverflow",
	"ErrNotMutexOwner",
	"ErrCeilingViolation",
	"ErrMutexNested",
	"ErrMboxFull",
	"ErrPostNil",
	"ErrFlagInvalidPgrp",
	"ErrFlagWaitType",
	"ErrFlagNotRdy",
	"ErrFlagInvalidOpt",
	"ErrFlagGrpDepleted",
	"ErrTimerInvalid",
	"ErrTimerInactive",
	"ErrTimerISR",
	"ErrTimerInvalidDly",
	"ErrTimerInvalidPeriod",
	"ErrTimerInvalidOpt",
	"ErrTimerNonAvail",
	"ErrTimerStopped",
	"ErrTimerNoCallback",
	"ErrInvalid",
}

// Errno string
func (eno Errno) String() string {
	if eno >= ErrInvalid {
		return fmt.Sprintf("invalid kernel errno: %d", eno)
	}
	return ErrnoDescription[eno]
}

// error interface
func (eno Errno) Error() string {
	return eno.String()
}

//
// Context errnos: the call was made from a context that may not perform it.
//
func (eno Errno) IsContext() bool {
	switch eno {
	case ErrPendISR, ErrPendLocked, ErrPostISR, ErrCreateISR, ErrDelISR,
		ErrNotRunning, ErrSchedLocked, ErrTimerISR:
		return true
	}
	return false
}

//
// Exhaustion errnos: a fixed capacity pool had no free slot.
//
func (eno Errno) IsExhausted() bool {
	switch eno {
	case ErrTaskNoMoreTCB, ErrEventPoolEmpty, ErrFlagGrpDepleted, ErrTimerNonAvail:
		return true
	}
	return false
}
