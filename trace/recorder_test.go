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

package trace

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yeeco/rtk/kernel"
	"github.com/yeeco/rtk/persistent"
)

func newTestStore(t *testing.T) persistent.Storage {
	storage, err := persistent.NewMemoryStorage()
	require.NoError(t, err)
	return storage
}

func readRecords(t *testing.T, r *Reader, id string) []*Record {
	var recs []*Record
	require.NoError(t, r.Records(id, func(rec *Record) bool {
		recs = append(recs, rec)
		return true
	}))
	return recs
}

func TestNewRecorderBufferSize(t *testing.T) {
	_, err := NewRecorder(0)
	require.Error(t, err)
}

func TestRecorderKernelSession(t *testing.T) {
	rec, err := NewRecorder(256)
	require.NoError(t, err)
	k, err := kernel.New(kernel.DefaultConfig(), rec)
	require.NoError(t, err)
	require.NoError(t, k.TaskCreate(func(arg interface{}) {
		k.TimeDly(1)
	}, nil, 10, "worker"))
	tmr, err := k.TimerCreate(0, 2, kernel.TimerPeriodic, nil, nil, "pace")
	require.NoError(t, err)
	require.NoError(t, k.TimerStart(tmr))

	require.NoError(t, k.Start())
	k.WaitIdle()
	for i := 0; i < 4; i++ {
		k.Interrupt(k.TickSignal)
		k.WaitIdle()
	}
	pending := rec.Pending()
	require.True(t, pending > 0)

	storage := newTestStore(t)
	require.NoError(t, rec.Flush(storage))
	require.Equal(t, 0, rec.Pending())

	r, err := NewReader(storage)
	require.NoError(t, err)
	sessions, err := r.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	s := sessions[0]
	require.Equal(t, rec.SessionID(), s.UUID())
	require.Equal(t, uint64(pending), s.Records)
	require.Equal(t, uint64(0), s.Dropped)
	require.Equal(t, uint32(4), s.Ticks)

	recs := readRecords(t, r, s.UUID())
	require.Len(t, recs, pending)
	for i, rec := range recs {
		require.Equal(t, uint64(i+1), rec.Seq)
	}
	require.Equal(t, Record{Seq: 1, Kind: KindTaskCreate, From: k.Config().TimerTaskPrio, Name: "timer"}, *recs[0])
	require.Equal(t, Record{Seq: 2, Kind: KindTaskCreate, From: 10, Name: "worker"}, *recs[1])
	require.Equal(t, Record{Seq: 3, Kind: KindTaskSw, From: k.Config().LowestPrio, To: 10}, *recs[2])

	var expiries []uint32
	var deleted []string
	for _, rec := range recs {
		switch rec.Kind {
		case KindTimerExpire:
			require.Equal(t, "pace", rec.Name)
			expiries = append(expiries, rec.Tick)
		case KindTaskDel:
			require.Equal(t, uint32(1), rec.Tick)
			deleted = append(deleted, rec.Name)
		}
	}
	require.Equal(t, []uint32{2, 4}, expiries)
	require.Equal(t, []string{"worker"}, deleted)
}

func TestRecorderDropsWhenFull(t *testing.T) {
	rec, err := NewRecorder(2)
	require.NoError(t, err)
	storage := newTestStore(t)

	rec.TaskCreate(10, "a")
	rec.TaskCreate(11, "b")
	rec.TaskCreate(12, "c")
	require.Equal(t, 2, rec.Pending())
	require.NoError(t, rec.Flush(storage))

	rec.TimeTick(5)
	rec.TaskSw(10, 11)
	require.NoError(t, rec.Flush(storage))

	r, err := NewReader(storage)
	require.NoError(t, err)
	s, err := r.Session(rec.SessionID())
	require.NoError(t, err)
	require.Equal(t, uint64(3), s.Records)
	require.Equal(t, uint64(1), s.Dropped)
	require.Equal(t, uint32(5), s.Ticks)

	recs := readRecords(t, r, rec.SessionID())
	require.Len(t, recs, 3)
	require.Equal(t, "a", recs[0].Name)
	require.Equal(t, "b", recs[1].Name)
	require.Equal(t, Record{Seq: 3, Kind: KindTaskSw, Tick: 5, From: 10, To: 11}, *recs[2])
}

func TestReaderSessions(t *testing.T) {
	storage := newTestStore(t)
	var ids []string
	for i := 0; i < 3; i++ {
		rec, err := NewRecorder(8)
		require.NoError(t, err)
		rec.TaskCreate(uint8(i), "task")
		require.NoError(t, rec.Flush(storage))
		ids = append(ids, rec.SessionID())
	}

	r, err := NewReader(storage)
	require.NoError(t, err)
	sessions, err := r.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	var got []string
	for _, s := range sessions {
		got = append(got, s.UUID())
	}
	require.ElementsMatch(t, ids, got)

	s, err := r.Session(ids[1])
	require.NoError(t, err)
	again, err := r.Session(ids[1])
	require.NoError(t, err)
	require.True(t, s == again)

	recs := readRecords(t, r, ids[2])
	require.Len(t, recs, 1)
	require.Equal(t, uint8(2), recs[0].From)

	n := 0
	require.NoError(t, r.Records(ids[0], func(rec *Record) bool {
		n++
		return false
	}))
	require.Equal(t, 1, n)

	_, err = r.Session("not a uuid")
	require.Error(t, err)
	_, err = r.Session("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.Error(t, err)
	require.Error(t, r.Records("6ba7b810-9dad-11d1-80b4-00c04fd430c8", func(rec *Record) bool { return true }))
}
