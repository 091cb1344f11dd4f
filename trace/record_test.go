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
)

func TestKindString(t *testing.T) {
	require.Equal(t, "create", KindTaskCreate.String())
	require.Equal(t, "switch", KindTaskSw.String())
	require.Equal(t, "kind(9)", Kind(9).String())
}

func TestRecordString(t *testing.T) {
	tests := []struct {
		rec  Record
		want string
	}{
		{Record{Seq: 1, Kind: KindTaskCreate, From: 10, Name: "worker"}, "#1 tick 0 create worker at 10"},
		{Record{Seq: 2, Kind: KindTaskSw, Tick: 3, From: 63, To: 10}, "#2 tick 3 switch 63 -> 10"},
		{Record{Seq: 3, Kind: KindTimerExpire, Tick: 7, Name: "pace"}, "#3 tick 7 timer pace"},
		{Record{Seq: 4, Kind: KindTaskDel, Tick: 9, From: 10, Name: "worker"}, "#4 tick 9 delete worker at 10"},
	}
	for _, test := range tests {
		require.Equal(t, test.want, test.rec.String())
	}
}

func TestRecordKeyOrder(t *testing.T) {
	session := []byte{0xAA, 0xBB}
	a := recordKey(session, 255)
	b := recordKey(session, 256)
	require.Len(t, a, 10)
	require.Equal(t, session, a[:2])
	require.True(t, string(a) < string(b))
}

func TestSessionUUID(t *testing.T) {
	r, err := NewRecorder(1)
	require.NoError(t, err)
	require.Len(t, r.SessionID(), 36)

	s := &Session{ID: []byte{1, 2, 3}}
	require.Equal(t, "010203", s.UUID())
}
