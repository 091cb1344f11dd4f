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
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/satori/go.uuid"
	"github.com/yeeco/rtk/utils"
)

// Record kinds
type Kind uint8

const (
	KindTaskCreate  Kind = iota + 1 // task created
	KindTaskDel                     // task deleted
	KindTaskSw                      // context switch
	KindTimerExpire                 // software timer expired
)

var kindName = map[Kind]string{
	KindTaskCreate:  "create",
	KindTaskDel:     "delete",
	KindTaskSw:      "switch",
	KindTimerExpire: "timer",
}

func (kind Kind) String() string {
	if name, ok := kindName[kind]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(kind))
}

// One scheduler event
type Record struct {
	Seq  uint64
	Kind Kind
	Tick uint32 // hardware tick, timer tick for timer records
	From uint8  // switched out priority, or the task priority
	To   uint8  // switched in priority
	Name string // task or timer name
}

func (rec *Record) String() string {
	switch rec.Kind {
	case KindTaskSw:
		return fmt.Sprintf("#%d tick %d %s %d -> %d", rec.Seq, rec.Tick, rec.Kind, rec.From, rec.To)
	case KindTimerExpire:
		return fmt.Sprintf("#%d tick %d %s %s", rec.Seq, rec.Tick, rec.Kind, rec.Name)
	}
	return fmt.Sprintf("#%d tick %d %s %s at %d", rec.Seq, rec.Tick, rec.Kind, rec.Name, rec.From)
}

// Recording session header
type Session struct {
	ID      []byte // session uuid
	Started uint64 // unix nanoseconds
	Records uint64 // records stored
	Dropped uint64 // records lost to a full buffer
	Ticks   uint32 // hardware ticks at the last flush
}

func (s *Session) UUID() string {
	id, err := uuid.FromBytes(s.ID)
	if err != nil {
		return fmt.Sprintf("%x", s.ID)
	}
	return id.String()
}

// Storage layout, keys within the tables of a trace store
const (
	sessionPrefix = "s/" // session uuid -> Session
	recordPrefix  = "r/" // session uuid, big endian seq -> Record
)

func recordKey(session []byte, seq uint64) []byte {
	return append(append([]byte(nil), session...), utils.Uint64ToBytes(seq)...)
}

func encodeRecord(rec *Record) ([]byte, error) {
	data, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return nil, errors.Wrapf(err, "encode record %d", rec.Seq)
	}
	return data, nil
}

func decodeRecord(data []byte) (*Record, error) {
	rec := new(Record)
	if err := rlp.DecodeBytes(data, rec); err != nil {
		return nil, errors.Wrap(err, "decode record")
	}
	return rec, nil
}

func encodeSession(s *Session) ([]byte, error) {
	data, err := rlp.EncodeToBytes(s)
	if err != nil {
		return nil, errors.Wrap(err, "encode session")
	}
	return data, nil
}

func decodeSession(data []byte) (*Session, error) {
	s := new(Session)
	if err := rlp.DecodeBytes(data, s); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return s, nil
}
