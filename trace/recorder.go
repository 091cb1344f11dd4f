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
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/satori/go.uuid"
	"github.com/yeeco/rtk/kernel"
	"github.com/yeeco/rtk/log"
	"github.com/yeeco/rtk/persistent"
)

//
// Recorder is a kernel hook buffering scheduler events for one session. Hook calls
// only append to a fixed size buffer, records arriving while it is full are
// counted as dropped. Flush moves the buffer to storage.
//
type Recorder struct {
	flushMu sync.Mutex
	mu      sync.Mutex
	session Session
	buf     []Record // hook side
	spare   []Record // flush side
	seq     uint64
	tick    uint32
}

var _ kernel.Hook = (*Recorder)(nil)

func NewRecorder(bufferSize int) (*Recorder, error) {
	if bufferSize <= 0 {
		return nil, errors.Errorf("invalid trace buffer size %d", bufferSize)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, errors.Wrap(err, "new trace session")
	}
	return &Recorder{
		session: Session{
			ID:      id.Bytes(),
			Started: uint64(time.Now().UnixNano()),
		},
		buf:   make([]Record, 0, bufferSize),
		spare: make([]Record, 0, bufferSize),
	}, nil
}

// SessionID returns the session uuid.
func (r *Recorder) SessionID() string {
	return r.session.UUID()
}

// buffer rec, stamping it with the hardware tick unless it carries its own
func (r *Recorder) add(rec Record, stamp bool) {
	r.mu.Lock()
	if stamp {
		rec.Tick = r.tick
	}
	if len(r.buf) == cap(r.buf) {
		r.session.Dropped++
	} else {
		r.seq++
		rec.Seq = r.seq
		r.buf = append(r.buf, rec)
	}
	r.mu.Unlock()
}

func (r *Recorder) TaskCreate(prio uint8, name string) {
	r.add(Record{Kind: KindTaskCreate, From: prio, Name: name}, true)
}

func (r *Recorder) TaskDel(prio uint8, name string) {
	r.add(Record{Kind: KindTaskDel, From: prio, Name: name}, true)
}

func (r *Recorder) TaskSw(from, to uint8) {
	r.add(Record{Kind: KindTaskSw, From: from, To: to}, true)
}

func (r *Recorder) TimeTick(tick uint32) {
	r.mu.Lock()
	r.tick = tick
	r.mu.Unlock()
}

func (r *Recorder) TimerExpire(name string, tick uint32) {
	r.add(Record{Kind: KindTimerExpire, Tick: tick, Name: name}, false)
}

// Pending returns the number of buffered records.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}

// Flush writes the buffered records and the session header to storage in one batch.
func (r *Recorder) Flush(storage persistent.Storage) error {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	r.mu.Lock()
	recs := r.buf
	r.buf, r.spare = r.spare[:0], nil
	r.session.Records += uint64(len(recs))
	r.session.Ticks = r.tick
	session := r.session
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.spare = recs[:0]
		r.mu.Unlock()
	}()

	records := persistent.NewTable(storage, recordPrefix)
	batch := records.NewBatch()
	for i := range recs {
		data, err := encodeRecord(&recs[i])
		if err != nil {
			return err
		}
		if err := batch.Put(recordKey(session.ID, recs[i].Seq), data); err != nil {
			return errors.Wrap(err, "batch record")
		}
		if batch.ValueSize() >= persistent.IdealBatchSize {
			if err := batch.Write(); err != nil {
				return errors.Wrap(err, "write records")
			}
			batch.Reset()
		}
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "write records")
	}

	data, err := encodeSession(&session)
	if err != nil {
		return err
	}
	sessions := persistent.NewTable(storage, sessionPrefix)
	if err := sessions.Put(session.ID, data); err != nil {
		return errors.Wrap(err, "write session")
	}
	log.Debugf("trace: session %s flushed %d records, %d dropped", session.UUID(), len(recs), session.Dropped)
	return nil
}
