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
	"github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/satori/go.uuid"
	"github.com/yeeco/rtk/persistent"
)

const sessionCacheSize = 64

// Reader reads recorded sessions back from a trace store.
type Reader struct {
	sessions persistent.Storage
	records  persistent.Storage
	cache    *lru.Cache // session uuid string -> *Session
}

func NewReader(storage persistent.Storage) (*Reader, error) {
	cache, err := lru.New(sessionCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "session cache")
	}
	return &Reader{
		sessions: persistent.NewTable(storage, sessionPrefix),
		records:  persistent.NewTable(storage, recordPrefix),
		cache:    cache,
	}, nil
}

// Sessions returns every recorded session, ordered by uuid.
func (r *Reader) Sessions() ([]*Session, error) {
	var sessions []*Session
	var derr error
	err := r.sessions.Iterate(nil, func(key, value []byte) bool {
		s, err := decodeSession(value)
		if err != nil {
			derr = err
			return false
		}
		r.cache.Add(s.UUID(), s)
		sessions = append(sessions, s)
		return true
	})
	if err != nil {
		return nil, errors.Wrap(err, "iterate sessions")
	}
	return sessions, derr
}

// Session returns the header of session id.
func (r *Reader) Session(id string) (*Session, error) {
	if s, ok := r.cache.Get(id); ok {
		return s.(*Session), nil
	}
	sid, err := uuid.FromString(id)
	if err != nil {
		return nil, errors.Wrapf(err, "session id %s", id)
	}
	data, err := r.sessions.Get(sid.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "session %s", id)
	}
	s, err := decodeSession(data)
	if err != nil {
		return nil, err
	}
	r.cache.Add(id, s)
	return s, nil
}

// Records calls fn with the records of session id in sequence order until fn
// returns false.
func (r *Reader) Records(id string, fn func(rec *Record) bool) error {
	s, err := r.Session(id)
	if err != nil {
		return err
	}
	var derr error
	err = r.records.Iterate(s.ID, func(key, value []byte) bool {
		rec, err := decodeRecord(value)
		if err != nil {
			derr = err
			return false
		}
		return fn(rec)
	})
	if err != nil {
		return errors.Wrapf(err, "iterate records of %s", id)
	}
	return derr
}
