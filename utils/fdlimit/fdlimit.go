// Copyright (C) 2019 gyee authors
//
// This file is part of the gyee library.
//
// The gyee library is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gyee library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with the gyee library.  If not, see <http://www.gnu.org/licenses/>.

package fdlimit

import (
	ethfdlimit "github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/pkg/errors"
	"github.com/yeeco/rtk/log"
)

// Raise the file descriptor allowance to the hard limit before opening a leveldb
// store, which keeps many table files open.
func FixFdLimit() error {
	curr, err := ethfdlimit.Current()
	if err != nil {
		return errors.Wrap(err, "fd limit")
	}
	max, err := ethfdlimit.Maximum()
	if err != nil {
		return errors.Wrap(err, "fd limit")
	}
	result, err := ethfdlimit.Raise(uint64(max))
	if err != nil {
		return errors.Wrapf(err, "raise fd limit to %d", max)
	}
	log.Debugf("fdLimit raise %d -> %d, max %d", curr, result, max)
	return nil
}
