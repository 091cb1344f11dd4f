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

package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUint64Bytes(t *testing.T) {
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 2}, Uint64ToBytes(0x102))
	require.Equal(t, uint64(0x102), BytesToUint64(Uint64ToBytes(0x102)))
	require.Equal(t, uint64(0), BytesToUint64([]byte{1}))
	require.True(t, string(Uint64ToBytes(9)) < string(Uint64ToBytes(10)))
}
