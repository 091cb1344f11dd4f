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

package logging

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	defer Logger.SetLevel(logrus.InfoLevel)

	require.NoError(t, SetLevel("debug"))
	require.Equal(t, logrus.DebugLevel, Logger.GetLevel())
	require.NoError(t, SetLevel("warn"))
	require.Equal(t, logrus.WarnLevel, Logger.GetLevel())
	require.Error(t, SetLevel("loud"))
	require.Equal(t, logrus.WarnLevel, Logger.GetLevel())
}

func TestFileRotationHooker(t *testing.T) {
	dir, err := ioutil.TempDir("", "rtk-log")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	hooks := Logger.Hooks
	defer func() { Logger.Hooks = hooks }()
	Logger.Hooks = make(logrus.LevelHooks)

	SetFileRotationHooker(dir, 2)
	Logger.Info("rotation hook test")

	data, err := ioutil.ReadFile(filepath.Join(dir, "rtk.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "rotation hook test")
}
