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

package log

import (
	"github.com/sirupsen/logrus"
	"github.com/yeeco/rtk/utils/logging"
)

//
// logging API
//

// Trace is a convenient alias for Logger.Trace
func Trace(msg string, ctx ...interface{}) {
	logging.Logger.Trace(append([]interface{}{msg}, ctx...)...)
}

// Debug is a convenient alias for Logger.Debug
func Debug(msg string, ctx ...interface{}) {
	logging.Logger.Debug(append([]interface{}{msg}, ctx...)...)
}

// Info is a convenient alias for Logger.Info
func Info(msg string, ctx ...interface{}) {
	logging.Logger.Info(append([]interface{}{msg}, ctx...)...)
}

// Warn is a convenient alias for Logger.Warn
func Warn(msg string, ctx ...interface{}) {
	logging.Logger.Warn(append([]interface{}{msg}, ctx...)...)
}

// Error is a convenient alias for Logger.Error
func Error(msg string, ctx ...interface{}) {
	logging.Logger.Error(append([]interface{}{msg}, ctx...)...)
}

// Crit is a convenient alias for Logger.Fatal
func Crit(msg string, ctx ...interface{}) {
	logging.Logger.Fatal(append([]interface{}{msg}, ctx...)...)
}

//
// logging API with printf format
//

func Debugf(format string, args ...interface{}) {
	logging.Logger.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	logging.Logger.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	logging.Logger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	logging.Logger.Errorf(format, args...)
}

//
// structured logging
//

type Fields = logrus.Fields

func WithFields(fields Fields) *logrus.Entry {
	return logging.Logger.WithFields(fields)
}
