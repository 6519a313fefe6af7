// Package utmp implements UtmpxReader, spec.md §4.7's "parallel
// specialization": fixed-size binary records instead of text lines, but
// the same find-between-datetime-filters contract as SyslogProcessor.
package utmp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

// UtmpxSz is sizeof(struct utmpx) on glibc/x86-64 Linux: the layout this
// package decodes.
const UtmpxSz = 384

// rawUtmpx mirrors glibc's struct utmpx field-for-field, including its
// alignment padding, so binary.Read reproduces the C layout exactly.
type rawUtmpx struct {
	Type    int16
	_       [2]byte // alignment padding before the int32 Pid
	Pid     int32
	Line    [32]byte
	ID      [4]byte
	User    [32]byte
	Host    [256]byte
	ExitTerm int16
	ExitExit int16
	Session int32
	TvSec   int32
	TvUsec  int32
	AddrV6  [4]int32
	Unused  [20]byte
}

// Entry types, matching glibc's utmpx.h ut_type values.
const (
	EmptyType        = 0
	RunLevelType     = 1
	BootTimeType     = 2
	NewTimeType      = 3
	OldTimeType      = 4
	InitProcessType  = 5
	LoginProcessType = 6
	UserProcessType  = 7
	DeadProcessType  = 8
	AccountingType   = 9
)

// Entry is a decoded, trimmed utmpx record.
type Entry struct {
	Type      int16
	Pid       int32
	Line      string
	ID        string
	User      string
	Host      string
	Time      time.Time
	RawOffset int64
}

var errShortRecord = errors.New("utmp: short record, truncated file")

func decode(buf []byte, offset int64) (*Entry, error) {
	if len(buf) < UtmpxSz {
		return nil, errShortRecord
	}
	var raw rawUtmpx
	if err := binary.Read(bytes.NewReader(buf[:UtmpxSz]), binary.LittleEndian, &raw); err != nil {
		return nil, err
	}
	return &Entry{
		Type:      raw.Type,
		Pid:       raw.Pid,
		Line:      cstr(raw.Line[:]),
		ID:        cstr(raw.ID[:]),
		User:      cstr(raw.User[:]),
		Host:      cstr(raw.Host[:]),
		Time:      time.Unix(int64(raw.TvSec), int64(raw.TvUsec)*1000).UTC(),
		RawOffset: offset,
	}, nil
}

// cstr trims a fixed-size NUL-padded byte array to a Go string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
