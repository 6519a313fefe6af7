package syslogproc

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/logmerge/logmerge/block"
	"github.com/logmerge/logmerge/summary"
)

var (
	errEmptyFile         = errors.New("syslogproc: empty file")
	errNoLinesFound      = errors.New("syslogproc: block zero has too few lines")
	errNoSyslinesFound   = errors.New("syslogproc: block zero has too few syslines")
	errNoSyslinesInRange = errors.New("syslogproc: no sysline in requested datetime range")
)

// fileErr bundles a classification with its human-readable message for
// Processor.fail.
type fileErr struct {
	result summary.FileResult
	ioKind summary.IoErrKind
	msg    string
}

func (p *Processor) fail(fe fileErr) {
	p.result = fe.result
	p.ioKind = fe.ioKind
	p.errMsg = fe.msg
	p.stage = StageSummary
}

// failIo classifies err (an I/O failure surfaced mid-pipeline) and
// records it as FileErrIo, FileErrDecompress, FileErrTooLarge, or
// FileErrWrongType as appropriate, then returns it unwrapped so callers
// can propagate the same error value.
func (p *Processor) failIo(err error) error {
	p.fail(classifyRuntimeErr(err))
	return err
}

// classifyOpenErr maps a block.New failure (path doesn't exist, wrong
// permissions, oversized or malformed compressed content, etc.) to the
// FileErr taxonomy.
func classifyOpenErr(err error) fileErr {
	if errors.Is(err, block.ErrTooLarge) || errors.Is(err, block.ErrDecompress) || errors.Is(err, block.ErrWrongType) {
		return classifyRuntimeErr(err)
	}
	if errors.Is(err, os.ErrPermission) {
		return fileErr{result: summary.FileErrIo, ioKind: summary.IoErrPermissionDenied, msg: err.Error()}
	}
	if errors.Is(err, fs.ErrNotExist) {
		return fileErr{result: summary.FileErrIo, ioKind: summary.IoErrOther, msg: err.Error()}
	}
	return fileErr{result: summary.FileErrStub, msg: err.Error()}
}

// classifyRuntimeErr maps errors surfaced while reading an already-open
// file to the FileErr taxonomy, per spec.md §7.
func classifyRuntimeErr(err error) fileErr {
	switch {
	case errors.Is(err, block.ErrTooLarge):
		return fileErr{result: summary.FileErrTooLarge, msg: err.Error()}
	case errors.Is(err, block.ErrDecompress):
		return fileErr{result: summary.FileErrDecompress, msg: err.Error()}
	case errors.Is(err, block.ErrWrongType):
		return fileErr{result: summary.FileErrWrongType, msg: err.Error()}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fileErr{result: summary.FileErrIo, ioKind: summary.IoErrUnexpectedEOF, msg: err.Error()}
	case errors.Is(err, os.ErrPermission):
		return fileErr{result: summary.FileErrIo, ioKind: summary.IoErrPermissionDenied, msg: err.Error()}
	default:
		return fileErr{result: summary.FileErrIo, ioKind: summary.IoErrOther, msg: err.Error()}
	}
}
