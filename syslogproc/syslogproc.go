// Package syslogproc implements the per-file state machine that drives
// a BlockReader/LineReader/SyslineReader trio through the stages spec.md
// §4.5 names: Validate, BlockZero, FindDt, Stream, Summary.
package syslogproc

import (
	"errors"
	"time"

	"github.com/logmerge/logmerge/block"
	"github.com/logmerge/logmerge/datetime"
	"github.com/logmerge/logmerge/line"
	"github.com/logmerge/logmerge/summary"
	"github.com/logmerge/logmerge/sysline"
)

// Stage names the processor's position in its state machine. Each
// transition method rejects the call if the processor isn't in the
// required predecessor stage, per spec.md §4.5.
type Stage int

const (
	StageValidate Stage = iota
	StageBlockZero
	StageFindDt
	StageStream
	StageSummary
	StageDone
)

// Record is one emitted sysline, ready for the merge driver.
type Record struct {
	Sysline *sysline.Sysline
	PathID  int
}

// Processor drives one file through the pipeline. It is not safe for
// concurrent use — spec.md §5 gives each worker goroutine exclusive
// ownership of one Processor.
type Processor struct {
	path   string
	pathID int
	stage  Stage

	ft   block.FileType
	opts block.Options

	br *block.Reader
	lr *line.Reader
	sr *sysline.Reader

	fb            datetime.Fallback
	after, before time.Time

	nextFo           block.FileOffset
	lastDroppedBlock block.BlockOffset
	hasDropped       bool
	blocksDropped    uint64

	syslineCount    uint64
	firstDt, lastDt time.Time

	result summary.FileResult
	ioKind summary.IoErrKind
	errMsg string
}

// ErrOutOfSequence is returned when a transition method is called out of
// the required stage order.
var ErrOutOfSequence = errors.New("syslogproc: called out of sequence")

// New constructs a Processor for path, without yet opening it — call
// Validate to advance to StageBlockZero.
func New(path string, pathID int, ft block.FileType, opts block.Options, fb datetime.Fallback, after, before time.Time) *Processor {
	return &Processor{
		path:   path,
		pathID: pathID,
		stage:  StageValidate,
		ft:     ft,
		opts:   opts,
		fb:     fb,
		after:  after,
		before: before,
	}
}

// Stage reports the processor's current stage.
func (p *Processor) Stage() Stage { return p.stage }

// Path returns the file path this processor was constructed for.
func (p *Processor) Path() string { return p.path }
