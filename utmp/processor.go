package utmp

import (
	"context"
	"errors"
	"time"

	"github.com/logmerge/logmerge/summary"
)

// Record is one emitted utmpx Entry, analogous to syslogproc.Record —
// kept as its own type rather than shoehorned into syslogproc.Record
// (which is typed to *sysline.Sysline) since an Entry has no line/sysline
// structure to reuse; a merge.Driver wanting to interleave utmp entries
// with sysline records would union the two via a small adapter at the
// call site rather than here (documented in DESIGN.md — utmp is wired
// as a parallel, independently mergeable stream, not forced through the
// sysline-shaped Message type).
type Record struct {
	Entry  *Entry
	PathID int
}

// Message mirrors merge.Message's shape for utmp's independent channel.
type Message struct {
	Record  *Record
	Summary *summary.Summary
	IsLast  bool
}

// Processor drives one utmp/wtmp file: Validate opens it, Stream yields
// entries within [after, before], Summarize closes out the Summary.
type Processor struct {
	path          string
	pathID        int
	r             *Reader
	after, before time.Time
	nextFo        int64

	entriesRead uint64
	firstDt     time.Time
	lastDt      time.Time

	result  summary.FileResult
	errMsg  string
}

var errEmptyUtmp = errors.New("utmp: empty file")

// New constructs a Processor for path.
func New(path string, pathID int, after, before time.Time) *Processor {
	return &Processor{path: path, pathID: pathID, after: after, before: before}
}

// Validate opens the file and confirms it is non-empty, per the same
// Stage0 contract syslogproc.Processor.Validate follows.
func (p *Processor) Validate() error {
	r, err := Open(p.path)
	if err != nil {
		p.result = summary.FileErrIo
		p.errMsg = err.Error()
		return err
	}
	if r.FileSz() == 0 {
		r.Close()
		p.result = summary.FileErrEmpty
		p.errMsg = "empty file"
		return errEmptyUtmp
	}
	p.r = r
	return nil
}

// StreamNext returns the next in-range Entry, or ok=false once exhausted.
func (p *Processor) StreamNext() (*Entry, bool, error) {
	next, e, err := p.r.FindEntryBetweenDatetimeFilters(p.nextFo, p.after, p.before)
	if err == ErrDone {
		return nil, false, nil
	}
	if err != nil {
		p.result = summary.FileErrIo
		p.errMsg = err.Error()
		return nil, false, err
	}
	p.nextFo = next
	p.entriesRead++
	if p.firstDt.IsZero() {
		p.firstDt = e.Time
	}
	p.lastDt = e.Time
	return e, true, nil
}

// Close releases the underlying Reader.
func (p *Processor) Close() error {
	if p.r == nil {
		return nil
	}
	return p.r.Close()
}

// Summarize composes the final Summary.
func (p *Processor) Summarize() *summary.Summary {
	return &summary.Summary{
		Path:          p.path,
		PathID:        p.pathID,
		Result:        p.result,
		Message:       p.errMsg,
		LinesRead:     p.entriesRead,
		SyslinesRead:  p.entriesRead,
		FirstDatetime: p.firstDt,
		LastDatetime:  p.lastDt,
	}
}

// RunWorker drives a Processor to completion over ch, following the same
// channel protocol as merge.RunWorker: records, then strictly-last
// Summary, then close.
func RunWorker(ctx context.Context, p *Processor, ch chan<- Message) {
	defer close(ch)
	defer p.Close()

	send := func(m Message) bool {
		select {
		case ch <- m:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if err := p.Validate(); err != nil {
		send(Message{Summary: p.Summarize(), IsLast: true})
		return
	}
	for {
		e, ok, err := p.StreamNext()
		if err != nil {
			send(Message{Summary: p.Summarize(), IsLast: true})
			return
		}
		if !ok {
			break
		}
		if !send(Message{Record: &Record{Entry: e, PathID: p.pathID}}) {
			return
		}
	}
	send(Message{Summary: p.Summarize(), IsLast: true})
}
