package merge

import (
	"fmt"
	"io"
	"reflect"

	"github.com/logmerge/logmerge/summary"
)

// source is one worker's channel plus the bookkeeping the driver needs
// to track it across iterations.
type source struct {
	path    string
	pathID  int
	ch      <-chan Message
	pending *Message
	closed  bool
}

// Driver performs the k-way merge described in spec.md §4.6: maintain a
// pending record per live channel, always emit the minimum timestamp,
// tie-broken by path_id.
type Driver struct {
	Out    io.Writer
	Prefix PrefixConfig
	// RecordSeparator is written between every two emitted records
	// (already escape-decoded).
	RecordSeparator string

	sources []*source
	agg     *summary.Aggregate
}

// NewDriver constructs a Driver with no sources; register each worker's
// channel, keyed by path and path_id, with AddSource before calling Run.
func NewDriver(out io.Writer, prefix PrefixConfig, recordSeparator string) *Driver {
	return &Driver{
		Out:             out,
		Prefix:          prefix,
		RecordSeparator: recordSeparator,
	}
}

// AddSource registers one worker's channel with the driver before Run is
// called.
func (d *Driver) AddSource(path string, pathID int, ch <-chan Message) {
	d.sources = append(d.sources, &source{path: path, pathID: pathID, ch: ch})
}

// Run drives the merge loop to completion, writing emitted records to
// Out in global timestamp order, and returns the aggregate statistics
// gathered from every worker's terminal Summary.
func (d *Driver) Run() (*summary.Aggregate, error) {
	d.agg = &summary.Aggregate{}
	live := len(d.sources)
	first := true

	for live > 0 {
		if err := d.fillPending(); err != nil {
			return d.agg, err
		}

		minIdx := -1
		for i, s := range d.sources {
			if s.closed || s.pending == nil {
				continue
			}
			if minIdx == -1 || less(s, d.sources[minIdx]) {
				minIdx = i
			}
		}
		if minIdx == -1 {
			// Every remaining source has closed without a pending
			// record (e.g. all failed before emitting anything).
			live = d.countLive()
			if live == 0 {
				break
			}
			continue
		}

		s := d.sources[minIdx]
		if !first {
			if _, err := io.WriteString(d.Out, d.RecordSeparator); err != nil {
				return d.agg, err
			}
		}
		first = false
		if err := d.emit(s); err != nil {
			return d.agg, err
		}
		s.pending = nil
		live = d.countLive()
	}
	return d.agg, nil
}

// fillPending performs one multi-way receive per live, not-yet-pending
// channel, exactly spec.md §4.6 step 1, repeating until every live
// channel either has a pending message or has disconnected. It uses
// reflect.Select as the idiomatic Go stand-in for a native multi-way
// select over a dynamically sized, changing set of channels (the set
// shrinks as workers finish; Go's `select` statement requires a
// fixed set of cases written at compile time, so a dynamic fan-in needs
// reflect.Select or an equivalent fan-in goroutine — the direct
// reflect-based form was chosen to keep the merge loop single-threaded
// and lock-free, matching spec.md §5's "no cross-worker locking").
func (d *Driver) fillPending() error {
	for {
		var cases []reflect.SelectCase
		var idx []int
		for i, s := range d.sources {
			if s.closed || s.pending != nil {
				continue
			}
			cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(s.ch)})
			idx = append(idx, i)
		}
		if len(cases) == 0 {
			return nil
		}
		chosen, recv, ok := reflect.Select(cases)
		i := idx[chosen]
		if !ok {
			d.sources[i].closed = true
			continue
		}
		msg := recv.Interface().(Message)
		if msg.Summary != nil {
			d.agg.Add(msg.Summary)
			d.sources[i].closed = true
			continue // Summary carries no record to queue; channel disconnects next.
		}
		if msg.Record != nil {
			m := msg
			d.sources[i].pending = &m
		}
	}
}

func (d *Driver) countLive() int {
	n := 0
	for _, s := range d.sources {
		if !s.closed {
			n++
		}
	}
	return n
}

// less implements the tie-break rule: earlier timestamp wins, ties
// broken by ascending path_id.
func less(a, b *source) bool {
	ta, tb := a.pending.Record.Sysline.Time, b.pending.Record.Sysline.Time
	if ta.Equal(tb) {
		return a.pathID < b.pathID
	}
	return ta.Before(tb)
}

func (d *Driver) emit(s *source) error {
	rec := s.pending.Record
	prefix := d.Prefix.Render(s.path, rec.Sysline.Time)
	if prefix != "" {
		if _, err := io.WriteString(d.Out, prefix); err != nil {
			return err
		}
	}
	if _, err := d.Out.Write(rec.Sysline.Bytes()); err != nil {
		return err
	}
	if !rec.Sysline.EndsWithNewline() {
		if _, err := io.WriteString(d.Out, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// errBrokenPipe is not returned by the Driver: Run stops at the first
// failed write to Out (e.g. a broken stdout pipe) and returns that error
// unchanged, so the caller reports it once.
var errBrokenPipe = fmt.Errorf("merge: write to output failed")
