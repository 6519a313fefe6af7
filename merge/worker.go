package merge

import (
	"context"
	"time"

	"github.com/logmerge/logmerge/summary"
	"github.com/logmerge/logmerge/syslogproc"
)

// Message is what a worker goroutine sends on its channel: either a
// record to emit, or — strictly last, with the channel closed
// immediately after — a Summary, per spec.md §4.6's message shape
// `(Option<LogMessage>, Option<Summary>, is_last, FileProcessingResult)`.
type Message struct {
	Record  *syslogproc.Record
	Summary *summary.Summary
	IsLast  bool
}

// ChannelCapacity is the bounded channel size spec.md §4.6/§5 specifies,
// the mechanism providing backpressure against a slow stdout consumer.
const ChannelCapacity = 5

// RunWorker drives proc through every stage, sending one Message per
// emitted sysline followed by exactly one terminal Message carrying its
// Summary, then closes ch. If ctx is cancelled (the merger exited early,
// e.g. a broken stdout pipe), a pending send is abandoned rather than
// retried — the Go realization of spec.md §5's "a failed send is a
// terminal condition, not a retry" rule, since plain Go channels have no
// send-side disconnect error the way the original MPSC channels do.
func RunWorker(ctx context.Context, proc *syslogproc.Processor, ch chan<- Message, pathID int, dtAfter, dtBefore time.Time) {
	defer close(ch)
	defer proc.Close()

	send := func(m Message) bool {
		select {
		case ch <- m:
			return true
		case <-ctx.Done():
			return false
		}
	}

	fail := func() {
		s := proc.Summarize(dtAfter, dtBefore)
		send(Message{Summary: s, IsLast: true})
	}

	if err := proc.Validate(); err != nil {
		fail()
		return
	}
	if err := proc.BlockZero(); err != nil {
		fail()
		return
	}
	if err := proc.FindFirst(); err != nil {
		fail()
		return
	}

	for {
		sl, ok, err := proc.StreamNext()
		if err != nil {
			fail()
			return
		}
		if !ok {
			break
		}
		if !send(Message{Record: &syslogproc.Record{Sysline: sl, PathID: pathID}}) {
			return
		}
	}

	s := proc.Summarize(dtAfter, dtBefore)
	send(Message{Summary: s, IsLast: true})
}
