package syslogproc

import (
	"time"

	"github.com/logmerge/logmerge/summary"
)

// Summarize is Stage 4: compose the final per-file Summary. Valid from
// StageSummary (reached either by StreamNext running dry or by any stage
// failing early) and transitions to StageDone.
func (p *Processor) Summarize(dtAfter, dtBefore time.Time) *summary.Summary {
	// p.result's zero value is summary.FileOk; stage failures set it
	// explicitly via fail()/failIo(), so nothing further to resolve here.
	p.stage = StageDone

	s := &summary.Summary{
		Path:          p.path,
		PathID:        p.pathID,
		Result:        p.result,
		IoKind:        p.ioKind,
		Message:       p.errMsg,
		SyslinesRead:  p.syslineCount,
		FirstDatetime: p.firstDt,
		LastDatetime:  p.lastDt,
		DtAfter:       dtAfter,
		DtBefore:      dtBefore,
		BlocksDropped: p.blocksDropped,
	}
	if p.br != nil {
		s.BytesRead = uint64(p.br.FileSz())
		cs := p.br.CacheStats()
		s.BlockHit, s.BlockMiss, s.BlockPut = cs.Hit, cs.Miss, cs.Put
	}
	if p.lr != nil {
		ls := p.lr.Stats()
		s.LinesRead = ls.Put
		s.LineHit, s.LineMiss, s.LinePut = ls.Hit, ls.Miss, ls.Put
	}
	if p.sr != nil {
		s.PinnedPattern = p.sr.PinnedPattern()
	}
	return s
}
