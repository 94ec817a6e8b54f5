package app

import (
	"context"
	"errors"

	"github.com/bft-labs/jointreplay/internal/domain"
	"github.com/bft-labs/jointreplay/internal/ports"
)

// Parser turns the persisted record array into a validated, downsampled Timeline.
type Parser struct {
	source ports.RecordSource
	logger ports.Logger

	raw      []domain.RawRecord
	loaded   bool
	timeline *domain.Timeline
}

// NewParser creates a parser reading from source.
func NewParser(source ports.RecordSource, logger ports.Logger) *Parser {
	return &Parser{source: source, logger: logger}
}

// Load reads the full raw record set into memory, replacing any previous load.
// Failures are returned as *domain.DataSourceError.
func (p *Parser) Load(ctx context.Context) error {
	p.logger.Info("loading records", ports.String("source", p.source.Name()))

	raw, err := p.source.Load(ctx)
	if err != nil {
		var dsErr *domain.DataSourceError
		if !errors.As(err, &dsErr) {
			err = &domain.DataSourceError{Source: p.source.Name(), Err: err}
		}
		p.logger.Error("load failed", ports.Err(err))
		return err
	}

	p.raw = raw
	p.loaded = true
	p.logger.Info("loaded records", ports.Int("records", len(raw)))
	return nil
}

// RawCount returns the number of loaded raw records.
func (p *Parser) RawCount() int {
	return len(p.raw)
}

// Parse keeps every downsample-th raw record (the first is always kept),
// extracts snapshots and freezes them into a Timeline. Records are loaded
// first if Load has not been called.
func (p *Parser) Parse(ctx context.Context, downsample int) (*domain.Timeline, error) {
	if downsample < 1 {
		return nil, domain.ErrInvalidDownsample
	}
	if !p.loaded {
		if err := p.Load(ctx); err != nil {
			return nil, err
		}
	}

	entries := make([]domain.Snapshot, 0, (len(p.raw)+downsample-1)/downsample)
	partDOF := map[string]int{}
	var partOrder []string

	for i := 0; i < len(p.raw); i += downsample {
		rec := p.raw[i]
		if rec.SequenceID == nil {
			return nil, &domain.MalformedRecordError{Index: i, Field: "sequenceId"}
		}
		if rec.TimestampNs == nil {
			return nil, &domain.MalformedRecordError{Index: i, Field: "timestampNs"}
		}
		if !rec.HasParts() {
			return nil, &domain.MalformedRecordError{Index: i, Field: "parts"}
		}

		snap := domain.Snapshot{
			SequenceID:  int64(*rec.SequenceID),
			TimestampNs: int64(*rec.TimestampNs),
			Parts:       make(map[string][]float64, len(rec.Parts)),
		}
		for _, part := range rec.Parts {
			if part.Part == "" {
				return nil, &domain.MalformedRecordError{Index: i, Field: "parts.part"}
			}
			if part.Position == nil || part.Position.Values == nil {
				// no data for this part in this snapshot
				continue
			}
			values := part.Position.Values
			if dof, seen := partDOF[part.Part]; !seen {
				partDOF[part.Part] = len(values)
				partOrder = append(partOrder, part.Part)
			} else if dof != len(values) {
				return nil, &domain.InconsistentDOFError{
					Index:    i,
					Part:     part.Part,
					Expected: dof,
					Got:      len(values),
				}
			}
			snap.Parts[part.Part] = append([]float64(nil), values...)
		}
		entries = append(entries, snap)
	}

	tl := domain.NewTimeline(entries, partOrder, partDOF, downsample)
	p.timeline = tl

	p.logger.Info("parsed timeline",
		ports.Int("downsample", downsample),
		ports.Int("entries", tl.Len()),
		ports.Int("parts", len(partOrder)),
	)
	for _, name := range partOrder {
		p.logger.Debug("part", ports.Part(name), ports.Int("dof", partDOF[name]))
	}
	if dups := tl.DuplicateSequenceIDs(); len(dups) > 0 {
		p.logger.Warn("duplicate sequence ids, lookups resolve to first entry",
			ports.Int("count", len(dups)),
			ports.Any("sequence_ids", dups),
		)
	}

	return tl, nil
}

// Timeline returns the last parsed timeline, or nil.
func (p *Parser) Timeline() *domain.Timeline {
	return p.timeline
}

// Info returns summary information about the parsed timeline.
func (p *Parser) Info() (domain.TimelineInfo, error) {
	if p.timeline == nil {
		return domain.TimelineInfo{}, domain.ErrNotLoaded
	}
	return p.timeline.Info(), nil
}

// DataByIndex returns the parsed entry at index i.
func (p *Parser) DataByIndex(i int) (domain.Snapshot, bool) {
	if p.timeline == nil {
		return domain.Snapshot{}, false
	}
	return p.timeline.ByIndex(i)
}

// DataBySequenceID returns the first parsed entry with the given sequence id.
func (p *Parser) DataBySequenceID(id int64) (domain.Snapshot, bool) {
	if p.timeline == nil {
		return domain.Snapshot{}, false
	}
	s, _, ok := p.timeline.BySequenceID(id)
	return s, ok
}
