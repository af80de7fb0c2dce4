package jabcode

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ericlevine/jabcode/decoder"
	"github.com/ericlevine/jabcode/detector"
	"github.com/ericlevine/jabcode/internal"
)

// sizeSteps are the side size offsets tried around the estimate in
// exhaustive mode, nearest first.
var sizeSteps = []int{0, -4, 4}

// dockedSlave is a slave announced by a decoded host.
type dockedSlave struct {
	host  int
	slave internal.DockedSlave
}

// assembler decodes the master and then every wave of docked slaves. Each
// wave runs concurrently and writes to its own slots.
type assembler struct {
	opts   *DecodeOptions
	logger *zap.Logger
	det    *detector.Detector
	dec    *decoder.Decoder

	symbols []SymbolResult
	grids   []*detector.SymbolGrid
}

func newAssembler(bm *internal.Bitmap, opts *DecodeOptions) *assembler {
	logger := opts.logger()
	return &assembler{
		opts:   opts,
		logger: logger,
		det:    detector.NewDetector(bm, logger),
		dec:    decoder.NewDecoder(logger, opts.ldpcOptions()),
	}
}

func (a *assembler) run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	exhaustive := a.opts.Mode == ModeExhaustive
	g, err := a.det.DetectMaster(exhaustive)
	if err != nil {
		a.logger.Debug("no master symbol", zap.Error(err))
		return err
	}
	master := SymbolResult{Index: 0, Host: -1, Position: -1}
	master.setGrid(g)
	dr, g, err := a.decodeMaster(ctx, g, exhaustive)
	if err != nil {
		master.Err = err
		master.Status, _ = classify(err)
		a.add(master, nil)
		a.logger.Warn("master symbol failed", zap.Error(err))
		return err
	}
	master.setGrid(g)
	master.setDecoded(dr)
	a.add(master, g)
	a.logger.Debug("master decoded",
		zap.Int("width", g.Width), zap.Int("height", g.Height),
		zap.Int("colors", dr.Metadata.ColorCount()),
		zap.String("algorithm", dr.Algorithm),
		zap.Int("slaves", len(dr.Slaves)))

	var wave []dockedSlave
	for _, s := range dr.Slaves {
		wave = append(wave, dockedSlave{host: 0, slave: s})
	}
	for len(wave) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		room := a.opts.MaxSymbols - len(a.symbols)
		if room <= 0 {
			a.logger.Debug("symbol limit reached", zap.Int("pending", len(wave)))
			break
		}
		if len(wave) > room {
			wave = wave[:room]
		}
		wave = a.decodeWave(ctx, wave)
	}
	return nil
}

// decodeMaster samples the master grid and decodes it. Exhaustive mode
// retries the neighbouring side sizes when the estimate fails.
func (a *assembler) decodeMaster(ctx context.Context, g *detector.SymbolGrid, exhaustive bool) (*internal.DecoderResult, *detector.SymbolGrid, error) {
	steps := sizeSteps[:1]
	if exhaustive {
		steps = sizeSteps
	}
	var firstErr error
	for _, dh := range steps {
		for _, dw := range steps {
			w, h := g.Width+dw, g.Height+dh
			if decoder.SideVersion(w) == 0 || decoder.SideVersion(h) == 0 {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			dr, cg, err := a.decodeMasterAt(ctx, g.WithSize(w, h))
			if err == nil {
				return dr, cg, nil
			}
			a.logger.Debug("master size rejected", zap.Int("width", w), zap.Int("height", h), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return nil, nil, firstErr
}

func (a *assembler) decodeMasterAt(ctx context.Context, g *detector.SymbolGrid) (*internal.DecoderResult, *detector.SymbolGrid, error) {
	bm := a.det.Bitmap()
	colors, err := g.Sample(bm)
	if err != nil {
		return nil, nil, err
	}
	md, pal, err := a.dec.ReadMasterMetadata(colors)
	if err != nil {
		return nil, nil, err
	}
	if md.Width() != g.Width || md.Height() != g.Height {
		// The metadata walk depends on the side size, so everything is read
		// again on the corrected grid.
		g = g.WithSize(md.Width(), md.Height())
		if colors, err = g.Sample(bm); err != nil {
			return nil, nil, err
		}
		if md, pal, err = a.dec.ReadMasterMetadata(colors); err != nil {
			return nil, nil, err
		}
		if md.Width() != g.Width || md.Height() != g.Height {
			return nil, nil, fmt.Errorf("%w: side size changed on resampling", decoder.ErrMetadata)
		}
	}
	dr, err := a.dec.DecodeData(ctx, colors, md, pal, true)
	if err == nil {
		return dr, g, nil
	}
	ag, ok := a.det.AlignGrid(g)
	if !ok {
		return nil, nil, err
	}
	a.logger.Debug("resampling master by alignment patterns", zap.Error(err))
	if colors, err = ag.Sample(bm); err != nil {
		return nil, nil, err
	}
	if md, pal, err = a.dec.ReadMasterMetadata(colors); err != nil {
		return nil, nil, err
	}
	if md.Width() != ag.Width || md.Height() != ag.Height {
		return nil, nil, fmt.Errorf("%w: side size changed on resampling", decoder.ErrMetadata)
	}
	if dr, err = a.dec.DecodeData(ctx, colors, md, pal, true); err != nil {
		return nil, nil, err
	}
	return dr, ag, nil
}

// decodeWave decodes one generation of slaves and returns the next.
func (a *assembler) decodeWave(ctx context.Context, wave []dockedSlave) []dockedSlave {
	results := make([]SymbolResult, len(wave))
	grids := make([]*detector.SymbolGrid, len(wave))
	decoded := make([]*internal.DecoderResult, len(wave))
	var eg errgroup.Group
	for i, p := range wave {
		i, p := i, p
		eg.Go(func() error {
			results[i], grids[i], decoded[i] = a.decodeSlave(ctx, p)
			return nil
		})
	}
	_ = eg.Wait()

	var next []dockedSlave
	for i := range wave {
		idx := len(a.symbols)
		results[i].Index = idx
		a.add(results[i], grids[i])
		if results[i].Err != nil {
			a.logger.Warn("slave symbol failed",
				zap.Int("symbol", idx), zap.Int("host", wave[i].host),
				zap.Int("position", wave[i].slave.Position), zap.Error(results[i].Err))
			continue
		}
		a.logger.Debug("slave decoded",
			zap.Int("symbol", idx), zap.Int("host", wave[i].host),
			zap.String("algorithm", decoded[i].Algorithm))
		for _, s := range decoded[i].Slaves {
			next = append(next, dockedSlave{host: idx, slave: s})
		}
	}
	return next
}

func (a *assembler) decodeSlave(ctx context.Context, p dockedSlave) (SymbolResult, *detector.SymbolGrid, *internal.DecoderResult) {
	md := p.slave.Metadata
	r := SymbolResult{Host: p.host, Position: p.slave.Position, Metadata: md}
	fail := func(err error) (SymbolResult, *detector.SymbolGrid, *internal.DecoderResult) {
		r.Err = err
		r.Status, _ = classify(err)
		return r, nil, nil
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	g, err := a.det.DetectSlave(a.grids[p.host], p.slave.Position, md.Width(), md.Height())
	if err != nil {
		return fail(err)
	}
	r.setGrid(g)
	colors, err := g.Sample(a.det.Bitmap())
	if err != nil {
		return fail(err)
	}
	pal := decoder.ReadSlavePalettes(colors, &md)
	dr, err := a.dec.DecodeData(ctx, colors, &md, pal, false)
	if err != nil {
		ag, ok := a.det.AlignGrid(g)
		if !ok {
			return fail(err)
		}
		if colors, err = ag.Sample(a.det.Bitmap()); err != nil {
			return fail(err)
		}
		pal = decoder.ReadSlavePalettes(colors, &md)
		if dr, err = a.dec.DecodeData(ctx, colors, &md, pal, false); err != nil {
			return fail(err)
		}
		g = ag
	}
	r.setDecoded(dr)
	return r, g, dr
}

func (a *assembler) add(r SymbolResult, g *detector.SymbolGrid) {
	a.symbols = append(a.symbols, r)
	a.grids = append(a.grids, g)
}

// status folds the per-symbol outcomes into the overall status. Only a
// master failure or cancellation fails the whole decode.
func (a *assembler) status(err error) (Status, error) {
	if err != nil {
		st, sentinel := classify(err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return st, err
		}
		return st, wrap(sentinel, err)
	}
	for i := range a.symbols {
		if a.symbols[i].Err != nil {
			return StatusPartialSuccess, nil
		}
	}
	return StatusSuccess, nil
}

// payload concatenates the decoded segments in discovery order.
func (a *assembler) payload() []byte {
	var out []byte
	for i := range a.symbols {
		if a.symbols[i].Err == nil {
			out = append(out, a.symbols[i].Payload...)
		}
	}
	return out
}

func (a *assembler) observe(st Status) {
	m := a.opts.Metrics
	if m == nil {
		return
	}
	m.ObserveDecode(st.String())
	for i := range a.symbols {
		s := &a.symbols[i]
		m.ObserveSymbol(s.Host < 0, s.Status.String(), s.Algorithm, s.Iterations, s.ErrorsCorrected)
	}
}
