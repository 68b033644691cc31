package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cardledger/cardledger/internal/dedup"
	"github.com/cardledger/cardledger/internal/extract"
	"github.com/cardledger/cardledger/internal/failurelog"
	"github.com/cardledger/cardledger/internal/importer"
	"github.com/cardledger/cardledger/internal/inbox"
	"github.com/cardledger/cardledger/internal/ledger"
	"github.com/cardledger/cardledger/internal/logger"
	"github.com/cardledger/cardledger/internal/model"
	"github.com/cardledger/cardledger/internal/outcome"
)

// Source is where statements wait to be processed.
type Source interface {
	Scan() ([]inbox.File, error)
	Read(name string) ([]byte, error)
	MarkProcessed(name string) error
}

// FailureLog records statements that could not be processed.
type FailureLog interface {
	Append(entries ...failurelog.Entry) error
}

// Processor runs processing cycles over a Source.
type Processor struct {
	Source   Source
	Reader   extract.Reader
	Registry *importer.Registry
	Ledger   ledger.Store
	Failures FailureLog
	Workers  int
	Now      func() time.Time // defaults to time.Now
}

type parsed struct {
	file   string
	err    error
	result model.ParseResult
}

// ParseDocument reads and parses one statement named by the filename
// convention. The error covers everything before the parser runs; parser
// failures are reported in the result.
func ParseDocument(ctx context.Context, r extract.Reader, reg *importer.Registry, name string, content []byte) (model.ParseResult, error) {
	sf, err := importer.ParseFilename(name)
	if err != nil {
		return model.ParseResult{}, err
	}
	p, err := reg.Dispatch(sf.Institution.Tag())
	if err != nil {
		return model.ParseResult{}, err
	}
	doc, err := r.Read(ctx, content, sf.Password)
	if err != nil {
		return model.ParseResult{}, err
	}
	return importer.Parse(p, doc), nil
}

// Run processes every statement in the source once. The ledger is read a
// single time at the start; documents are parsed in parallel and then
// committed one by one in file name order, so a transaction appearing in
// two statements of the same cycle is written once. The returned error is
// for cycle-level problems only; per-file failures are in the results.
func (p *Processor) Run(ctx context.Context) ([]outcome.Result, error) {
	log := logger.FromContext(ctx).With().Str("cycle", uuid.NewString()).Logger()

	files, err := p.Source.Scan()
	if err != nil {
		return nil, fmt.Errorf("scanning inbox: %w", err)
	}
	if len(files) == 0 {
		log.Debug().Msg("inbox empty")
		return nil, nil
	}

	seen, err := ledger.SeenSet(ctx, p.Ledger)
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	log.Info().Int("files", len(files)).Int("known", seen.Len()).Msg("cycle started")

	docs := p.parseAll(ctx, files)

	results := make([]outcome.Result, 0, len(files))
	for _, d := range docs {
		res := p.commit(ctx, log.With().Str("file", d.file).Logger(), &seen, d)
		results = append(results, res)
	}

	s := outcome.Summarize(results)
	log.Info().
		Int("inserted", s.Inserted).
		Int("skipped", s.Skipped).
		Int("failed", s.Failed).
		Int("rows", s.Rows).
		Int("duplicates", s.Duplicates).
		Msg("cycle finished")
	return results, nil
}

func (p *Processor) parseAll(ctx context.Context, files []inbox.File) []parsed {
	out := make([]parsed, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Workers, 1))
	for i, f := range files {
		g.Go(func() error {
			out[i] = p.parseFile(gctx, f.Name)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (p *Processor) parseFile(ctx context.Context, name string) parsed {
	if err := ctx.Err(); err != nil {
		return parsed{file: name, err: err}
	}
	content, err := p.Source.Read(name)
	if err != nil {
		return parsed{file: name, err: err}
	}
	res, err := ParseDocument(ctx, p.Reader, p.Registry, name, content)
	return parsed{file: name, err: err, result: res}
}

func (p *Processor) commit(ctx context.Context, log zerolog.Logger, seen *dedup.SeenSet, d parsed) outcome.Result {
	in := outcome.Input{File: d.file, Err: d.err, Parse: d.result}
	if d.err == nil && d.result.Err == nil && len(d.result.Transactions) > 0 {
		in.Partition = dedup.Partition(*seen, d.result.Transactions)
		if len(in.Partition.New) > 0 {
			if err := p.Ledger.Append(ctx, in.Partition.New); err != nil {
				in.WriteErr = err
			} else {
				*seen = seen.Extend(in.Partition.Hashes()...)
			}
		}
	}
	res := outcome.Classify(in)

	for _, w := range res.Warnings {
		log.Debug().Str("row", w.Row).Str("reason", w.Reason).Msg("row skipped")
	}

	switch res.Status {
	case outcome.StatusFailed:
		if res.Reason == outcome.ReasonNoTransactions {
			log.Warn().Msg("no transactions found; layout may have changed")
		} else {
			log.Error().Str("reason", res.Reason).Msg("statement failed")
		}
		entry := failurelog.Entry{Timestamp: p.now(), Filename: d.file, Reason: res.Reason}
		if err := p.Failures.Append(entry); err != nil {
			log.Error().Err(err).Msg("recording failure")
		}
	default:
		log.Info().
			Str("status", string(res.Status)).
			Int("inserted", res.Inserted).
			Int("duplicates", res.Duplicates).
			Int("warnings", len(res.Warnings)).
			Msg("statement processed")
		if err := p.Source.MarkProcessed(d.file); err != nil {
			log.Error().Err(err).Msg("moving statement to processed")
		}
	}
	return res
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
