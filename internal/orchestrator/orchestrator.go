// Package orchestrator drives the translation pass: it walks each slide into
// task seeds, groups them per context into fixed-size batches, computes each
// paragraph's translated-length budget, fans the batch calls out to the
// gateway, and reconciles responses back to paragraphs by batch-local id.
//
// Network calls for independent batches may overlap up to the configured
// parallelism, but decoding and paragraph reconstruction always happen on
// the calling goroutine: the document is never mutated concurrently.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/believeitmyway/SlideTrans/internal/config"
	"github.com/believeitmyway/SlideTrans/internal/deck"
	"github.com/believeitmyway/SlideTrans/internal/gateway"
	"github.com/believeitmyway/SlideTrans/internal/walker"
)

// Stats accumulates per-run counters for the final report.
type Stats struct {
	Tasks         int
	Translated    int
	Skipped       int
	Batches       int
	FailedBatches int
}

func (s *Stats) add(o Stats) {
	s.Tasks += o.Tasks
	s.Translated += o.Translated
	s.Skipped += o.Skipped
	s.Batches += o.Batches
	s.FailedBatches += o.FailedBatches
}

type Orchestrator struct {
	gw  *gateway.Gateway
	cfg *config.Config
}

func New(gw *gateway.Gateway, cfg *config.Config) *Orchestrator {
	return &Orchestrator{gw: gw, cfg: cfg}
}

// Progress is called after each slide with 1-based position and total.
type Progress func(done, total int)

// TranslateDocument translates every slide in place. Per-batch failures are
// reported and skipped; the error return is reserved for context
// cancellation.
func (o *Orchestrator) TranslateDocument(ctx context.Context, pres *deck.Presentation, progress Progress) (Stats, error) {
	var stats Stats
	total := len(pres.Slides)
	for i, slide := range pres.Slides {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.add(o.TranslateSlide(ctx, slide))
		if progress != nil {
			progress(i+1, total)
		}
	}
	return stats, nil
}

// batch is one gateway call: a contiguous slice of same-context seeds, each
// identified by its index within the slice.
type batch struct {
	seeds    []walker.Seed
	template string
}

// TranslateSlide walks one slide and translates its paragraphs batch by
// batch. Standard and constrained seeds are batched independently because
// they use different prompt templates.
func (o *Orchestrator) TranslateSlide(ctx context.Context, slide *deck.Slide) Stats {
	seeds := walker.WalkSlide(slide)

	var standard, constrained []walker.Seed
	for _, s := range seeds {
		if s.Context == walker.Constrained {
			constrained = append(constrained, s)
		} else {
			standard = append(standard, s)
		}
	}

	batches := o.makeBatches(standard, o.cfg.BodyPrompt)
	batches = append(batches, o.makeBatches(constrained, o.cfg.ConstrainedPrompt)...)

	stats := Stats{Tasks: len(seeds), Batches: len(batches)}
	for _, out := range o.callBatches(ctx, batches) {
		o.applyBatch(out, &stats)
	}
	return stats
}

func (o *Orchestrator) makeBatches(seeds []walker.Seed, template string) []batch {
	size := o.cfg.BatchSize
	if size < 1 {
		size = 1
	}
	var batches []batch
	for start := 0; start < len(seeds); start += size {
		end := min(start+size, len(seeds))
		batches = append(batches, batch{seeds: seeds[start:end], template: template})
	}
	return batches
}

type outcome struct {
	batch   batch
	results []gateway.BatchResult
	err     error
}

// callBatches performs the network calls with a bounded worker pool and
// returns all outcomes to the caller. Only the calls run concurrently;
// nothing here touches the document.
func (o *Orchestrator) callBatches(ctx context.Context, batches []batch) []outcome {
	if len(batches) == 0 {
		return nil
	}

	workers := min(o.cfg.MaxParallelRequests, len(batches))
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan batch, len(batches))
	results := make(chan outcome, len(batches))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range jobs {
				res, err := o.gw.TranslateBatch(ctx, b.template, o.items(b))
				results <- outcome{batch: b, results: res, err: err}
			}
		}()
	}

	for _, b := range batches {
		jobs <- b
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var outcomes []outcome
	for out := range results {
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func (o *Orchestrator) items(b batch) []gateway.BatchItem {
	items := make([]gateway.BatchItem, len(b.seeds))
	for i, seed := range b.seeds {
		items[i] = gateway.BatchItem{
			ID:    i,
			Text:  seed.Markup,
			Limit: o.MaxChars(seed.RawLen),
		}
	}
	return items
}

// applyBatch reconciles one batch outcome against its seeds. The id mapping
// is positional: seed i was sent as item i. Missing ids, failed decodes and
// failed batches all degrade to "paragraph left untranslated".
func (o *Orchestrator) applyBatch(out outcome, stats *Stats) {
	if out.err != nil {
		stats.FailedBatches++
		stats.Skipped += len(out.batch.seeds)
		fmt.Fprintf(os.Stderr, "batch of %d dropped: %v\n", len(out.batch.seeds), out.err)
		return
	}

	byID := make(map[int]string, len(out.results))
	for _, r := range out.results {
		byID[r.ID] = r.Translation
	}

	for i, seed := range out.batch.seeds {
		translation, ok := byID[i]
		if !ok || strings.TrimSpace(translation) == "" {
			stats.Skipped++
			fmt.Fprintf(os.Stderr, "no translation for item %d (%s), leaving paragraph unchanged\n", i, seed.Context)
			continue
		}
		if Reconstruct(seed, translation) {
			stats.Translated++
		} else {
			stats.Skipped++
			fmt.Fprintf(os.Stderr, "unusable translation for item %d, leaving paragraph unchanged\n", i)
		}
	}
}

// MaxChars computes the translated-length budget for a paragraph of rawLen
// characters from the configured language pair and expansion ratio:
// Japanese into English grows by the ratio, the reverse direction shrinks
// by its inverse, any other pair is budgeted one-to-one. Language matching
// is case-insensitive substring matching against the configured names.
func (o *Orchestrator) MaxChars(rawLen int) int {
	return int(float64(rawLen) * o.ratio())
}

func (o *Orchestrator) ratio() float64 {
	src := strings.ToLower(o.cfg.SourceLanguage)
	tgt := strings.ToLower(o.cfg.TargetLanguage)
	r := o.cfg.ExpansionRatio

	switch {
	case strings.Contains(src, "japanese") && strings.Contains(tgt, "english"):
		return r
	case strings.Contains(src, "english") && strings.Contains(tgt, "japanese"):
		if r == 0 {
			return 1.0
		}
		return 1.0 / r
	default:
		return 1.0
	}
}
