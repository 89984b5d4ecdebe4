package analyzers

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mindfuljournal/analyzer/pkg/models"
)

var tracer trace.Tracer = otel.Tracer("github.com/mindfuljournal/analyzer/pkg/analyzers")

// Result is the merged outcome of one analysis run.
type Result struct {
	Response *models.AnalyzeResponse
	Total    int
	Failed   int
	TimedOut int
}

// AllFailed is true when no analyzer produced its field.
func (r *Result) AllFailed() bool {
	return r.Total > 0 && r.Failed == r.Total
}

// AllTimedOut is true when every analyzer ran out of time.
func (r *Result) AllTimedOut() bool {
	return r.Total > 0 && r.TimedOut == r.Total
}

type outcome struct {
	done bool
	resp *models.AnalyzeResponse
	err  error
}

// Run fans text out to every analyzer concurrently and merges their fields. A positive
// timeout bounds the whole run: analyzers still running when it expires are reported with
// CodeTimeout and their late results are discarded. When ctx is canceled instead, they are
// reported with CodeCanceled.
func Run(
	ctx context.Context,
	analyzers []models.Analyzer,
	text string,
	timeout time.Duration,
) *Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		outcomes = make([]outcome, len(analyzers))
		closed   bool
	)

	for i, a := range analyzers {
		i, a := i, a
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := analyze(ctx, a, text)

			mu.Lock()
			defer mu.Unlock()
			if !closed {
				outcomes[i] = outcome{done: true, resp: resp, err: err}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}

	mu.Lock()
	closed = true
	collected := append([]outcome(nil), outcomes...)
	mu.Unlock()

	result := &Result{Response: &models.AnalyzeResponse{}, Total: len(analyzers)}
	for i, o := range collected {
		info := analyzers[i].Info()
		err := o.err
		if !o.done {
			err = models.NewAnalyzerError(info.Name, models.CodeOf(ctx.Err()), ctx.Err())
		}

		if err != nil {
			failure := models.NewAnalyzerFailure(err)
			result.Response.AddFailure(info.Field, failure)
			result.Failed++
			if failure.Code == models.CodeTimeout {
				result.TimedOut++
			}
			log.Warnf("analyzer %s failed: %v", info.Name, err)
			continue
		}
		result.Response.Merge(o.resp)
	}

	return result
}

func analyze(ctx context.Context, a models.Analyzer, text string) (*models.AnalyzeResponse, error) {
	info := a.Info()
	ctx, span := tracer.Start(ctx, "analyzer."+info.Name, trace.WithAttributes(
		attribute.String("analyzer.name", info.Name),
		attribute.String("analyzer.backend", info.Backend),
	))
	defer span.End()

	start := time.Now()
	resp, err := a.Analyze(ctx, text)
	log.Debugf("analyzer %s finished in %s", info.Name, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(models.CodeOf(err)))
		return nil, err
	}
	return resp, nil
}
