package crawler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alvmarrod/redfish-verify/internal/metrics"
	"github.com/alvmarrod/redfish-verify/internal/redfish"
	"github.com/alvmarrod/redfish-verify/internal/validate"
)

// Fetcher retrieves one resource by its service-relative path
type Fetcher interface {
	Get(ctx context.Context, path string) (*redfish.Resource, error)
}

// Crawler walks the service's resource graph breadth-first, following
// @odata.id references, visiting each distinct path at most once, and
// classifying every visited resource. One fetch is outstanding at a time;
// the queue and visited set are owned exclusively by the crawler.
type Crawler struct {
	fetcher   Fetcher
	validator *validate.Validator
	tracker   *metrics.Tracker
	queue     *Queue
}

// New creates a crawler over a fetcher and a validator
func New(fetcher Fetcher, validator *validate.Validator, tracker *metrics.Tracker) *Crawler {
	return &Crawler{
		fetcher:   fetcher,
		validator: validator,
		tracker:   tracker,
		queue:     NewQueue(),
	}
}

// Run crawls the graph from the start path and returns one classification
// record per visited path, in visit order. Fetch failures become Fail
// records; only the caller's context can abort the crawl early.
func (c *Crawler) Run(ctx context.Context, start string) []validate.Record {
	var records []validate.Record

	c.queue.Push(NormalizeReference(start))

	for {
		path, ok := c.queue.Pop()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			logrus.Warnf("Crawl aborted with %d paths pending: %v", c.queue.Len(), err)
			break
		}

		started := time.Now()
		res, err := c.fetcher.Get(ctx, path)
		if err != nil {
			logrus.Warnf("Failed to fetch %s: %v", path, err)
			c.tracker.IncrementFetchFailures()
			records = append(records, c.count(validate.FetchFailure(path, err)))
			continue
		}

		c.tracker.RecordFetchTime(time.Since(started))
		c.tracker.IncrementResourcesFetched()

		discovered := 0
		for _, ref := range res.References() {
			target := NormalizeReference(ref)
			if target == "" {
				continue
			}
			if c.queue.Push(target) {
				discovered++
			}
		}
		logrus.Debugf("Visited %s: %d new references, %d pending", path, discovered, c.queue.Len())

		records = append(records, c.count(c.validator.Classify(res)))
	}

	return records
}

func (c *Crawler) count(rec validate.Record) validate.Record {
	switch rec.Verdict {
	case validate.VerdictPass:
		c.tracker.IncrementPassed()
	case validate.VerdictWarning:
		c.tracker.IncrementWarned()
	case validate.VerdictFail:
		c.tracker.IncrementFailed()
	}
	return rec
}
