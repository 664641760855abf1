package analysis

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"github.com/repodigest/repodigest/internal/domain/models"
	"github.com/repodigest/repodigest/internal/domain/ports"
	"github.com/repodigest/repodigest/internal/logger"
)

const (
	defaultWorkers       = 4
	defaultTimeout       = 30 * time.Second
	defaultMaxTokens     = 500
	defaultShutdownGrace = 30 * time.Second

	maxIssueRefs      = 3
	maxIssueDescChars = 1000
	maxPRExcerptChars = 300
	maxMessageChars   = 200
)

// EngineConfig tunes the summarization engine. Zero values pick sane
// defaults.
type EngineConfig struct {
	// Workers bounds the number of in-flight model calls.
	Workers int
	// Timeout applies per commit, not per batch.
	Timeout time.Duration
	// MaxTokens is the output token ceiling per summary request.
	MaxTokens int32
	// PreserveOrder switches to sequential processing in input order, for
	// deterministic logs and tests.
	PreserveOrder bool
	// ShutdownGrace bounds how long Close waits for in-flight calls.
	ShutdownGrace time.Duration
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = defaultShutdownGrace
	}
	return c
}

// SummaryEngine fans one summarization request per commit across a bounded
// worker pool and collects whichever results complete. A failed or timed-out
// call only drops that one commit from the result map; there are no retries
// and no cross-task cancellation. The engine is built once per run and
// closed once; a resolver is supplied per batch because issue lookups are
// scoped to one repository.
type SummaryEngine struct {
	client ports.AIClient
	cfg    EngineConfig

	sem      *semaphore.Weighted
	inflight sync.WaitGroup
}

func NewSummaryEngine(client ports.AIClient, cfg EngineConfig) *SummaryEngine {
	cfg = cfg.withDefaults()
	return &SummaryEngine{
		client: client,
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.Workers)),
	}
}

// Summarize generates a two-sentence summary per commit and returns a map
// from commit SHA to summary text. Commits whose summarization failed,
// timed out or produced no usable text are absent from the map. An empty
// input returns an empty map without issuing a single model call. resolver
// may be nil, in which case issue references are not expanded in prompts.
func (e *SummaryEngine) Summarize(ctx context.Context, commits []models.Commit, resolver ports.IssueResolver) map[string]string {
	summaries := make(map[string]string)
	if len(commits) == 0 {
		return summaries
	}

	started := time.Now()
	logger.Info(ctx, "summarizing commits",
		"count", len(commits),
		"workers", e.cfg.Workers,
		"preserve_order", e.cfg.PreserveOrder)

	if e.cfg.PreserveOrder {
		for i, commit := range commits {
			logger.Debug(ctx, "summarizing commit",
				"sha", commit.ShortSHA(), "position", i+1, "total", len(commits))
			if summary, ok := e.summarizeOne(ctx, commit, resolver); ok {
				summaries[commit.SHA] = summary
			} else {
				logger.Warn(ctx, "no summary produced", "sha", commit.ShortSHA())
			}
		}
	} else {
		var mu sync.Mutex
		var wg sync.WaitGroup
		for _, commit := range commits {
			if err := e.sem.Acquire(ctx, 1); err != nil {
				logger.Warn(ctx, "summarization batch interrupted", "error", err)
				break
			}
			wg.Add(1)
			go func(c models.Commit) {
				defer wg.Done()
				defer e.sem.Release(1)
				if summary, ok := e.summarizeOne(ctx, c, resolver); ok {
					mu.Lock()
					summaries[c.SHA] = summary
					mu.Unlock()
				}
			}(commit)
		}
		wg.Wait()
	}

	logger.Info(ctx, "summarization complete",
		"summaries", len(summaries),
		"count", len(commits),
		"duration_ms", time.Since(started).Milliseconds())
	return summaries
}

// summarizeOne runs one commit's prompt build and model call with the
// per-commit timeout and cleans the response. ok is false when nothing
// usable came back; the failure stays local to this commit.
//
// The call executes in its own goroutine and the wait is raced against the
// deadline, so a collaborator that ignores context cancellation stalls only
// its own abandoned goroutine, never the batch. Abandoned calls are tracked
// by inflight and reaped by Close.
func (e *SummaryEngine) summarizeOne(ctx context.Context, commit models.Commit, resolver ports.IssueResolver) (string, bool) {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	type invokeResult struct {
		text string
		err  error
	}
	results := make(chan invokeResult, 1)
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		prompt := e.buildSummaryPrompt(callCtx, commit, resolver)
		raw, err := e.client.Invoke(callCtx, prompt, e.cfg.MaxTokens)
		results <- invokeResult{text: raw, err: err}
	}()

	select {
	case res := <-results:
		if res.err != nil {
			logger.Warn(ctx, "summary request failed", "sha", commit.ShortSHA(), "error", res.err)
			return "", false
		}
		return CleanSummaryResponse(res.text)
	case <-callCtx.Done():
		logger.Warn(ctx, "summary request timed out", "sha", commit.ShortSHA(), "error", callCtx.Err())
		return "", false
	}
}

var (
	issueURLPattern = regexp.MustCompile(`https://github\.com/[^/]+/[^/]+/issues/(\d+)`)
	issueRefPattern = regexp.MustCompile(`(?:^|[^A-Za-z0-9_])#(\d+)`)
)

// buildSummaryPrompt assembles a single bounded prompt for one commit:
// instruction, optional PR excerpt, up to three resolved issue references,
// short SHA, author and a truncated message.
func (e *SummaryEngine) buildSummaryPrompt(ctx context.Context, commit models.Commit, resolver ports.IssueResolver) string {
	refs := extractIssueRefs(commit.Message)
	if strings.TrimSpace(commit.PRBody) != "" {
		refs = appendUnique(refs, extractIssueRefs(commit.PRBody))
	}

	var issuesSegment strings.Builder
	if resolver != nil {
		limit := len(refs)
		if limit > maxIssueRefs {
			limit = maxIssueRefs
		}
		for _, num := range refs[:limit] {
			desc, ok := resolver.IssueDescription(ctx, num)
			if !ok || strings.TrimSpace(desc) == "" {
				continue
			}
			fmt.Fprintf(&issuesSegment, "Issue #%d: %s\n", num, truncate(strings.TrimSpace(desc), maxIssueDescChars))
		}
	}

	var prSegment string
	if body := strings.TrimSpace(commit.PRBody); body != "" {
		prSegment = "PR Description: " + truncate(body, maxPRExcerptChars) + "\n"
	}

	return fmt.Sprintf(
		"Generate exactly 2 short sentences (each <= 80 chars) summarizing this git commit. "+
			"Return them in a SINGLE LINE separated by a space (no line breaks). "+
			"%s%sCommit: %s\nAuthor: %s\nMessage: %s\n\nOutput format (single line): <Sentence 1.> <Sentence 2.>",
		prSegment,
		issuesSegment.String(),
		commit.ShortSHA(),
		commit.AuthorLogin,
		truncate(commit.Message, maxMessageChars),
	)
}

// Close waits up to the configured grace period for model calls that were
// abandoned at their deadline, then gives up on them. Call exactly once
// when done with the engine, not per batch.
func (e *SummaryEngine) Close() error {
	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(e.cfg.ShutdownGrace):
		return errors.New("summary engine: in-flight requests did not finish within grace period")
	}
}

// extractIssueRefs pulls issue numbers out of free text, both as full
// GitHub issue URLs and as #123 references, deduplicated in order of first
// appearance.
func extractIssueRefs(text string) []int {
	if text == "" {
		return nil
	}
	var refs []int
	for _, m := range issueURLPattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			refs = appendUnique(refs, []int{n})
		}
	}
	for _, m := range issueRefPattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			refs = appendUnique(refs, []int{n})
		}
	}
	return refs
}

func appendUnique(refs []int, more []int) []int {
	for _, n := range more {
		seen := false
		for _, have := range refs {
			if have == n {
				seen = true
				break
			}
		}
		if !seen {
			refs = append(refs, n)
		}
	}
	return refs
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return cutRuneSafe(text, max-3) + "..."
}

// cutRuneSafe cuts text to at most n bytes without splitting a multibyte
// rune at the boundary.
func cutRuneSafe(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}
