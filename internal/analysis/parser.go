package analysis

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/repodigest/repodigest/internal/domain/models"
)

// The model replies to the categorization prompt with labeled bracket lists,
// e.g. "Bug Fixes: [1,3], Features: [2], Improvements: [], Others: [4]".
// Parsing is a total function: malformed input degrades to empty buckets and
// the caller falls back to keyword classification.

var categoryPatterns = map[string]*regexp.Regexp{
	"bugfixes":     regexp.MustCompile(`Bug\s*Fixes\s*:\s*\[([^\]]*)\]`),
	"features":     regexp.MustCompile(`Features\s*:\s*\[([^\]]*)\]`),
	"improvements": regexp.MustCompile(`Improvements\s*:\s*\[([^\]]*)\]`),
	"others":       regexp.MustCompile(`Others\s*:\s*\[([^\]]*)\]`),
}

// ParseCategorization extracts the four bucket index lists from a raw model
// response and maps them back onto the input commits (indices are 1-based).
// Malformed tokens and out-of-range indices are discarded. A commit claimed
// by several buckets lands in the first one; commits the model never
// mentioned land in Others, so the result always covers every input commit.
//
// The second return is false when no index could be recovered from any
// bucket, signalling the caller to use the keyword fallback instead.
func ParseCategorization(response string, commits []models.Commit) (Categorization, bool) {
	indices := func(label string) []int {
		m := categoryPatterns[label].FindStringSubmatch(response)
		if m == nil {
			return nil
		}
		var out []int
		for _, tok := range strings.Split(m[1], ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			n, err := strconv.Atoi(tok)
			if err != nil || n < 1 || n > len(commits) {
				continue
			}
			out = append(out, n)
		}
		return out
	}

	buckets := [][]int{
		indices("bugfixes"),
		indices("features"),
		indices("improvements"),
		indices("others"),
	}

	recovered := 0
	for _, b := range buckets {
		recovered += len(b)
	}
	if recovered == 0 {
		return Categorization{}, false
	}

	var cat Categorization
	assigned := make(map[int]bool, len(commits))
	targets := []*[]models.Commit{&cat.BugFixes, &cat.Features, &cat.Improvements, &cat.Others}
	for i, bucket := range buckets {
		for _, n := range bucket {
			if assigned[n] {
				continue
			}
			assigned[n] = true
			*targets[i] = append(*targets[i], commits[n-1])
		}
	}

	// Whatever the model left out still has to land somewhere.
	for i, c := range commits {
		if !assigned[i+1] {
			cat.Others = append(cat.Others, c)
		}
	}

	return cat, true
}

var (
	summaryPrefixes = []string{
		"Summary:", "summary:",
		"Commit summary:", "commit summary:",
		"Output:", "output:",
	}
	whitespaceRun = regexp.MustCompile(`\s+`)
)

const fillerSentence = "Improves code quality."

// CleanSummaryResponse normalizes a raw per-commit summary response into a
// single line of at most two sentences, capped at 200 characters. The second
// return is false when no usable text survives cleaning: the commit is then
// simply absent from the summary map, which is the expected failure mode and
// not an error.
func CleanSummaryResponse(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)
	for _, prefix := range summaryPrefixes {
		if strings.HasPrefix(cleaned, prefix) {
			cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, prefix))
			break
		}
	}
	if cleaned == "" {
		return "", false
	}

	var pieces []string
	for _, line := range strings.Split(strings.ReplaceAll(cleaned, "\r", ""), "\n") {
		line = whitespaceRun.ReplaceAllString(strings.TrimSpace(line), " ")
		if line != "" {
			pieces = append(pieces, line)
		}
	}
	if len(pieces) == 0 {
		return "", false
	}

	if len(pieces) == 1 {
		single := ensurePunctuation(pieces[0])
		if len(single) >= 15 && endsWithTerminal(single) {
			return truncateIfNeeded(single), true
		}
		return truncateIfNeeded(ensureTwoSentences(single)), true
	}

	first := ensurePunctuation(pieces[0])
	second := ensurePunctuation(pieces[1])
	return truncateIfNeeded(first + " " + second), true
}

// ensureTwoSentences splits a single line on terminal punctuation and keeps
// the first two sentences, fabricating a generic second one if needed.
func ensureTwoSentences(line string) string {
	trimmed := whitespaceRun.ReplaceAllString(strings.TrimSpace(line), " ")

	var sentences []string
	var current strings.Builder
	for _, r := range trimmed {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
			if len(sentences) == 2 {
				break
			}
		}
	}
	if len(sentences) < 2 && current.Len() > 0 {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
	}

	switch len(sentences) {
	case 0:
		return "Update applied. " + fillerSentence
	case 1:
		sentences = append(sentences, fillerSentence)
	}
	return ensurePunctuation(sentences[0]) + " " + ensurePunctuation(sentences[1])
}

// truncateIfNeeded caps the combined result at 200 bytes, preferring a
// sentence boundary past position 150 over a hard cut. The hard cut never
// splits a multibyte rune.
func truncateIfNeeded(text string) string {
	if len(text) <= 200 {
		return text
	}
	if idx := strings.LastIndex(text[:198], "."); idx > 150 {
		return text[:idx+1]
	}
	return cutRuneSafe(text, 197) + "..."
}

func ensurePunctuation(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if endsWithTerminal(s) {
		return s
	}
	return s + "."
}

func endsWithTerminal(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}
