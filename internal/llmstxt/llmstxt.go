// Package llmstxt builds the llms.txt index from the digest markdown files
// the triggered workflow publishes.
package llmstxt

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const (
	// DigestsMarker precedes the entry list; Insert adds new entries right after it.
	DigestsMarker = "## Digests\n\n"

	title      = "# Claude Reads HN"
	summary    = "> AI-curated HN digests every 5 hours. Check story IDs before curating to avoid duplicates. Update after each digest."
	topicsLine = "- Topics: AI/ML, security, programming, infrastructure, social, science"
	firstIssue = "2025-12-10"

	maxStoryIDs = 5
	maxTopics   = 5
	maxVibeLen  = 50
)

var (
	ErrNoHeader       = errors.New("no digest header")
	ErrNoDigestsBlock = errors.New("cannot find '## Digests' section")
)

var (
	headerRe     = regexp.MustCompile(`# HN Digest (\d{4}-\d{2}-\d{2}) (\d{2}:\d{2})`)
	storyIDRe    = regexp.MustCompile(`item\?id=(\d+)`)
	highlightsRe = regexp.MustCompile(`\*\*Highlights\*\*\n((?:- .+\n)+)`)
	topicRe      = regexp.MustCompile(`^- ([^:]+):`)
	vibeRe       = regexp.MustCompile(`(?m)^> (.+)$`)
)

// Digest is the metadata of one digest file.
type Digest struct {
	// Path is slash separated, as it appears in links.
	Path     string
	Date     string
	Time     string
	StoryIDs []string
	Topics   []string
}

// Parse extracts digest metadata from content.
// Topics come from the Highlights list, falling back to the first quote line.
func Parse(path string, content []byte) (*Digest, error) {
	text := string(content)
	header := headerRe.FindStringSubmatch(text)
	if header == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
	}
	d := &Digest{Path: filepath.ToSlash(path), Date: header[1], Time: header[2]}

	for _, m := range storyIDRe.FindAllStringSubmatch(text, -1) {
		if len(d.StoryIDs) == maxStoryIDs {
			break
		}
		d.StoryIDs = append(d.StoryIDs, m[1])
	}

	if h := highlightsRe.FindStringSubmatch(text); h != nil {
		for _, line := range strings.Split(strings.TrimSpace(h[1]), "\n") {
			if m := topicRe.FindStringSubmatch(line); m != nil {
				d.Topics = append(d.Topics, strings.TrimSpace(m[1]))
			}
		}
	}
	if len(d.Topics) == 0 {
		if v := vibeRe.FindStringSubmatch(text); v != nil {
			vibe := []rune(v[1])
			if len(vibe) > maxVibeLen {
				vibe = vibe[:maxVibeLen]
			}
			d.Topics = []string{string(vibe)}
		}
	}
	if len(d.Topics) > maxTopics {
		d.Topics = d.Topics[:maxTopics]
	}
	return d, nil
}

// ParseFile reads and parses one digest file.
func ParseFile(path string) (*Digest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, b)
}

// Scan parses every *.md under dir. Unreadable or headerless files are skipped with a warning.
func Scan(dir string) ([]Digest, error) {
	log := slog.Default()
	var digests []Digest
	err := filepath.WalkDir(dir, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		d, err := ParseFile(path)
		if err != nil {
			log.Warn("skipping digest", "path", path, "err", err)
			return nil
		}
		digests = append(digests, *d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return digests, nil
}

// Line renders the index entry: - [date time](path): topics | ids
func (d Digest) Line() string {
	topics := "misc"
	if len(d.Topics) > 0 {
		topics = strings.Join(d.Topics, ", ")
	}
	line := fmt.Sprintf("- [%s %s](%s): %s", d.Date, d.Time, d.Path, topics)
	if len(d.StoryIDs) > 0 {
		line += " | " + strings.Join(d.StoryIDs, ", ")
	}
	return line
}

// Generate renders a full llms.txt, newest digest first.
func Generate(digests []Digest) string {
	sorted := append([]Digest(nil), digests...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date > sorted[j].Date
		}
		return sorted[i].Time > sorted[j].Time
	})

	lines := []string{title, "", summary, "", "## Digests", ""}
	for _, d := range sorted {
		lines = append(lines, d.Line())
	}
	lines = append(lines,
		"",
		"## Optional",
		"",
		topicsLine,
		fmt.Sprintf("- Stats: %d digests since %s", len(sorted), firstIssue),
	)
	return strings.Join(lines, "\n") + "\n"
}

// Insert adds d as the first entry of an existing llms.txt.
func Insert(content string, d Digest) (string, error) {
	i := strings.Index(content, DigestsMarker)
	if i < 0 {
		return "", ErrNoDigestsBlock
	}
	pos := i + len(DigestsMarker)
	return content[:pos] + d.Line() + "\n" + content[pos:], nil
}
