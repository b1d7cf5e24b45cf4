package trackname

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// DefaultExtension is the extension that marks track entries.
const DefaultExtension = ".vgz"

// Match is the parsed form of a track entry name.
type Match struct {
	Ordinal string
	Name    string
}

// PatternError reports a track-extension entry whose name does not follow the
// "<digits> <name><ext>" convention.
type PatternError struct {
	Path string
	Game string
}

func (e *PatternError) Error() string {
	if e.Game == "" {
		return fmt.Sprintf("entry %q does not match the track name pattern", e.Path)
	}
	return fmt.Sprintf("entry %q of %q does not match the track name pattern", e.Path, e.Game)
}

// ErrorKind classifies the error for run logs.
func (e *PatternError) ErrorKind() string { return "entry_name_pattern" }

// Classifier matches archive entry names against the track convention for one
// extension.
type Classifier struct {
	ext     string
	pattern *regexp.Regexp
}

// New builds a classifier for ext. An empty ext selects DefaultExtension.
func New(ext string) *Classifier {
	if ext == "" {
		ext = DefaultExtension
	}
	return &Classifier{
		ext:     ext,
		pattern: regexp.MustCompile(`^(\d{2,3}) ([\w\s(),_-]+)` + regexp.QuoteMeta(ext) + `$`),
	}
}

// Extension returns the extension the classifier accepts.
func (c *Classifier) Extension() string { return c.ext }

// IsCandidate reports whether entryPath names a file with the track extension.
// Directories are never candidates, and neither is a base name that is only
// the extension, such as ".vgz".
func (c *Classifier) IsCandidate(entryPath string) bool {
	if entryPath == "" || strings.HasSuffix(entryPath, "/") {
		return false
	}
	base := path.Base(entryPath)
	return len(base) > len(c.ext) && strings.HasSuffix(base, c.ext)
}

// Classify returns the parsed track for entryPath. ok is false when the entry
// is not a track candidate. A candidate that does not match the pattern, or
// whose name is blank, returns a *PatternError naming game.
func (c *Classifier) Classify(entryPath, game string) (Match, bool, error) {
	if !c.IsCandidate(entryPath) {
		return Match{}, false, nil
	}
	groups := c.pattern.FindStringSubmatch(path.Base(entryPath))
	if groups == nil || strings.TrimSpace(groups[2]) == "" {
		return Match{}, true, &PatternError{Path: entryPath, Game: game}
	}
	return Match{Ordinal: groups[1], Name: groups[2]}, true, nil
}
