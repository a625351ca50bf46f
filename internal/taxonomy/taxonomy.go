// Package taxonomy provides the closed motif taxonomy and the sentinel
// categories the QC detectors key on. The set is resolved once at startup
// (config or YAML file); detectors compare categories through Canon so the
// hot path never does ad hoc string massaging.
package taxonomy

import (
	"os"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Taxonomy is the closed, ordered category set plus the sentinel labels the
// detectors reference. Sentinels that describe survey rows (NeedsAnalysis,
// Resolved) are members of Categories; EscalatedOK and the road categories
// only ever appear in the tracking extract.
type Taxonomy struct {
	Categories    []string `yaml:"categories" mapstructure:"categories"`
	NeedsAnalysis string   `yaml:"needs_analysis" mapstructure:"needs_analysis"`
	Resolved      string   `yaml:"resolved" mapstructure:"resolved"`
	EscalatedOK   string   `yaml:"escalated_ok" mapstructure:"escalated_ok"`
	RoadCreate    string   `yaml:"road_create" mapstructure:"road_create"`
	RoadModify    string   `yaml:"road_modify" mapstructure:"road_modify"`

	members map[string]struct{}
}

// Default returns the standard seven-motif taxonomy.
func Default() *Taxonomy {
	t := &Taxonomy{
		Categories: []string{
			"no-action",
			"resolved",
			"unresolved",
			"admin-ras",
			"admin-ok",
			"admin-nok",
			"out-of-scope",
		},
		NeedsAnalysis: "unresolved",
		Resolved:      "resolved",
		EscalatedOK:   "admin-ok-escalated",
		RoadCreate:    "create-road",
		RoadModify:    "modify-road",
	}
	t.index()
	return t
}

// LoadFile reads a taxonomy override from a YAML file. Fields left empty in
// the file keep their defaults.
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "taxonomy: read %s", path)
	}

	t := Default()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, eris.Wrapf(err, "taxonomy: parse %s", path)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.index()
	return t, nil
}

// Validate checks the taxonomy is usable: a non-empty closed set, sentinel
// labels present, and the survey-row sentinels members of the set.
func (t *Taxonomy) Validate() error {
	if len(t.Categories) == 0 {
		return eris.New("taxonomy: empty category set")
	}
	seen := make(map[string]struct{}, len(t.Categories))
	for _, c := range t.Categories {
		canon := Canon(c)
		if canon == "" {
			return eris.New("taxonomy: blank category label")
		}
		if _, dup := seen[canon]; dup {
			return eris.Errorf("taxonomy: duplicate category %q", c)
		}
		seen[canon] = struct{}{}
	}
	for name, v := range map[string]string{
		"needs_analysis": t.NeedsAnalysis,
		"resolved":       t.Resolved,
		"escalated_ok":   t.EscalatedOK,
		"road_create":    t.RoadCreate,
		"road_modify":    t.RoadModify,
	} {
		if strings.TrimSpace(v) == "" {
			return eris.Errorf("taxonomy: sentinel %s is empty", name)
		}
	}
	for name, v := range map[string]string{
		"needs_analysis": t.NeedsAnalysis,
		"resolved":       t.Resolved,
	} {
		if _, ok := seen[Canon(v)]; !ok {
			return eris.Errorf("taxonomy: sentinel %s=%q is not a member of the category set", name, v)
		}
	}
	return nil
}

func (t *Taxonomy) index() {
	t.members = make(map[string]struct{}, len(t.Categories))
	for _, c := range t.Categories {
		t.members[Canon(c)] = struct{}{}
	}
}

// Member reports whether a raw category value belongs to the closed set.
// Empty values are not members (absence is handled by the callers).
func (t *Taxonomy) Member(raw string) bool {
	canon := Canon(raw)
	if canon == "" {
		return false
	}
	if t.members == nil {
		t.index()
	}
	_, ok := t.members[canon]
	return ok
}

// Is reports whether a raw category value matches a sentinel label.
func (t *Taxonomy) Is(raw, sentinel string) bool {
	canon := Canon(raw)
	return canon != "" && canon == Canon(sentinel)
}

// stripMarks removes combining marks after NFD decomposition, folding
// accented motif labels onto their ASCII base form.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canon canonicalizes a category label: trim, collapse inner whitespace,
// lowercase, and fold diacritics. The field extracts are hand-typed, so
// "Résolu", " resolu " and "RESOLU" must all compare equal.
func Canon(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}
