package diagfmt

import (
	"io"
	"sort"

	"github.com/google/uuid"

	"quibble/internal/diag"
	"quibble/internal/source"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool              `json:"tool"`
	AutomationDetails sarifAutomationDetails `json:"automationDetails"`
	Invocations       []sarifInvocation      `json:"invocations,omitempty"`
	Results           []sarifResult          `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string         `json:"id"`
	Name             string         `json:"name,omitempty"`
	ShortDescription *sarifMessage  `json:"shortDescription,omitempty"`
	FullDescription  *sarifMessage  `json:"fullDescription,omitempty"`
	HelpURI          string         `json:"helpUri,omitempty"`
	Properties       map[string]any `json:"properties,omitempty"`
}

type sarifAutomationDetails struct {
	GUID string `json:"guid"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
	Fixes     []sarifFix      `json:"fixes,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Replacements     []sarifReplacement    `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion  `json:"deletedRegion"`
	InsertedContent sarifMessage `json:"insertedContent"`
}

// newGUID is swapped in tests for a stable run id.
var newGUID = func() string { return uuid.NewString() }

// Sarif форматирует диагностики в SARIF формат (v2.1.0).
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	return writeJSON(w, BuildSarif(bag.Items(), fs, meta))
}

// BuildSarif assembles a single-run SARIF log.
func BuildSarif(items []diag.Diagnostic, fs *source.FileSet, meta SarifRunMeta) sarifLog {
	rules, index := sarifRules(items, meta)
	results := make([]sarifResult, 0, len(items))
	failed := false
	for _, d := range items {
		if d.Severity == diag.SevError {
			failed = true
		}
		res := sarifResult{
			RuleID:    d.Code.ID(),
			RuleIndex: index[d.Code.ID()],
			Level:     sarifLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message},
			Locations: []sarifLocation{{PhysicalLocation: sarifPhysical(d.Primary, fs)}},
		}
		for _, f := range sortedFixes(d.Fixes) {
			res.Fixes = append(res.Fixes, sarifFixOf(f, fs))
		}
		results = append(results, res)
	}

	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           meta.ToolName,
			Version:        meta.ToolVersion,
			InformationURI: meta.InformationURI,
			Rules:          rules,
		}},
		AutomationDetails: sarifAutomationDetails{GUID: newGUID()},
		Results:           results,
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: !failed}}
	}
	return sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}}
}

// sarifRules lists one rule per reported code id. Message ids of a rule
// share its metadata.
func sarifRules(items []diag.Diagnostic, meta SarifRunMeta) ([]sarifRule, map[string]int) {
	seen := make(map[string]struct{})
	for _, d := range items {
		seen[d.Code.ID()] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rules := make([]sarifRule, 0, len(ids))
	index := make(map[string]int, len(ids))
	for _, id := range ids {
		rule := sarifRule{ID: id}
		if code, ok := diag.CodeFromID(id); ok {
			rule.ShortDescription = &sarifMessage{Text: code.Title()}
		}
		for _, m := range meta.Rules {
			text, ok := m.Messages[id]
			if !ok {
				continue
			}
			rule.Name = m.Name
			rule.FullDescription = &sarifMessage{Text: text}
			rule.HelpURI = m.URL
			rule.Properties = map[string]any{"category": m.Category, "type": m.Type}
			break
		}
		index[id] = len(rules)
		rules = append(rules, rule)
	}
	return rules, index
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

func sarifPhysical(span source.Span, fs *source.FileSet) sarifPhysicalLocation {
	return sarifPhysicalLocation{
		ArtifactLocation: sarifArtifactLocation{URI: displayPath(fs.Get(span.File), fs, PathModeRelative)},
		Region:           sarifRegionOf(span, fs),
	}
}

func sarifRegionOf(span source.Span, fs *source.FileSet) sarifRegion {
	start, end := fs.Resolve(span)
	return sarifRegion{
		StartLine:   start.Line,
		StartColumn: start.Col,
		EndLine:     end.Line,
		EndColumn:   end.Col,
		ByteOffset:  span.Start,
		ByteLength:  span.End - span.Start,
	}
}

func sarifFixOf(f diag.Fix, fs *source.FileSet) sarifFix {
	byFile := make(map[source.FileID]*sarifArtifactChange)
	var order []source.FileID
	for _, e := range f.Edits {
		ch, ok := byFile[e.Span.File]
		if !ok {
			ch = &sarifArtifactChange{ArtifactLocation: sarifPhysical(e.Span, fs).ArtifactLocation}
			byFile[e.Span.File] = ch
			order = append(order, e.Span.File)
		}
		ch.Replacements = append(ch.Replacements, sarifReplacement{
			DeletedRegion:   sarifRegionOf(e.Span, fs),
			InsertedContent: sarifMessage{Text: e.NewText},
		})
	}
	out := sarifFix{Description: sarifMessage{Text: f.Title}}
	for _, id := range order {
		out.ArtifactChanges = append(out.ArtifactChanges, *byFile[id])
	}
	return out
}
