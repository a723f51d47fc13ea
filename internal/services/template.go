package services

import "regexp"

// placeholderRe matches {{key}} where key is one or more word characters.
// There is no nesting and no escape mechanism. Resolve and Segments share
// this single pattern so both always tokenize a template the same way.
var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ResolveTemplate expands {{key}} placeholders in template against values.
// Keys missing from values are left verbatim in the output so that a
// misconfigured template stays visible in the delivered message instead of
// silently collapsing to an empty string.
func ResolveTemplate(template string, values map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := match[2 : len(match)-2]
		if v, ok := values[key]; ok {
			return v
		}
		return match
	})
}

// SegmentKind discriminates TemplateSegment entries.
type SegmentKind string

const (
	SegmentText     SegmentKind = "text"
	SegmentVariable SegmentKind = "variable"
)

// TemplateSegment is one token of a parsed template. For variable segments
// Value holds the literal {{key}} text and Key the bare key, so the editor
// can highlight placeholders while concatenated Values always reconstruct
// the original template byte for byte.
type TemplateSegment struct {
	Kind  SegmentKind `json:"kind"`
	Value string      `json:"value"`
	Key   string      `json:"key,omitempty"`
}

// TemplateSegments splits template into text and variable segments using
// the same grammar as ResolveTemplate.
func TemplateSegments(template string) []TemplateSegment {
	out := []TemplateSegment{}
	last := 0
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(template, -1) {
		if m[0] > last {
			out = append(out, TemplateSegment{Kind: SegmentText, Value: template[last:m[0]]})
		}
		out = append(out, TemplateSegment{
			Kind:  SegmentVariable,
			Value: template[m[0]:m[1]],
			Key:   template[m[2]:m[3]],
		})
		last = m[1]
	}
	if last < len(template) {
		out = append(out, TemplateSegment{Kind: SegmentText, Value: template[last:]})
	}
	return out
}
