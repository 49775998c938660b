package search

import (
	"bytes"
	"encoding/json"
	"strings"
)

type synthesis struct {
	Evidences           Evidences
	ScholarlyOpinions   []string
	Madhabs             Madhabs
	ContemporaryViews   []string
	Highlights          []string
	ControversialPoints []string
	RecommendedView     string
	DetailedContext     string
}

func emptySynthesis() synthesis {
	return synthesis{
		Evidences:           emptyEvidences(),
		ScholarlyOpinions:   []string{},
		ContemporaryViews:   []string{},
		Highlights:          []string{},
		ControversialPoints: []string{},
	}
}

// decodeSynthesis never fails. A body that is not a JSON object yields the
// empty synthesis; inside an object each field falls back on its own.
func decodeSynthesis(raw string) (synthesis, bool) {
	out := emptySynthesis()
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripFence(raw)), &top); err != nil || top == nil {
		return out, false
	}

	if ev := objectField(top["evidences"]); ev != nil {
		out.Evidences = Evidences{
			Quran:  stringList(ev["quran"]),
			Hadith: stringList(ev["hadith"]),
			Ijma:   stringList(ev["ijma"]),
			Qiyas:  stringList(ev["qiyas"]),
		}
	}
	if m := objectField(top["madhabs"]); m != nil {
		out.Madhabs = Madhabs{
			Hanafi:  text(m["hanafi"]),
			Maliki:  text(m["maliki"]),
			Shafii:  text(m["shafii"]),
			Hanbali: text(m["hanbali"]),
		}
	}
	out.ScholarlyOpinions = stringList(top["scholarlyOpinions"])
	out.ContemporaryViews = stringList(top["contemporaryViews"])
	out.Highlights = stringList(top["highlights"])
	out.ControversialPoints = stringList(top["controversialPoints"])
	out.RecommendedView = text(top["recommendedView"])
	out.DetailedContext = text(top["detailedContext"])
	return out, true
}

// stripFence removes a surrounding markdown code fence some models add even
// in JSON mode.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func objectField(raw json.RawMessage) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &m) != nil {
		return nil
	}
	return m
}

// stringList accepts an array of scalars or objects, or a lone string. Non-string
// elements are kept as compact JSON so nothing the model said is dropped.
func stringList(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := text(raw); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, it := range items {
		if s := text(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}
