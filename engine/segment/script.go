package segment

import (
	hblang "github.com/go-text/typesetting/language"
	"github.com/npillmayer/ringtext/engine/glyphing"
	"golang.org/x/text/language"
)

// ScriptRun is a range of text in a single script.
type ScriptRun struct {
	Span   glyphing.Span
	Script language.Script
}

// ScriptRuns splits span of text into runs of a single script.
// Characters of the Common and Inherited scripts (spaces, punctuation, marks)
// take the script of the preceding character, or, at the start of the span,
// of the following one. A span with no strong script at all is a single run
// of script Latin.
func ScriptRuns(text string, span glyphing.Span) []ScriptRun {
	type entry struct {
		pos    int
		script hblang.Script
	}
	var entries []entry
	for i, r := range text[span.Start:span.End] {
		s := hblang.LookupScript(r)
		if !s.Strong() || s == hblang.Unknown {
			s = hblang.Common
		}
		entries = append(entries, entry{pos: span.Start + i, script: s})
	}
	if len(entries) == 0 {
		return nil
	}
	first := hblang.Latin
	for _, e := range entries {
		if e.script != hblang.Common {
			first = e.script
			break
		}
	}
	cur := first
	for i := range entries {
		if entries[i].script == hblang.Common {
			entries[i].script = cur
		}
		cur = entries[i].script
	}
	var runs []ScriptRun
	start := 0
	for i := 1; i <= len(entries); i++ {
		if i < len(entries) && entries[i].script == entries[start].script {
			continue
		}
		end := span.End
		if i < len(entries) {
			end = entries[i].pos
		}
		runs = append(runs, ScriptRun{
			Span:   glyphing.Span{Start: entries[start].pos, End: end},
			Script: ScriptOf(entries[start].script),
		})
		start = i
	}
	return runs
}

// ScriptOf converts a script value to an ISO 15924 script identifier.
func ScriptOf(s hblang.Script) language.Script {
	script, err := language.ParseScript(s.String())
	if err != nil {
		return language.MustParseScript("Zyyy")
	}
	return script
}
