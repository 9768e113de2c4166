// Package template renders line-oriented text files, such as the sample
// configuration, whose directives live in '#' comments so the source
// stays valid YAML.
package template

import (
	"io"
	"strings"
)

// Process evaluates directives in text and writes the result to w.
//
//	#if key == value   keeps the following lines only when values[key] == value
//	#end               closes the innermost #if
//	#@name             calls sections[name]; unregistered sections are stripped
//	#-- note           template-only comment, stripped
//
// Every {{key}} in a kept content line is replaced by values[key]. Other
// comment lines are ordinary content and are kept.
func Process(w io.Writer, text string, values map[string]string, sections map[string]func(io.Writer)) {
	skipDepth := 0
	first := true

	newline := func() {
		if !first {
			io.WriteString(w, "\n")
		}
		first = false
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if cond, ok := strings.CutPrefix(trimmed, "#if "); ok {
			if skipDepth > 0 || !evalCondition(cond, values) {
				skipDepth++
			}
			continue
		}
		if trimmed == "#end" {
			if skipDepth > 0 {
				skipDepth--
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#--") {
			continue
		}
		if name, ok := strings.CutPrefix(trimmed, "#@"); ok {
			if fn := sections[name]; fn != nil && skipDepth == 0 {
				newline()
				fn(w)
			}
			continue
		}

		if skipDepth == 0 {
			newline()
			io.WriteString(w, substitute(line, values))
		}
	}
}

// substitute replaces {{key}} references with their values. Unknown keys
// become empty; an unclosed reference is left as written.
func substitute(line string, values map[string]string) string {
	var b strings.Builder
	for {
		start := strings.Index(line, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(line[start:], "}}")
		if end < 0 {
			break
		}
		b.WriteString(line[:start])
		b.WriteString(values[strings.TrimSpace(line[start+2:start+end])])
		line = line[start+end+2:]
	}
	b.WriteString(line)
	return b.String()
}

// evalCondition checks "key == value" against the values map.
func evalCondition(cond string, values map[string]string) bool {
	key, val, ok := strings.Cut(cond, "==")
	if !ok {
		return false
	}
	return values[strings.TrimSpace(key)] == strings.TrimSpace(val)
}
