package config

import (
	_ "embed"
	"fmt"
	"io"
	"strconv"

	"github.com/unixthat/reflow-comments/internal/template"
)

//go:embed sample.yaml
var sample string

// WriteSample writes a commented config file holding the settings of c.
func WriteSample(w io.Writer, c *Config) {
	values := map[string]string{
		"width":             strconv.Itoa(c.Width),
		"respect_gitignore": strconv.FormatBool(c.RespectGitignore),
		"guard_literals":    strconv.FormatBool(c.GuardLiterals),
		"formatter.enabled": strconv.FormatBool(c.Formatter.Enabled),
		"formatter.command": strconv.Quote(c.Formatter.Command),
		"formatter.timeout": strconv.Quote(c.Formatter.Timeout),
		"log.json":          strconv.FormatBool(c.Log.JSON),
	}
	list := func(indent string, items []string) func(io.Writer) {
		return func(w io.Writer) {
			if len(items) == 0 {
				fmt.Fprintf(w, "%s[]", indent)
				return
			}
			for i, it := range items {
				if i > 0 {
					io.WriteString(w, "\n")
				}
				fmt.Fprintf(w, "%s- %s", indent, strconv.Quote(it))
			}
		}
	}
	template.Process(w, sample, values, map[string]func(io.Writer){
		"extensions":     list("  ", c.Extensions),
		"exclude":        list("  ", c.Exclude),
		"formatter.args": list("    ", c.Formatter.Args),
	})
}
