package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5/util"

	"github.com/unixthat/reflow-comments/internal/config"
)

// initConfig writes the resolved settings to path as a commented config
// file. An existing file is only replaced with force.
func (a *app) initConfig(path string, force bool) error {
	p := a.fsPath(path)
	if _, err := a.filesystem().Stat(p); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !os.IsNotExist(err) {
		return err
	}

	var buf bytes.Buffer
	config.WriteSample(&buf, a.cfg)
	if err := util.WriteFile(a.filesystem(), p, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(a.w, "wrote %s\n", a.w.Style(path, Bold))
	return nil
}
