//go:build !unix

package transcode

import (
	"errors"
	"os"
	"os/exec"
)

// NOTE: No process groups outside unix, only the direct child is stopped.
func setProcessGroup(*exec.Cmd) {}

func terminateGroup(p *os.Process) error {
	return killGroup(p)
}

func killGroup(p *os.Process) error {
	err := p.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
