package spice

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// WorkDir is the directory where spice scripts and output data are
// written. It must contain the 2N7000 model file.
var WorkDir = "spice_script"

// Executable is the ngspice binary invoked in batch mode.
var Executable = "ngspice"

// allowedStderr lists ngspice noise that does not indicate failure.
var allowedStderr = map[string]bool{
	"Note: can't find init file.": true,
	"ERROR: (internal)  This operation is not " +
		"defined for display type PrinterOnly.": true,
	"Can't open viewport for graphics.": true,
}

// RunScript writes the script into the work directory, runs ngspice in
// batch mode, and parses the resulting data file.
func RunScript(source string, outputs []string, verbose bool) (*Data, error) {
	if verbose {
		fmt.Println(source)
	}

	scriptPath := filepath.Join(WorkDir, "script.cir")
	if err := os.WriteFile(scriptPath, []byte(source), 0644); err != nil {
		return nil, err
	}
	dataPath := filepath.Join(WorkDir, "out.data")
	if err := os.WriteFile(dataPath, nil, 0644); err != nil {
		return nil, err
	}

	cmd := exec.Command(Executable, "-b", "script.cir")
	cmd.Dir = WorkDir
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("spice: ngspice failed: %v\n%s", err, stderr.String())
	}

	if verbose && stdout.Len() > 0 {
		fmt.Println("Console stdout:")
		fmt.Println(stdout.String())
	}

	for _, line := range strings.Split(stderr.String(), "\n") {
		switch {
		case line == "":
		case allowedStderr[line]:
		case strings.HasPrefix(line, " Reference value :  "):
		default:
			return nil, fmt.Errorf("spice: unexpected stderr line: %q", line)
		}
	}

	file, err := os.Open(dataPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	glog.V(1).Infof("parsing spice output %s", dataPath)
	return ParseData(file, outputs)
}
