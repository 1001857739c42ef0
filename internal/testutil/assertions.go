package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertPipeRan checks the log output within a HarnessResult to confirm that
// the pipe at the given plan step has completed.
func AssertPipeRan(t *testing.T, result *HarnessResult, step int, pipeName string) {
	t.Helper()

	for _, line := range strings.Split(result.LogOutput, "\n") {
		if strings.Contains(line, "Pipe finished.") &&
			strings.Contains(line, fmt.Sprintf("step=%d ", step)) &&
			strings.Contains(line, "pipe="+pipeName) {
			return
		}
	}
	require.Failf(t, "pipe did not run", "expected step %d (%s) to finish; logs:\n%s", step, pipeName, result.LogOutput)
}
