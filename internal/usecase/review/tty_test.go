package review

import (
	"os"
	"testing"
)

func TestTTYDetection_Consistency(t *testing.T) {
	outputTerminal := IsOutputTerminal()
	stdoutTTY := IsTTY(os.Stdout.Fd())

	if outputTerminal != stdoutTTY {
		t.Errorf("IsOutputTerminal() and IsTTY(stdout) should match: outputTerminal=%v, stdoutTTY=%v", outputTerminal, stdoutTTY)
	}

	// In CI stdout is typically not a terminal; either way this must not panic.
	t.Logf("IsOutputTerminal() = %v", outputTerminal)
}
