package clvm

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakeBrun writes a brun stand-in that requires file arguments and echoes the solution file.
func fakeBrun(t *testing.T) string {
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "brun")
	script := `#!/bin/sh
for last; do prev=$cur; cur=$last; done
[ -f "$prev" ] && [ -f "$last" ] || { echo "expected files" >&2; exit 2; }
echo "cost = 5"
cat "$last"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestBrunRunner_LargeProgram(t *testing.T) {
	r := NewBrunRunner(fakeBrun(t))
	// far beyond what argv would hold
	solution := List(Atom(bytes.Repeat([]byte{0xab}, 1<<20)), String("md"))
	out, err := r.Run(String("puzzle"), solution, 1000)
	require.NoError(t, err)
	assert.Equal(t, solution.TreeHash(), out.TreeHash())
}

func TestBrunRunner_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "brun")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho \"FAIL: clvm raise\"\n"), 0o755))
	_, err := NewBrunRunner(path).Run(String("p"), Nil(), 0)
	assert.ErrorIs(t, err, ErrRunFailed)
}
