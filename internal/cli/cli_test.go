package cli_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/leasekit/internal/cli"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	out := &syncBuffer{}
	cmd := cli.NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(out)
	cmd.SetErr(out)

	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyCmd(t *testing.T) {
	out, err := execute(t, "",
		"classify",
		"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		"python-requests/2.31",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "allow_crawler\tgooglebot\tGooglebot\t"))
	assert.True(t, strings.HasPrefix(lines[1], "block\tpython-requests\tPython Requests\t"))
	assert.True(t, strings.HasPrefix(lines[2], "unclassified\t-\t-\t"))
}

func TestClassifyCmd_Stdin(t *testing.T) {
	out, err := execute(t, "curl/8.4.0\n\nScrapy/2.11\n", "classify")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "block\tcurl/"))
	assert.True(t, strings.HasPrefix(lines[1], "block\tscrapy"))
}

func TestClassifyCmd_MissingRulesFile(t *testing.T) {
	_, err := execute(t, "", "classify", "--rules", "does-not-exist.yaml", "ua")
	assert.Error(t, err)
}

func TestSessionCmd(t *testing.T) {
	out, err := execute(t, "typing\nstatus\nlogout\n",
		"session", "--email", "alice@example.com", "--log-level", "error",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "state: authenticated_ephemeral alice@example.com")
	assert.Contains(t, out, "authenticated=true tier=ephemeral email=alice@example.com")
	assert.Contains(t, out, "state: unauthenticated")
	assert.Contains(t, out, "-> /sign-in")
}

func TestSessionCmd_RequiresEmail(t *testing.T) {
	_, err := execute(t, "", "session", "--log-level", "error")
	assert.Error(t, err)
}
