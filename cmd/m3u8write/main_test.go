package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func execute(ctx context.Context, stdin string, args ...string) (string, string, error) {
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

const vodJSON = `{"targetDuration": 10, "segments": [{"duration": "10", "uri": "a.ts"}]}`
const vodM3U8 = "#EXTM3U\n#EXT-X-TARGETDURATION:10\n\n#EXTINF:10,\na.ts\n"

func TestStdout(t *testing.T) {
	in := writeFile(t, t.TempDir(), "vod.json", vodJSON)
	out, _, err := execute(context.Background(), "", in)
	require.NoError(t, err)
	assert.Equal(t, vodM3U8, out)
}

func TestGolden(t *testing.T) {
	out, _, err := execute(context.Background(), "", "../../testdata/media.yaml")
	require.NoError(t, err)
	assert.Equal(t, readFile(t, "../../testdata/media.m3u8"), out)
}

func TestDebugLog(t *testing.T) {
	_, stderr, err := execute(context.Background(), "", "--log-level", "debug", "../../testdata/media.yaml")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"format":"yaml"`)
	assert.Contains(t, stderr, `"event":"playlist.written"`)
}

func TestStdin(t *testing.T) {
	out, _, err := execute(context.Background(), `{"version": 7}`, "-")
	require.NoError(t, err)
	assert.Equal(t, "#EXTM3U\n#EXT-X-VERSION:7\n", out)

	out, _, err = execute(context.Background(), "version: 4\n", "--format", "yaml", "-")
	require.NoError(t, err)
	assert.Equal(t, "#EXTM3U\n#EXT-X-VERSION:4\n", out)
}

func TestOutputFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "vod.json", vodJSON)
	dst := writeFile(t, dir, "vod.m3u8", "stale")

	out, _, err := execute(context.Background(), "", "-o", dst, in)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, vodM3U8, readFile(t, dst))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no pending files left behind")
}

func TestOutDir(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	var args []string
	for i, body := range []string{`{"version": 1}`, `{"version": 2}`, `{"version": 3}`} {
		args = append(args, writeFile(t, src, "v"+string(rune('a'+i))+".json", body))
	}
	args = append(args, writeFile(t, src, "y.yml", "version: 9\n"))

	_, _, err := execute(context.Background(), "", append([]string{"--out-dir", dst, "--concurrency", "2"}, args...)...)
	require.NoError(t, err)
	assert.Equal(t, "#EXTM3U\n#EXT-X-VERSION:1\n", readFile(t, filepath.Join(dst, "va.m3u8")))
	assert.Equal(t, "#EXTM3U\n#EXT-X-VERSION:3\n", readFile(t, filepath.Join(dst, "vc.m3u8")))
	assert.Equal(t, "#EXTM3U\n#EXT-X-VERSION:9\n", readFile(t, filepath.Join(dst, "y.m3u8")))
}

func TestStrict(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "bad.json", `{"segments": [{"duration": "10"}]}`)

	out, _, err := execute(context.Background(), "", in)
	require.NoError(t, err)
	assert.Equal(t, "#EXTM3U\n\n#EXTINF:10,\n\n", out)

	_, _, err = execute(context.Background(), "", "--strict", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "segments[0].uri")

	cfg := writeFile(t, dir, "m3u8.yaml", "strict: true\n")
	_, _, err = execute(context.Background(), "", "--config", cfg, in)
	require.Error(t, err)

	_, _, err = execute(context.Background(), "", "--config", cfg, "--strict=false", in)
	require.NoError(t, err)
}

func TestRFCClosedCaptions(t *testing.T) {
	in := writeFile(t, t.TempDir(), "cc.json",
		`{"playlists": [{"attributes": {"BANDWIDTH": 1, "CLOSED-CAPTIONS": "NONE"}, "uri": "a.m3u8"}]}`)

	out, _, err := execute(context.Background(), "", in)
	require.NoError(t, err)
	assert.Contains(t, out, `CLOSED-CAPTIONS="NONE"`)

	out, _, err = execute(context.Background(), "", "--rfc-closed-captions", in)
	require.NoError(t, err)
	assert.Contains(t, out, "BANDWIDTH=1,CLOSED-CAPTIONS=NONE\n")
}

func TestUsageErrors(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", "{}")
	b := writeFile(t, dir, "b.json", "{}")
	other := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(other, 0o755))
	c := writeFile(t, other, "a.yaml", "{}")
	noExt := writeFile(t, dir, "manifest", "{}")

	for name, args := range map[string][]string{
		"no args":            {},
		"many to stdout":     {a, b},
		"output and out-dir": {"-o", filepath.Join(dir, "x.m3u8"), "--out-dir", dir, a},
		"watch many":         {"--watch", "--out-dir", dir, a, b},
		"watch stdin":        {"--watch", "-"},
		"stdin to out-dir":   {"--out-dir", dir, "-"},
		"name collision":     {"--out-dir", dir, a, c},
		"unknown extension":  {noExt},
		"bad format":         {"--format", "xml", a},
		"bad concurrency":    {"--concurrency", "0", a},
		"missing file":       {filepath.Join(dir, "missing.json")},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := execute(context.Background(), "", args...)
			assert.Error(t, err)
		})
	}
}

func TestUsageErrorKind(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", "{}")
	b := writeFile(t, dir, "b.json", "{}")
	_, _, err := execute(context.Background(), "", a, b)
	assert.ErrorIs(t, err, errUsage)
	assert.ErrorContains(t, err, "use --out-dir")
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "master.m3u8", outputName("dir/master.json"))
	assert.Equal(t, "media.m3u8", outputName("media.yaml"))
	assert.Equal(t, "plain.m3u8", outputName("plain"))
}

func TestWatch(t *testing.T) {
	defer func(d time.Duration) { watchDebounce = d }(watchDebounce)
	watchDebounce = 20 * time.Millisecond

	dir := t.TempDir()
	in := writeFile(t, dir, "live.json", `{"version": 1}`)
	dst := filepath.Join(dir, "live.m3u8")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := execute(ctx, "", "--watch", "-o", dst, in)
		done <- err
	}()

	rendered := func(want string) func() bool {
		return func() bool {
			b, err := os.ReadFile(dst)
			return err == nil && string(b) == want
		}
	}
	require.Eventually(t, rendered("#EXTM3U\n#EXT-X-VERSION:1\n"), 5*time.Second, 10*time.Millisecond)

	// The watcher may not be registered yet on the first write; keep writing
	// until the change is picked up.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(in, []byte(`{"version": 2}`), 0o600)
		return rendered("#EXTM3U\n#EXT-X-VERSION:2\n")()
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
