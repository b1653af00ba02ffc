package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biopsycli/internal/config"
	"biopsycli/internal/shared/testutil"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestRun_ServesUntilCanceled(t *testing.T) {
	base := t.TempDir()
	t.Setenv(config.BaseDirEnv, base)
	data := testutil.WriteDataFile(t, base, testutil.ScenarioTable())
	port := freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var stdout bytes.Buffer
	go func() {
		done <- run(ctx, []string{"-data", data, "-host", "127.0.0.1", "-port", fmt.Sprint(port)}, &stdout)
	}()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/records/KB-001%%2F26", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_Version(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &stdout))
	assert.Contains(t, stdout.String(), "Biopsy Report Toolkit v")
}
