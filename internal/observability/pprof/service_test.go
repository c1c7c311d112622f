package pprof

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	logx "pgremote/pkg/logx"
)

func get(t *testing.T, url, bearer string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, http.NoBody)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func waitAddr(t *testing.T, s *Service) string {
	t.Helper()
	require.Eventually(t, func() bool { return s.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	return s.Addr()
}

func TestServeStatusAndPprof(t *testing.T) {
	status := func(context.Context) (any, error) {
		return map[string]any{"scheduler": "active", "tasks": 2}, nil
	}
	s := New(Config{Enabled: true, Addr: "127.0.0.1:0"}, status, logx.Nop())
	s.Start(context.Background())
	t.Cleanup(func() { s.Stop(context.Background()) })
	base := "http://" + waitAddr(t, s)

	code, body := get(t, base+"/healthz", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body)

	code, body = get(t, base+"/status", "")
	require.Equal(t, http.StatusOK, code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	require.Equal(t, "active", doc["scheduler"])
	require.EqualValues(t, 2, doc["tasks"])

	code, _ = get(t, base+"/debug/pprof/", "")
	require.Equal(t, http.StatusOK, code)
}

func TestStatusError(t *testing.T) {
	s := New(Config{Enabled: true, Addr: "127.0.0.1:0"}, func(context.Context) (any, error) {
		return nil, errors.New("loop stopped")
	}, logx.Nop())
	s.Start(context.Background())
	t.Cleanup(func() { s.Stop(context.Background()) })

	code, body := get(t, "http://"+waitAddr(t, s)+"/status", "")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Contains(t, body, "loop stopped")
}

func TestTokenRequired(t *testing.T) {
	s := New(Config{Enabled: true, Addr: "127.0.0.1:0", Token: "s3cret"}, nil, logx.Nop())
	s.Start(context.Background())
	t.Cleanup(func() { s.Stop(context.Background()) })
	base := "http://" + waitAddr(t, s)

	code, _ := get(t, base+"/healthz", "")
	require.Equal(t, http.StatusUnauthorized, code)
	code, _ = get(t, base+"/healthz", "wrong")
	require.Equal(t, http.StatusUnauthorized, code)
	code, _ = get(t, base+"/healthz", "s3cret")
	require.Equal(t, http.StatusOK, code)
	code, _ = get(t, base+"/healthz?token=s3cret", "")
	require.Equal(t, http.StatusOK, code)

	code, _ = get(t, base+"/status?token=s3cret", "")
	require.Equal(t, http.StatusNotFound, code, "no status func")
}

func TestReconfigureEnableDisable(t *testing.T) {
	prevMutex := runtime.SetMutexProfileFraction(-1)
	t.Cleanup(func() {
		runtime.SetMutexProfileFraction(prevMutex)
		runtime.SetBlockProfileRate(0)
	})

	s := New(Config{}, nil, logx.Nop())
	ctx := context.Background()
	s.Start(ctx)
	require.Empty(t, s.Addr(), "disabled config does not listen")

	s.Reconfigure(ctx, Config{Enabled: true, Addr: "127.0.0.1:0", MutexProfileFraction: 7})
	waitAddr(t, s)
	require.Equal(t, 7, runtime.SetMutexProfileFraction(-1))

	s.Reconfigure(ctx, Config{Enabled: false})
	require.Empty(t, s.Addr())
}

func TestIsLoopbackAddr(t *testing.T) {
	t.Parallel()
	cases := map[string]bool{
		"127.0.0.1:6060": true,
		"localhost:1":    true,
		"[::1]:80":       true,
		":6060":          false,
		"0.0.0.0:6060":   false,
		"10.0.0.2:6060":  false,
		"nonsense":       false,
	}
	for addr, want := range cases {
		require.Equal(t, want, IsLoopbackAddr(addr), addr)
	}
}
