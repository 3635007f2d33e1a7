package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"helloworld_backend/internal/config"
	"helloworld_backend/internal/model"
	"helloworld_backend/internal/repository"
	"helloworld_backend/internal/testutil"
	"helloworld_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeRuntimes = `[
	{"language":"python","version":"3.10.0","aliases":["py","py3"]},
	{"language":"python","version":"3.12.0","aliases":["py","py3"]},
	{"language":"java","version":"15.0.2","aliases":[]}
]`

type fakePiston struct {
	runtimeCalls atomic.Int32

	mu   sync.Mutex
	last pistonExecuteRequest
}

func (f *fakePiston) lastRequest() pistonExecuteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakePiston) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/runtimes", func(w http.ResponseWriter, r *http.Request) {
		f.runtimeCalls.Add(1)
		w.Write([]byte(fakeRuntimes))
	})
	mux.HandleFunc("/api/v2/execute", func(w http.ResponseWriter, r *http.Request) {
		var req pistonExecuteRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.last = req
		f.mu.Unlock()
		if req.Files[0].Content == "boom" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"runtime is unknown"}`))
			return
		}
		w.Write([]byte(`{"language":"` + req.Language + `","version":"` + req.Version + `",
			"run":{"stdout":"hi\n","stderr":"","output":"hi\n","code":0,"signal":null}}`))
	})
	return mux
}

func newCodeRunner(t *testing.T, withRedis bool) (*CodeRunnerService, *fakePiston, *repository.ActivityRepository) {
	t.Helper()
	piston := &fakePiston{}
	srv := httptest.NewServer(piston.handler(t))
	t.Cleanup(srv.Close)

	repo := repository.NewActivityRepository(testutil.NewDB(t))
	cfg := config.CodeRunnerConfig{
		BaseURL:          srv.URL + "/api/v2/",
		RunTimeoutMS:     3000,
		CompileTimeoutMS: 10000,
		MaxCodeBytes:     64,
		TimeoutSeconds:   5,
	}
	if withRedis {
		_, rdb := testutil.NewRedis(t)
		return NewCodeRunnerService(cfg, repo, rdb), piston, repo
	}
	return NewCodeRunnerService(cfg, repo, nil), piston, repo
}

func TestResolveRuntime(t *testing.T) {
	var runtimes []Runtime
	require.NoError(t, json.Unmarshal([]byte(fakeRuntimes), &runtimes))

	rt, err := ResolveRuntime(runtimes, "Python", "")
	require.NoError(t, err)
	assert.Equal(t, "3.12.0", rt.Version)

	rt, err = ResolveRuntime(runtimes, "py3", "3.10.0")
	require.NoError(t, err)
	assert.Equal(t, "python", rt.Language)
	assert.Equal(t, "3.10.0", rt.Version)

	_, err = ResolveRuntime(runtimes, "python", "2.7")
	assert.ErrorIs(t, err, util.ErrUnsupportedLanguage)

	_, err = ResolveRuntime(runtimes, "cobol", "")
	assert.ErrorIs(t, err, util.ErrUnsupportedLanguage)
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, 1, CompareVersions("3.12.0", "3.9.4"))
	assert.Equal(t, -1, CompareVersions("1.0", "1.0.1"))
	assert.Equal(t, 0, CompareVersions("18.15.0", "18.15.0"))
}

func TestSourceFileName(t *testing.T) {
	assert.Equal(t, "main.py", SourceFileName("python"))
	assert.Equal(t, "Main.java", SourceFileName("Java"))
	assert.Equal(t, "main", SourceFileName("brainfuck"))
}

func TestCodeRunnerExecute(t *testing.T) {
	svc, piston, repo := newCodeRunner(t, true)
	ctx := context.Background()

	res, err := svc.Execute(ctx, testLearner, ExecuteRequest{Language: "py", Code: "print('hi')"})
	require.NoError(t, err)
	assert.Equal(t, "hi\n", res.Stdout)
	require.NotNil(t, res.ExitCode)
	assert.Equal(t, 0, *res.ExitCode)
	assert.Nil(t, res.Compile)

	last := piston.lastRequest()
	assert.Equal(t, "python", last.Language)
	assert.Equal(t, "3.12.0", last.Version)
	assert.Equal(t, "main.py", last.Files[0].Name)
	assert.Equal(t, 3000, last.RunTimeout)
	assert.NotNil(t, last.Args)

	// runtimes 已缓存
	_, err = svc.Execute(ctx, testLearner, ExecuteRequest{Language: "java", Code: "class Main {}"})
	require.NoError(t, err)
	assert.Equal(t, "Main.java", piston.lastRequest().Files[0].Name)
	assert.Equal(t, int32(1), piston.runtimeCalls.Load())

	var runs []model.CodeRun
	require.NoError(t, repo.DB.Order("id").Find(&runs).Error)
	require.Len(t, runs, 2)
	assert.Equal(t, "ok", runs[0].Status)
	assert.Equal(t, len("print('hi')"), runs[0].CodeBytes)
}

func TestCodeRunnerErrors(t *testing.T) {
	svc, _, repo := newCodeRunner(t, false)
	ctx := context.Background()

	_, err := svc.Execute(ctx, testLearner, ExecuteRequest{Language: "python", Code: "  "})
	assert.ErrorIs(t, err, util.ErrEmptyInput)

	_, err = svc.Execute(ctx, testLearner, ExecuteRequest{Language: "python", Code: string(make([]byte, 65))})
	assert.ErrorIs(t, err, util.ErrTextTooLong)

	// stdin 和参数也计入上限
	_, err = svc.Execute(ctx, testLearner, ExecuteRequest{Language: "python", Code: "print(input())", Stdin: strings.Repeat("x", 60)})
	assert.ErrorIs(t, err, util.ErrTextTooLong)
	_, err = svc.Execute(ctx, testLearner, ExecuteRequest{Language: "python", Code: "print(1)", Args: []string{strings.Repeat("a", 40), strings.Repeat("b", 20)}})
	assert.ErrorIs(t, err, util.ErrTextTooLong)
	assert.Equal(t, int64(64*2+4096), svc.MaxBodyBytes())

	_, err = svc.Execute(ctx, testLearner, ExecuteRequest{Language: "cobol", Code: "DISPLAY 'HI'"})
	assert.ErrorIs(t, err, util.ErrUnsupportedLanguage)

	_, err = svc.Execute(ctx, testLearner, ExecuteRequest{Language: "python", Code: "boom"})
	var upstream *util.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "Code execution failed: runtime is unknown", upstream.Public)

	var run model.CodeRun
	require.NoError(t, repo.DB.Last(&run).Error)
	assert.Equal(t, "error", run.Status)
	assert.Equal(t, -1, run.ExitCode)
}

func TestCodeRunnerUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewCodeRunnerService(config.CodeRunnerConfig{BaseURL: srv.URL}, nil, nil)
	_, err := svc.Runtimes(context.Background())
	var upstream *util.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "Code execution failed: upstream returned status 502", upstream.Public)
}
