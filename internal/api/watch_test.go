package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adforge/pkg/model"
)

// progressingJobs reports generating until the given number of checks, then
// completed.
type progressingJobs struct {
	checks      int32
	doneAfter   int32
	finalStatus model.JobStatus
}

func (p *progressingJobs) CheckStatus(ctx context.Context, jobID string) model.JobView {
	n := atomic.AddInt32(&p.checks, 1)
	if n >= p.doneAfter {
		return model.JobView{JobID: jobID, Status: p.finalStatus, VideoFilename: jobID + ".mp4"}
	}
	return model.JobView{JobID: jobID, Status: model.StatusGenerating}
}

func dialWatch(t *testing.T, jobs StatusChecker, jobID string) *websocket.Conn {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ads/watch/{job_id}", NewWatchHandler(jobs, 10*time.Millisecond).HandleWatch)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ads/watch/" + jobID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHandleWatch_StreamsUntilTerminal(t *testing.T) {
	jobs := &progressingJobs{doneAfter: 3, finalStatus: model.StatusCompleted}
	conn := dialWatch(t, jobs, "job-1")

	var statuses []model.JobStatus
	for {
		var view model.JobView
		if err := conn.ReadJSON(&view); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure),
				"expected a normal close, got: %v", err)
			break
		}
		statuses = append(statuses, view.Status)
	}

	require.Len(t, statuses, 3)
	assert.Equal(t, model.StatusGenerating, statuses[0])
	assert.Equal(t, model.StatusGenerating, statuses[1])
	assert.Equal(t, model.StatusCompleted, statuses[2])
}

func TestHandleWatch_UnknownJobClosesImmediately(t *testing.T) {
	jobs := &fakeJobs{}
	conn := dialWatch(t, jobs, "missing")

	var view model.JobView
	require.NoError(t, conn.ReadJSON(&view))
	assert.Equal(t, model.StatusNotFound, view.Status)

	err := conn.ReadJSON(&view)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure),
		"expected a normal close, got: %v", err)
}
