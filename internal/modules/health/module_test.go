package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rsi_bot/internal/modules/health/service"

	"github.com/gin-gonic/gin"
)

func TestHealthRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	st := service.NewState()
	Mount(r, st)

	do := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	if rec := do("/livez"); rec.Code != http.StatusOK {
		t.Fatalf("livez: %d", rec.Code)
	}
	if rec := do("/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz before ready: %d", rec.Code)
	}

	st.SetReady(true)
	st.SetMonitors(2)
	st.FeedConnected(1)
	st.TouchCandle(time.Unix(1700000000, 0))

	if rec := do("/readyz"); rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rec.Code)
	}

	rec := do("/healthz")
	var body struct {
		Ready          bool  `json:"ready"`
		Monitors       int   `json:"monitors"`
		FeedsConnected int   `json:"feedsConnected"`
		LastCandleUnix int64 `json:"lastCandleUnix"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	if !body.Ready || body.Monitors != 2 || body.FeedsConnected != 1 || body.LastCandleUnix != 1700000000 {
		t.Fatalf("unexpected healthz %+v", body)
	}
}
