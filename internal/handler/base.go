package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sincarebunch/barbershop-api/internal/utils"
)

const welcomeLabel = "Welcome to API_BARBER V1"

// BaseHandler serves the welcome document and the health probe.
type BaseHandler struct {
	Version string
	DB      Pinger
	started time.Time
}

// NewBaseHandler returns a BaseHandler.  db may be nil, in which case the
// health probe always succeeds.
func NewBaseHandler(version string, db Pinger) *BaseHandler {
	return &BaseHandler{Version: version, DB: db, started: time.Now()}
}

type memoryStatus struct {
	Alloc      uint64 `json:"alloc"`
	HeapAlloc  uint64 `json:"heapAlloc"`
	HeapSys    uint64 `json:"heapSys"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"numGC"`
	Goroutines int    `json:"goroutines"`
}

type welcome struct {
	Label     string       `json:"label"`
	Uptime    float64      `json:"uptime"`
	Version   string       `json:"version"`
	GoVersion string       `json:"goVersion"`
	Status    memoryStatus `json:"status"`
}

// Welcome reports the API label, uptime in seconds and memory usage.
func (h *BaseHandler) Welcome(c echo.Context) error {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return utils.Success(c, http.StatusOK, welcomeLabel, welcome{
		Label:     welcomeLabel,
		Uptime:    time.Since(h.started).Seconds(),
		Version:   h.Version,
		GoVersion: runtime.Version(),
		Status: memoryStatus{
			Alloc:      ms.Alloc,
			HeapAlloc:  ms.HeapAlloc,
			HeapSys:    ms.HeapSys,
			Sys:        ms.Sys,
			NumGC:      ms.NumGC,
			Goroutines: runtime.NumGoroutine(),
		},
	})
}
