package handler

import (
	"bufio"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sincarebunch/barbershop-api/internal/utils"
)

// maxLogLine caps a single log line; zap stack traces can be long.
const maxLogLine = 1 << 20

// LogsHandler exposes the JSON application log to administrators.
type LogsHandler struct {
	Path string
	Log  *zap.Logger
}

func NewLogsHandler(path string, log *zap.Logger) *LogsHandler {
	return &LogsHandler{Path: path, Log: log.Named("logs")}
}

// List returns every line of the log file, parsed as JSON when possible
// and wrapped as {"raw": line} otherwise.
func (h *LogsHandler) List(c echo.Context) error {
	f, err := os.Open(h.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return utils.Success(c, http.StatusOK, "No logs found", []any{})
		}
		h.Log.Error("open log file failed", zap.Error(err))
		return utils.Failure(c, http.StatusInternalServerError, "Failed to retrieve logs")
	}
	defer f.Close()

	entries := make([]any, 0, 64)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLogLine)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			entries = append(entries, map[string]string{"raw": line})
			continue
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		h.Log.Error("read log file failed", zap.Error(err))
		return utils.Failure(c, http.StatusInternalServerError, "Failed to retrieve logs")
	}
	return utils.Success(c, http.StatusOK, "Logs Retrieved Successfully", entries)
}
