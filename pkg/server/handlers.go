package server

import (
	"net/http"

	"github.com/mindfuljournal/analyzer/pkg/analyzers"
	"github.com/mindfuljournal/analyzer/pkg/models"
	"github.com/mindfuljournal/analyzer/pkg/server/handlertools"
)

// AnalyzeHandler runs every enabled analyzer over the posted entry.
//
// Analyzers that fail are reported under "errors" and the response is still 200 as long as
// one of them succeeded. When none succeeded the response is 504 if they all timed out and
// 503 otherwise.
func AnalyzeHandler(appState *models.AppState) http.HandlerFunc {
	timeout := appState.Config.Server.AnalyzeTimeout
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.AnalyzeRequest
		if err := handlertools.DecodeAndValidateJSON(r, &req); err != nil {
			handlertools.RenderError(w, err, http.StatusBadRequest)
			return
		}

		result := analyzers.Run(r.Context(), appState.Analyzers, req.Text, timeout)
		if err := r.Context().Err(); err != nil {
			log.Debugf("client went away before analysis finished: %v", err)
			return
		}

		switch {
		case result.AllTimedOut():
			handlertools.WriteJSON(w, http.StatusGatewayTimeout, models.ErrorResponse{
				Code:    models.CodeTimeout,
				Message: "all analyzers timed out",
				Errors:  result.Response.Errors,
			})
		case result.AllFailed():
			handlertools.WriteJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
				Code:    models.CodeModelUnavailable,
				Message: "all analyzers failed",
				Errors:  result.Response.Errors,
			})
		default:
			handlertools.WriteJSON(w, http.StatusOK, result.Response)
		}
	}
}

// ListAnalyzersResponse describes the analyzers loaded at startup.
type ListAnalyzersResponse struct {
	Analyzers []models.AnalyzerInfo `json:"analyzers"`
}

func ListAnalyzersHandler(appState *models.AppState) http.HandlerFunc {
	infos := make([]models.AnalyzerInfo, len(appState.Analyzers))
	for i, a := range appState.Analyzers {
		infos[i] = a.Info()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		handlertools.WriteJSON(w, http.StatusOK, ListAnalyzersResponse{Analyzers: infos})
	}
}
