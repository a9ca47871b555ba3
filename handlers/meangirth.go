package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"takeoff/services"
)

type meanGirthRequest struct {
	Perimeter string `json:"perimeter"`
	Thickness string `json:"thickness"`
	Corners   string `json:"corners"`
}

type meanGirthResponse struct {
	Result string `json:"result"`
}

// HandleMeanGirth computes a centerline perimeter from external
// perimeter, wall thickness and corner count. Non-numeric input yields
// no result rather than an error; the client simply gets nothing to
// pre-fill.
func HandleMeanGirth(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req meanGirthRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}

		girth, ok := services.CalcMeanGirth(req.Perimeter, req.Thickness, req.Corners)
		if !ok {
			return e.JSON(http.StatusOK, meanGirthResponse{})
		}
		return e.JSON(http.StatusOK, meanGirthResponse{Result: girth.String()})
	}
}
