package server

import (
	"errors"
	"net/http"

	"github.com/jonwraymond/mathproxy/observe"
	"github.com/jonwraymond/mathproxy/solve"
)

// InternalErrorMessage is the whole body of every 500 response.
const InternalErrorMessage = "Something went wrong"

// maxBodyBytes bounds the request JSON.
const maxBodyBytes = 64 << 10

// SolveRequest is the POST / body.
type SolveRequest struct {
	Query      string  `json:"query"`
	Foreground *string `json:"foreground,omitempty"`
	Background *string `json:"background,omitempty"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req SolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.config.Solver.Handle(r.Context(), solve.Query{
		Query:      req.Query,
		Foreground: req.Foreground,
		Background: req.Background,
	})
	switch {
	case errors.Is(err, solve.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "query is required")
	case err != nil:
		if r.Context().Err() == nil {
			s.config.Reporter.Report(r.Context(), err)
		} else {
			s.config.Logger.Debug(r.Context(), "client went away", observe.Err(err))
		}
		writeInternal(w)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}
