package rpc

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mino-dev/mino-web/internal/metrics"
)

const maxInputBytes = 1 << 20

// Handler dispatches /api/trpc/{procedure} requests.
type Handler struct {
	router    *Router
	builder   *ContextBuilder
	collector *metrics.Collector
}

func NewHandler(router *Router, builder *ContextBuilder, collector *metrics.Collector) *Handler {
	return &Handler{
		router:    router,
		builder:   builder,
		collector: collector,
	}
}

type resultEnvelope struct {
	Result struct {
		Data any `json:"data"`
	} `json:"result"`
}

type errorEnvelope struct {
	Error struct {
		Message string    `json:"message"`
		Data    errorData `json:"data"`
	} `json:"error"`
}

type errorData struct {
	Code       Code `json:"code"`
	HTTPStatus int  `json:"httpStatus"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	procedure := chi.URLParam(r, "procedure")

	handler, ok := h.router.lookup(procedure)
	if !ok {
		h.writeError(w, procedure, NewError(CodeNotFound, "unknown procedure"))
		return
	}

	input, err := readInput(r)
	if err != nil {
		h.writeError(w, procedure, NewError(CodeBadRequest, "invalid input"))
		return
	}

	rc, err := h.builder.Build(r)
	if err != nil {
		h.writeError(w, procedure, asRPCError(err))
		return
	}

	data, err := handler(r.Context(), rc, input)
	if err != nil {
		h.writeError(w, procedure, asRPCError(err))
		return
	}

	if h.collector != nil {
		h.collector.RecordRPCCall(procedure, "ok")
	}
	var envelope resultEnvelope
	envelope.Result.Data = data
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(envelope)
}

func (h *Handler) writeError(w http.ResponseWriter, procedure string, rpcErr *Error) {
	if h.collector != nil {
		h.collector.RecordRPCCall(procedure, string(rpcErr.Code))
	}

	var envelope errorEnvelope
	envelope.Error.Message = rpcErr.Message
	envelope.Error.Data = errorData{
		Code:       rpcErr.Code,
		HTTPStatus: rpcErr.Code.HTTPStatus(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rpcErr.Code.HTTPStatus())
	json.NewEncoder(w).Encode(envelope)
}

// readInput accepts the input JSON as request body (POST) or as the
// "input" query parameter (GET), matching the tRPC HTTP convention.
func readInput(r *http.Request) (json.RawMessage, error) {
	if r.Method == http.MethodGet {
		raw := r.URL.Query().Get("input")
		if raw == "" {
			return nil, nil
		}
		if !json.Valid([]byte(raw)) {
			return nil, errors.New("input query parameter is not valid JSON")
		}
		return json.RawMessage(raw), nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInputBytes))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, errors.New("request body is not valid JSON")
	}
	return json.RawMessage(body), nil
}

func asRPCError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return NewError(CodeInternal, "internal server error")
}
