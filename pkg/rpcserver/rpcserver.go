//go:build windows

// Package rpcserver implements the line-oriented JSON-RPC 2.0 stdio loop
// that exposes every NullOut tool to an orchestrator. One request is fully
// read, dispatched, and answered before the next line is read; this is
// deliberate, not an oversight — see spec §5. Nothing below this package
// ever writes to standard output except a single JSON response line per
// request.
package rpcserver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/nullout-io/nullout/pkg/config"
	"github.com/nullout-io/nullout/pkg/deleteengine"
	"github.com/nullout-io/nullout/pkg/logging"
	"github.com/nullout-io/nullout/pkg/must"
	"github.com/nullout-io/nullout/pkg/nullerrors"
	"github.com/nullout-io/nullout/pkg/nullout"
	"github.com/nullout-io/nullout/pkg/nullstore"
	"github.com/nullout-io/nullout/pkg/plan"
	"github.com/nullout-io/nullout/pkg/restartmgr"
	"github.com/nullout-io/nullout/pkg/scan"
	"github.com/nullout-io/nullout/pkg/token"
	"github.com/nullout-io/nullout/pkg/winpath"
)

// request is the envelope for one inbound JSON-RPC line. id is left as raw
// JSON so it can be echoed back verbatim regardless of its type (string,
// number, or null).
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// response is the envelope for one outbound JSON-RPC line.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError is a protocol-level JSON-RPC error (parse error, method not
// found). It is distinct from the {ok:false, error:{...}} envelope every
// tool handler returns on its own result field.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// envelope is the {ok:true, result:...} / {ok:false, error:...} wrapper
// every tool result carries, per spec §6.
type envelope struct {
	OK     bool           `json:"ok"`
	Result any            `json:"result,omitempty"`
	Error  *errorEnvelope `json:"error,omitempty"`
}

type errorEnvelope struct {
	Code      nullerrors.Code       `json:"code"`
	Message   string                `json:"message"`
	Details   map[string]any        `json:"details"`
	NextSteps []nullerrors.NextStep `json:"nextSteps"`
}

// Server dispatches RPC requests against one finding store, root allowlist,
// and signing secret for the lifetime of the process.
type Server struct {
	store  *nullstore.Store
	secret []byte
	knobs  config.Knobs
	logger *logging.Logger
}

// New constructs a Server. The store must already be seeded with the
// allowlisted roots; secret must be non-empty (config.TokenSecret already
// fails closed on that).
func New(store *nullstore.Store, secret []byte, knobs config.Knobs, logger *logging.Logger) *Server {
	return &Server{store: store, secret: secret, knobs: knobs, logger: logger}
}

// Serve reads newline-framed JSON-RPC requests from r and writes
// newline-framed responses to w until r is exhausted. It never emits an
// unsolicited message, and never lets a handler panic escape into the
// transport: a recovered panic is reported as E_INTERNAL on that one
// request, and the loop continues.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			must.Encode(encoder, response{
				JSONRPC: "2.0",
				Error:   &rpcError{Code: -32700, Message: "Parse error"},
			}, s.logger)
			continue
		}

		resp := s.handle(req)
		must.Encode(encoder, resp, s.logger)
	}
	return scanner.Err()
}

func (s *Server) handle(req request) (resp response) {
	traceID := uuid.New().String()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("[%s] panic in %s: %v", traceID, req.Method, r)
			resp = response{JSONRPC: "2.0", ID: req.ID, Result: okFalse(nullerrors.New(
				nullerrors.EInternal, "internal error", map[string]any{"panic": fmt.Sprintf("%v", r)},
			))}
		}
		elapsedMs := time.Since(start).Milliseconds()
		s.logger.Debugf("[%s] %s (%s ms)", traceID, req.Method, humanize.Comma(elapsedMs))
	}()

	if req.Method == "tools/list" {
		return response{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{"tools": toolsList}}
	}

	handler, ok := handlers[req.Method]
	if !ok {
		return response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: -32601, Message: "Method not found: " + req.Method},
		}
	}

	result := handler(s, req.Params)
	return response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

// handlerFunc is implemented by each tool; it always returns the {ok,...}
// envelope itself rather than an error, since per spec §4.8 handler
// exceptions never propagate to the transport.
type handlerFunc func(s *Server, params json.RawMessage) envelope

var handlers = map[string]handlerFunc{
	"list_allowed_roots":  (*Server).handleListAllowedRoots,
	"scan_reserved_names": (*Server).handleScanReservedNames,
	"get_finding":         (*Server).handleGetFinding,
	"plan_cleanup":        (*Server).handlePlanCleanup,
	"delete_entry":        (*Server).handleDeleteEntry,
	"who_is_using":        (*Server).handleWhoIsUsing,
	"get_server_info":     (*Server).handleGetServerInfo,
}

func okTrue(result any) envelope {
	return envelope{OK: true, Result: result}
}

func okFalse(err error) envelope {
	nerr, ok := err.(interface {
		error
		Code() nullerrors.Code
		Details() map[string]any
		NextSteps() []nullerrors.NextStep
	})
	if !ok {
		return envelope{OK: false, Error: &errorEnvelope{
			Code:      nullerrors.EInternal,
			Message:   err.Error(),
			Details:   map[string]any{},
			NextSteps: []nullerrors.NextStep{},
		}}
	}
	return envelope{OK: false, Error: &errorEnvelope{
		Code:      nerr.Code(),
		Message:   nerr.Error(),
		Details:   nerr.Details(),
		NextSteps: nerr.NextSteps(),
	}}
}

func invalidParams(err error) envelope {
	return okFalse(nullerrors.Wrap(err, nullerrors.EInvalidRequest, "invalid request parameters", nil))
}

func (s *Server) handleListAllowedRoots(_ json.RawMessage) envelope {
	roots := s.store.Roots()
	out := make([]map[string]any, 0, len(roots))
	for _, root := range roots {
		out = append(out, map[string]any{
			"rootId":        root.RootID,
			"displayName":   root.DisplayName,
			"path":          root.Path,
			"canonicalPath": winpath.ToExtended(root.Path, root.Path),
			"reparsePolicy": token.ReparsePolicy,
		})
	}
	return okTrue(map[string]any{"roots": out})
}

type scanParams struct {
	RootID      string `json:"rootId"`
	Recursive   bool   `json:"recursive"`
	MaxDepth    int    `json:"maxDepth"`
	IncludeDirs bool   `json:"includeDirs"`
}

func (s *Server) handleScanReservedNames(raw json.RawMessage) envelope {
	var p scanParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return invalidParams(err)
	}
	if p.MaxDepth <= 0 && s.knobs.MaxDepth > 0 {
		p.MaxDepth = s.knobs.MaxDepth
	}

	result, err := scan.Run(s.store, scan.Options{
		RootID:      p.RootID,
		Recursive:   p.Recursive,
		MaxDepth:    p.MaxDepth,
		IncludeDirs: p.IncludeDirs,
	}, s.logger)
	if err != nil {
		return okFalse(err)
	}

	return okTrue(map[string]any{
		"scanId":   result.ScanID,
		"rootId":   result.RootID,
		"findings": result.Findings,
		"stats":    result.Stats,
	})
}

type findingParams struct {
	FindingID string `json:"findingId"`
}

func (s *Server) handleGetFinding(raw json.RawMessage) envelope {
	var p findingParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return invalidParams(err)
	}

	finding, ok := s.store.Finding(p.FindingID)
	if !ok {
		return okFalse(nullerrors.New(nullerrors.ENotFound, "finding not found", map[string]any{"findingId": p.FindingID}))
	}
	return okTrue(map[string]any{"finding": finding})
}

type planParams struct {
	FindingIDs       []string `json:"findingIds"`
	RequestedActions []string `json:"requestedActions"`
}

func (s *Server) handlePlanCleanup(raw json.RawMessage) envelope {
	var p planParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return invalidParams(err)
	}

	result, err := plan.Create(s.store, p.FindingIDs, p.RequestedActions, s.secret)
	if err != nil {
		return okFalse(err)
	}
	return okTrue(result)
}

type deleteParams struct {
	FindingID    string `json:"findingId"`
	ConfirmToken string `json:"confirmToken"`
}

func (s *Server) handleDeleteEntry(raw json.RawMessage) envelope {
	var p deleteParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return invalidParams(err)
	}

	result, err := deleteengine.Delete(s.store, p.FindingID, p.ConfirmToken, s.secret, s.logger)
	if err != nil {
		return okFalse(err)
	}
	return okTrue(result)
}

func (s *Server) handleWhoIsUsing(raw json.RawMessage) envelope {
	var p findingParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return invalidParams(err)
	}

	result, err := restartmgr.WhoIsUsing(s.store, p.FindingID)
	if err != nil {
		return okFalse(err)
	}
	return okTrue(result)
}

func (s *Server) handleGetServerInfo(_ json.RawMessage) envelope {
	return okTrue(map[string]any{
		"name":         nullout.Name,
		"version":      nullout.Version,
		"platform":     nullout.Platform,
		"registryName": nullout.Name,
		"policies": map[string]any{
			"reparsePolicy":   token.ReparsePolicy,
			"deletePolicy":    "empty_only",
			"tokenTtlSeconds": int(token.TTL.Seconds()),
		},
		"capabilities": map[string]any{
			"restartManager": restartmgr.Available(),
		},
		"build": map[string]any{
			"version":   nullout.Version,
			"goVersion": runtime.Version(),
		},
	})
}

