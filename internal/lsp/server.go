// Package lsp serves lint diagnostics and quick fixes over the Language
// Server Protocol on stdio.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/config"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

const defaultDebounce = 200 * time.Millisecond

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	// Fs is used to discover the project config. Buffers are always linted
	// from memory.
	Fs afero.Fs
	// Config overrides discovery when set.
	Config         *config.Config
	Debounce       time.Duration
	MaxDiagnostics int
	Version        string
}

// Server handles stdio JSON-RPC.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	mu                sync.Mutex
	docs              map[string]*document
	linted            map[string]*lintedDoc
	root              string
	cfg               *config.Config
	initialized       bool
	shutdownRequested bool
	debounceTimer     *time.Timer
	lintCancel        context.CancelFunc
	seq               uint64

	opts    ServerOptions
	baseCtx context.Context
	logger  zerolog.Logger
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	return &Server{
		in:      bufio.NewReader(in),
		out:     bufio.NewWriter(out),
		docs:    make(map[string]*document),
		linted:  make(map[string]*lintedDoc),
		opts:    opts,
		baseCtx: context.Background(),
		logger:  zerolog.Nop(),
	}
}

// Run serves requests until the client exits or the input closes. It
// returns ErrExit or ErrExitWithoutShutdown on "exit", nil on EOF.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	s.logger = zerolog.Ctx(ctx).With().Str("component", "lsp").Logger()
	defer s.stopLinting()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Warn().Err(err).Msg("malformed message")
			if err := s.sendError(json.RawMessage("null"), codeParseError, "parse error"); err != nil {
				return err
			}
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	start := time.Now()
	defer func() {
		s.logger.Debug().Str("method", msg.Method).RawJSON("id", idOrNull(msg.ID)).
			Dur("elapsed", time.Since(start)).Msg("request")
	}()

	s.mu.Lock()
	ready := s.initialized
	s.mu.Unlock()
	if !ready && msg.Method != "initialize" && msg.Method != "exit" {
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeNotInitialized, "server not initialized")
		}
		return nil
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		s.mu.Lock()
		graceful := s.shutdownRequested
		s.mu.Unlock()
		if graceful {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration", "workspace/didChangeWatchedFiles":
		s.reloadConfig()
		s.scheduleLint()
		return nil
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := uriToPath(params.RootURI)
	if root == "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.root = root
	s.initialized = true
	s.mu.Unlock()
	s.reloadConfig()

	return s.sendResponse(msg.ID, initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{OpenClose: true, Change: syncIncremental},
			CodeActionProvider: &codeActionOptions{
				CodeActionKinds: []string{kindQuickFix, kindSourceFixAll},
			},
		},
		ServerInfo: serverInfo{Name: "quibble", Version: s.opts.Version},
	})
}

// reloadConfig re-reads the project config. A broken config is logged and
// the defaults are used until it is fixed.
func (s *Server) reloadConfig() {
	if s.opts.Config != nil {
		s.mu.Lock()
		s.cfg = s.opts.Config
		s.mu.Unlock()
		return
	}
	s.mu.Lock()
	root := s.root
	s.mu.Unlock()
	cfg := config.Default()
	if root != "" {
		loaded, err := config.Discover(s.opts.Fs, root)
		if err != nil {
			s.logger.Warn().Err(err).Str("root", root).Msg("config rejected, using defaults")
		} else {
			cfg = loaded
		}
	}
	s.logger.Debug().Str("config", cfg.Path).Msg("config loaded")
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.stopLinting()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return errors.Errorf("didOpen: %w", err)
	}
	item := params.TextDocument
	s.mu.Lock()
	s.docs[item.URI] = &document{
		uri:     item.URI,
		path:    uriToPath(item.URI),
		version: item.Version,
		text:    item.Text,
	}
	s.mu.Unlock()
	s.scheduleLint()
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return errors.Errorf("didChange: %w", err)
	}
	uri := params.TextDocument.URI
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if ok {
		doc.apply(params.ContentChanges)
		doc.version = params.TextDocument.Version
	}
	s.mu.Unlock()
	if !ok {
		s.logger.Warn().Str("uri", uri).Msg("didChange for a document that is not open")
		return nil
	}
	s.scheduleLint()
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return errors.Errorf("didClose: %w", err)
	}
	uri := params.TextDocument.URI
	s.mu.Lock()
	delete(s.docs, uri)
	_, published := s.linted[uri]
	delete(s.linted, uri)
	s.mu.Unlock()
	if published {
		return s.sendPublish(uri, nil, nil)
	}
	return nil
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   rpcError{Code: code, Message: message},
	})
}

func (s *Server) sendPublish(uri string, version *int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params":  publishDiagnosticsParams{URI: uri, Version: version, Diagnostics: list},
	})
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.Errorf("encode message: %w", err)
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func idOrNull(id json.RawMessage) []byte {
	if len(id) == 0 {
		return []byte("null")
	}
	return id
}
