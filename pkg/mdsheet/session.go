package mdsheet

import (
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/ukaji3/mdsheet-go/internal/logging"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/edit"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/patch"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/scan"
)

// Session holds one buffer and the workbook parsed from it.
//
// Every mutation validates, transforms the model, computes the patch and commits the new text
// and model together; on error nothing changes. A Session is not safe for concurrent use.
type Session struct {
	id       string
	logger   *slog.Logger
	renderer parser.Renderer

	initialized bool
	config      Config
	schema      parser.Schema
	layout      edit.Layout
	text        string
	workbook    models.Workbook
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer replaces the workbook renderer.
func WithRenderer(r parser.Renderer) Option {
	return func(s *Session) {
		if r != nil {
			s.renderer = r
		}
	}
}

// NewSession returns an uninitialized session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		id:       uuid.New().String(),
		logger:   logging.Nop(),
		renderer: parser.Codec{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update is the result of a mutation: replace the text from (StartLine, 0) through
// (EndLine, EndCol) with Content.
type Update struct {
	Content         string `json:"content"`
	StartLine       int    `json:"startLine"`
	EndLine         int    `json:"endLine"`
	EndCol          int    `json:"endCol"`
	FileChanged     *bool  `json:"fileChanged,omitempty"`
	MetadataChanged bool   `json:"metadataChanged,omitempty"`
}

func fromPatch(p patch.Patch) Update {
	return Update{Content: p.Content, StartLine: p.StartLine, EndLine: p.EndLine, EndCol: p.EndCol}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Initialize parses text with cfg and makes the session ready for edits.
func (s *Session) Initialize(text string, cfg Config) error {
	for _, level := range []int{cfg.SheetHeaderLevel, cfg.TableHeaderLevel, cfg.DocHeaderLevel} {
		if level < 0 || level > 6 {
			return NewOperationError("initialize", fmt.Errorf("%w: heading level %d", ErrInvalidParams, level))
		}
	}
	s.config = cfg
	s.schema = cfg.Schema()
	s.layout = cfg.Layout()
	s.text = text
	s.workbook = parser.Parse(text, s.schema)
	s.initialized = true
	s.logger.Info("session.initialize", "session", s.id, "sheets", len(s.workbook.Sheets), "lines", len(scan.Lines(text)))
	return nil
}

// Reset drops the buffer and the model.
func (s *Session) Reset() {
	s.initialized = false
	s.text = ""
	s.workbook = models.Workbook{}
	s.logger.Info("session.reset", "session", s.id)
}

// Sync replaces the buffer with text edited outside the session and re-parses it.
func (s *Session) Sync(text string) error {
	if !s.initialized {
		return NewOperationError("sync", ErrNotInitialized)
	}
	s.text = text
	s.workbook = parser.Parse(text, s.schema)
	s.logger.Debug("session.sync", "session", s.id, "sheets", len(s.workbook.Sheets))
	return nil
}

// Text returns the current buffer.
func (s *Session) Text() string { return s.text }

// Workbook returns the current model.
func (s *Session) Workbook() models.Workbook { return s.workbook }

// Config returns the configuration passed to Initialize.
func (s *Session) Config() Config { return s.config }

// Revision returns the BLAKE3 hex digest of the current buffer.
func (s *Session) Revision() string {
	sum := blake3.Sum256([]byte(s.text))
	return hex.EncodeToString(sum[:])
}

// SheetState is a sheet as reported by State, with the line of its heading.
type SheetState struct {
	models.Sheet
	HeaderLine *int `json:"header_line,omitempty"`
}

// WorkbookState is the workbook as reported by State.
type WorkbookState struct {
	Sheets   []SheetState            `json:"sheets"`
	Metadata models.WorkbookMetadata `json:"metadata"`
}

// State is a snapshot of the session for clients.
type State struct {
	SessionID string           `json:"sessionId"`
	Revision  string           `json:"revision"`
	Workbook  WorkbookState    `json:"workbook"`
	Structure []models.Section `json:"structure"`
}

// State returns the workbook with derived heading lines and the file structure.
func (s *Session) State() (State, error) {
	if !s.initialized {
		return State{}, NewOperationError("getState", ErrNotInitialized)
	}
	lines := scan.Lines(s.text)
	headers := scan.SheetHeaderLines(lines, s.schema.RootMarker, s.schema.SheetHeaderLevel)
	sheets := make([]SheetState, len(s.workbook.Sheets))
	for i, sheet := range s.workbook.Sheets {
		sheets[i] = SheetState{Sheet: sheet}
		if i < len(headers) {
			line := headers[i]
			sheets[i].HeaderLine = &line
		}
	}
	structure := scan.Structure(lines, s.layout.Schema.RootMarker, s.layout.DocHeaderLevel)
	if structure == nil {
		structure = []models.Section{}
	}
	return State{
		SessionID: s.id,
		Revision:  s.Revision(),
		Workbook:  WorkbookState{Sheets: sheets, Metadata: s.workbook.Metadata},
		Structure: structure,
	}, nil
}

// FullMarkdown returns the current buffer.
func (s *Session) FullMarkdown() (string, error) {
	if !s.initialized {
		return "", NewOperationError("getFullMarkdown", ErrNotInitialized)
	}
	return s.text, nil
}

// DocumentSectionRange returns the line span of the n-th document section.
func (s *Session) DocumentSectionRange(n int) (patch.Range, error) {
	if !s.initialized {
		return patch.Range{}, NewOperationError("getDocumentSectionRange", ErrNotInitialized)
	}
	r, err := patch.DocumentRange(s.text, s.layout.Schema.RootMarker, s.layout.DocHeaderLevel, n)
	if err != nil {
		return r, NewOperationError("getDocumentSectionRange", err)
	}
	return r, nil
}

func (s *Session) structure() []models.Section {
	return scan.Structure(scan.Lines(s.text), s.layout.Schema.RootMarker, s.layout.DocHeaderLevel)
}

// update runs a model transform and commits it with the re-rendered workbook region.
func (s *Session) update(op string, fn func(models.Workbook) (models.Workbook, error)) (Update, error) {
	if !s.initialized {
		return Update{}, NewOperationError(op, ErrNotInitialized)
	}
	wb, err := fn(s.workbook)
	if err != nil {
		s.logger.Warn("session.update_failed", "op", op, "error", err.Error())
		return Update{}, NewOperationError(op, err)
	}
	p := patch.Workbook(wb, s.text, s.schema, s.renderer)
	s.text = patch.Apply(s.text, p)
	s.workbook = wb
	s.logger.Debug("session.update", "op", op, "start_line", p.StartLine, "end_line", p.EndLine)
	return fromPatch(p), nil
}

// updateText runs an edit on the buffer text and commits its result.
func (s *Session) updateText(op string, fn func(string, models.Workbook) (edit.TextEdit, error)) (Update, error) {
	if !s.initialized {
		return Update{}, NewOperationError(op, ErrNotInitialized)
	}
	e, err := fn(s.text, s.workbook)
	if err != nil {
		s.logger.Warn("session.update_failed", "op", op, "error", err.Error())
		return Update{}, NewOperationError(op, err)
	}
	changed := e.FileChanged
	if !changed {
		u := fromPatch(patch.Whole(s.text, s.text))
		u.FileChanged = &changed
		return u, nil
	}
	s.text = e.Text
	s.workbook = e.Workbook
	s.logger.Debug("session.update", "op", op, "start_line", e.Patch.StartLine, "end_line", e.Patch.EndLine,
		"metadata_changed", e.MetadataChanged)
	u := fromPatch(e.Patch)
	u.FileChanged = &changed
	u.MetadataChanged = e.MetadataChanged
	return u, nil
}
