package mdsheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/edit"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
)

// Response is the result of Call. On failure Error holds the message and Kind its error
// code; otherwise Result is set.
type Response struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// Failed reports whether the call returned an error.
func (r Response) Failed() bool { return r.Error != "" }

// params is the union of every method's named parameters.
type params struct {
	SheetIndex int `json:"sheetIndex"`
	TableIndex int `json:"tableIndex"`
	RowIndex   int `json:"rowIndex"`
	ColIndex   int `json:"colIndex"`
	// Index is the physical position for addSheet.
	Index               *int `json:"index"`
	FromIndex           int  `json:"fromIndex"`
	ToIndex             int  `json:"toIndex"`
	TargetIndex         int  `json:"targetIndex"`
	TargetTabOrderIndex *int `json:"targetTabOrderIndex"`

	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Headers     []string `json:"headers"`
	Value       string   `json:"value"`

	RowIndices   []int           `json:"rowIndices"`
	ColIndices   []int           `json:"colIndices"`
	Ascending    *bool           `json:"ascending"`
	Width        float64         `json:"width"`
	HiddenValues []string        `json:"hiddenValues"`
	Format       json.RawMessage `json:"format"`
	Alignment    string          `json:"alignment"`
	Metadata     json.RawMessage `json:"metadata"`

	Data           [][]string        `json:"data"`
	IncludeHeaders bool              `json:"includeHeaders"`
	SrcRange       *models.CellRange `json:"srcRange"`
	SrcRef         string            `json:"srcRef"`
	DestRow        int               `json:"destRow"`
	DestCol        int               `json:"destCol"`

	TabOrder         []models.TabOrderEntry `json:"tabOrder"`
	DocIndex         int                    `json:"docIndex"`
	AfterDocIndex    *int                   `json:"afterDocIndex"`
	AfterWorkbook    bool                   `json:"afterWorkbook"`
	ToDocIndex       *int                   `json:"toDocIndex"`
	ToAfterWorkbook  bool                   `json:"toAfterWorkbook"`
	ToBeforeWorkbook bool                   `json:"toBeforeWorkbook"`
	ToAfterDoc       bool                   `json:"toAfterDoc"`

	Text   string          `json:"text"`
	Config json.RawMessage `json:"config"`
}

type handler func(s *Session, p params) (any, error)

var handlers = map[string]handler{
	"initialize": func(s *Session, p params) (any, error) {
		cfg, err := ParseConfig(p.Config)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		if err := s.Initialize(p.Text, cfg); err != nil {
			return nil, err
		}
		return s.State()
	},
	"reset": func(s *Session, p params) (any, error) {
		s.Reset()
		return map[string]bool{"ok": true}, nil
	},
	"sync": func(s *Session, p params) (any, error) {
		if err := s.Sync(p.Text); err != nil {
			return nil, err
		}
		return s.State()
	},
	"getState": func(s *Session, p params) (any, error) {
		return s.State()
	},
	"getFullMarkdown": func(s *Session, p params) (any, error) {
		return s.FullMarkdown()
	},
	"getDocumentSectionRange": func(s *Session, p params) (any, error) {
		return s.DocumentSectionRange(p.DocIndex)
	},

	"addSheet": func(s *Session, p params) (any, error) {
		return s.AddSheet(edit.AddSheetParams{Name: p.Name, Headers: p.Headers, Index: p.Index, TabPosition: p.TargetTabOrderIndex})
	},
	"renameSheet": func(s *Session, p params) (any, error) {
		return s.RenameSheet(p.SheetIndex, p.Name)
	},
	"deleteSheet": func(s *Session, p params) (any, error) {
		return s.DeleteSheet(p.SheetIndex)
	},
	"moveSheet": func(s *Session, p params) (any, error) {
		return s.MoveSheet(p.FromIndex, p.ToIndex, p.TargetTabOrderIndex)
	},
	"updateSheetMetadata": func(s *Session, p params) (any, error) {
		var meta map[string]any
		if err := decodeObject(p.Metadata, &meta); err != nil {
			return nil, err
		}
		return s.UpdateSheetMetadata(p.SheetIndex, meta)
	},

	"addTable": func(s *Session, p params) (any, error) {
		return s.AddTable(p.SheetIndex, p.Name, p.Headers)
	},
	"deleteTable": func(s *Session, p params) (any, error) {
		return s.DeleteTable(p.SheetIndex, p.TableIndex)
	},
	"renameTable": func(s *Session, p params) (any, error) {
		return s.RenameTable(p.SheetIndex, p.TableIndex, p.Name)
	},
	"updateTableMetadata": func(s *Session, p params) (any, error) {
		return s.UpdateTableMetadata(p.SheetIndex, p.TableIndex, p.Name, p.Description)
	},
	"updateVisualMetadata": func(s *Session, p params) (any, error) {
		if err := decodeObject(p.Metadata, nil); err != nil {
			return nil, err
		}
		return s.UpdateVisualMetadata(p.SheetIndex, p.TableIndex, p.Metadata)
	},

	"updateCell": func(s *Session, p params) (any, error) {
		return s.UpdateCell(p.SheetIndex, p.TableIndex, p.RowIndex, p.ColIndex, p.Value)
	},
	"insertRow": func(s *Session, p params) (any, error) {
		return s.InsertRow(p.SheetIndex, p.TableIndex, p.RowIndex)
	},
	"deleteRows": func(s *Session, p params) (any, error) {
		return s.DeleteRows(p.SheetIndex, p.TableIndex, p.RowIndices)
	},
	"moveRows": func(s *Session, p params) (any, error) {
		return s.MoveRows(p.SheetIndex, p.TableIndex, p.RowIndices, p.TargetIndex)
	},
	"sortRows": func(s *Session, p params) (any, error) {
		ascending := p.Ascending == nil || *p.Ascending
		return s.SortRows(p.SheetIndex, p.TableIndex, p.ColIndex, ascending)
	},

	"insertColumn": func(s *Session, p params) (any, error) {
		return s.InsertColumn(p.SheetIndex, p.TableIndex, p.ColIndex, p.Name)
	},
	"deleteColumns": func(s *Session, p params) (any, error) {
		return s.DeleteColumns(p.SheetIndex, p.TableIndex, p.ColIndices)
	},
	"moveColumns": func(s *Session, p params) (any, error) {
		return s.MoveColumns(p.SheetIndex, p.TableIndex, p.ColIndices, p.TargetIndex)
	},
	"clearColumns": func(s *Session, p params) (any, error) {
		return s.ClearColumns(p.SheetIndex, p.TableIndex, p.ColIndices)
	},
	"updateColumnWidth": func(s *Session, p params) (any, error) {
		return s.UpdateColumnWidth(p.SheetIndex, p.TableIndex, p.ColIndex, p.Width)
	},
	"updateColumnFilter": func(s *Session, p params) (any, error) {
		return s.UpdateColumnFilter(p.SheetIndex, p.TableIndex, p.ColIndex, p.HiddenValues)
	},
	"updateColumnFormat": func(s *Session, p params) (any, error) {
		format := p.Format
		if len(format) == 0 {
			format = json.RawMessage("null")
		}
		return s.UpdateColumnFormat(p.SheetIndex, p.TableIndex, p.ColIndex, format)
	},
	"updateColumnAlign": func(s *Session, p params) (any, error) {
		align, ok := models.ParseAlignment(p.Alignment)
		if !ok {
			return nil, fmt.Errorf("%w: unknown alignment %q", ErrInvalidParams, p.Alignment)
		}
		return s.UpdateColumnAlign(p.SheetIndex, p.TableIndex, p.ColIndex, align)
	},

	"pasteCells": func(s *Session, p params) (any, error) {
		return s.PasteCells(p.SheetIndex, p.TableIndex, p.RowIndex, p.ColIndex, p.Data, p.IncludeHeaders)
	},
	"moveCells": func(s *Session, p params) (any, error) {
		src, err := sourceRange(p)
		if err != nil {
			return nil, err
		}
		return s.MoveCells(p.SheetIndex, p.TableIndex, src, p.DestRow, p.DestCol)
	},
	"updateTabOrder": func(s *Session, p params) (any, error) {
		return s.UpdateTabOrder(p.TabOrder)
	},

	"addDocument": func(s *Session, p params) (any, error) {
		return s.AddDocument(edit.AddDocumentParams{
			Title:         p.Title,
			AfterDoc:      p.AfterDocIndex,
			AfterWorkbook: p.AfterWorkbook,
			TabPosition:   p.TargetTabOrderIndex,
		})
	},
	"renameDocument": func(s *Session, p params) (any, error) {
		return s.RenameDocument(p.DocIndex, p.Title)
	},
	"deleteDocument": func(s *Session, p params) (any, error) {
		return s.DeleteDocument(p.DocIndex)
	},
	"moveDocumentSection": func(s *Session, p params) (any, error) {
		return s.MoveDocumentSection(edit.MoveDocumentParams{
			From:           p.FromIndex,
			ToDoc:          p.ToDocIndex,
			AfterWorkbook:  p.ToAfterWorkbook,
			BeforeWorkbook: p.ToBeforeWorkbook,
			TabTarget:      p.TargetTabOrderIndex,
		})
	},
	"moveWorkbookSection": func(s *Session, p params) (any, error) {
		if p.ToDocIndex == nil {
			return nil, fmt.Errorf("%w: toDocIndex is required", ErrInvalidParams)
		}
		return s.MoveWorkbookSection(edit.MoveWorkbookParams{
			ToDoc:     *p.ToDocIndex,
			AfterDoc:  p.ToAfterDoc,
			TabTarget: p.TargetTabOrderIndex,
		})
	},
}

// Methods returns the names accepted by Call, sorted.
func Methods() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call runs a method by name with JSON-encoded named parameters. Failures, including panics
// inside an edit, are reported in the Response and leave the session unchanged.
func (s *Session) Call(method string, raw json.RawMessage) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session.panic", "method", method, "panic", fmt.Sprint(r))
			resp = errorResponse(NewOperationError(method, fmt.Errorf("%w: %v", ErrTransformFailure, r)))
		}
	}()

	h, ok := handlers[method]
	if !ok {
		return errorResponse(NewOperationError(method, fmt.Errorf("%w: unknown method %q", ErrNotFound, method)))
	}
	var p params
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return errorResponse(NewOperationError(method, fmt.Errorf("%w: %v", ErrInvalidParams, err)))
		}
	}
	result, err := h(s, p)
	if err != nil {
		return errorResponse(NewOperationError(method, err))
	}
	return Response{Result: result}
}

func errorResponse(err error) Response {
	return Response{Error: err.Error(), Kind: Code(err)}
}

// decodeObject checks that data is a JSON object and decodes it into v when v is non-nil.
func decodeObject(data json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: metadata must be an object", ErrInvalidParams)
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// sourceRange reads the moveCells source from srcRange or, failing that, an A1 reference whose
// first row is body row 0.
func sourceRange(p params) (models.CellRange, error) {
	if p.SrcRange != nil {
		return *p.SrcRange, nil
	}
	if p.SrcRef == "" {
		return models.CellRange{}, fmt.Errorf("%w: srcRange or srcRef is required", ErrInvalidParams)
	}
	r, err := parser.ParseRange(p.SrcRef)
	if err != nil {
		return models.CellRange{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return r, nil
}
