package host

import (
	"context"

	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/tabula/internal/app"
)

// Sheet is the table content a store serves to the view.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Store is the host-side persistence port.
type Store interface {
	Load(ctx context.Context) (Sheet, error)
	Save(ctx context.Context, csvText string) error
}

// DefaultPageSize bounds how many rows ride in the initial table frame;
// the remainder follows in appendRows pages.
const DefaultPageSize = 500

// ServeOptions tune one serving session.
type ServeOptions struct {
	PageSize int
	Logger   *charmLog.Logger
}

// Serve answers the view side of the protocol over one connection: it
// replies to webviewReady with the stored table, persists saveCsv payloads
// and acknowledges them with saveResult. It returns when the connection
// closes or ctx is cancelled.
func Serve(ctx context.Context, conn *Conn, store Store, opts ServeOptions) error {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = charmLog.Default()
	}

	return conn.Listen(ctx, func(env Envelope) {
		switch env.Command {
		case CommandWebviewReady:
			sheet, err := store.Load(ctx)
			if err != nil {
				logger.Error("load sheet failed", "err", err)
				return
			}
			if err := sendTable(conn, sheet, pageSize); err != nil {
				logger.Error("send table failed", "sheet", sheet.Name, "err", err)
				return
			}
			logger.Info("table sent", "sheet", sheet.Name, "rows", len(sheet.Rows))

		case CommandSaveCSV:
			result := NewEnvelope(CommandSaveResult)
			if err := store.Save(ctx, env.Text); err != nil {
				logger.Error("save sheet failed", "err", err)
				result.Reason = err.Error()
			} else {
				result.OK = true
				logger.Info("sheet saved", "bytes", len(env.Text))
			}
			if err := conn.Send(result); err != nil {
				logger.Error("send save result failed", "err", err)
			}

		case CommandToggleView:
			// Raw-view rendering lives host-side; the request is recorded
			// so an embedding editor can act on it.
			logger.Info("view toggle requested", "table_view", env.IsTableView)

		default:
			logger.Warn("ignoring unexpected frame", "command", env.Command)
		}
	})
}

// sendTable frames one sheet as initTable plus appendRows pages.
func sendTable(conn *Conn, sheet Sheet, pageSize int) error {
	first := sheet.Rows
	if len(first) > pageSize {
		first = first[:pageSize]
	}
	init := NewEnvelope(CommandInitTable)
	init.Header = sheet.Header
	init.Rows = first
	if len(init.Header) == 0 && len(init.Rows) == 0 {
		// An empty store still needs a frame the view can render.
		init.Header = []string{""}
	}
	if err := conn.Send(init); err != nil {
		return err
	}
	for offset := pageSize; offset < len(sheet.Rows); offset += pageSize {
		end := min(offset+pageSize, len(sheet.Rows))
		page := NewEnvelope(CommandAppendRows)
		page.Rows = sheet.Rows[offset:end]
		if err := conn.Send(page); err != nil {
			return err
		}
	}
	return nil
}

// SheetFromCSV parses stored CSV text into a named sheet.
func SheetFromCSV(name, csvText string) (Sheet, error) {
	header, rows, err := app.UnmarshalCSV(csvText)
	if err != nil {
		return Sheet{}, err
	}
	return Sheet{Name: name, Header: header, Rows: rows}, nil
}
