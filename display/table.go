package display

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gear6io/seaduck/pkg/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/pterm/pterm"
	"github.com/spf13/cast"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUnsupportedFormat is returned for unknown output formats.
var ErrUnsupportedFormat = errors.MustNewCode("display.unsupported_format")

// Format selects how a table is rendered.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat resolves s. Auto picks a table on a terminal and CSV otherwise.
func ParseFormat(s string, terminal bool) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	case FormatAuto, "":
		if terminal {
			return FormatTable, nil
		}
		return FormatCSV, nil
	default:
		return "", errors.New(ErrUnsupportedFormat, "unsupported output format", nil).AddContext("format", s)
	}
}

// TableData is a header row plus positional rows.
type TableData struct {
	Headers []string
	Rows    [][]any
}

// TableRenderer writes TableData in one Format.
type TableRenderer struct {
	data   TableData
	format Format
	out    io.Writer
}

// WithFormat sets the output format.
func (r *TableRenderer) WithFormat(f Format) *TableRenderer {
	r.format = f
	return r
}

// Render writes the table.
func (r *TableRenderer) Render() error {
	switch r.format {
	case FormatTable:
		return r.renderTable()
	case FormatCSV:
		return r.renderCSV()
	case FormatJSON:
		return r.renderJSON()
	default:
		return errors.New(ErrUnsupportedFormat, "unsupported output format", nil).AddContext("format", string(r.format))
	}
}

func (r *TableRenderer) renderTable() error {
	data := pterm.TableData{r.data.Headers}
	for _, row := range r.data.Rows {
		data = append(data, formatRow(row))
	}
	return pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		WithWriter(r.out).
		Render()
}

func (r *TableRenderer) renderCSV() error {
	w := csv.NewWriter(r.out)
	if err := w.Write(r.data.Headers); err != nil {
		return err
	}
	for _, row := range r.data.Rows {
		if err := w.Write(formatRow(row)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// renderJSON writes an array of objects with keys in column order.
func (r *TableRenderer) renderJSON() error {
	stream := jsoniter.NewStream(json, r.out, 4096)
	stream.WriteArrayStart()
	for i, row := range r.data.Rows {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectStart()
		for j, header := range r.data.Headers {
			if j > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(header)
			stream.WriteVal(jsonValue(row[j]))
		}
		stream.WriteObjectEnd()
	}
	stream.WriteArrayEnd()
	stream.WriteRaw("\n")
	if stream.Error != nil {
		return stream.Error
	}
	return stream.Flush()
}

func jsonValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return v
	}
}

func formatRow(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = FormatValue(v)
	}
	return out
}

// FormatValue renders a result value for text output.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprintf("%v", v)
}
