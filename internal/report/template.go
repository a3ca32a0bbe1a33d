// Package report reads assessment templates and emits the grouped
// comparison workbook.
package report

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Template column headers.
const (
	colGroup     = "分组"
	colCommunity = "小区"
	colKind      = "类型"
)

// TemplateRow is one row of the input template: a community assigned to a
// comparison group under a role such as 案例小区 or 可比对象A.
type TemplateRow struct {
	Group     string
	Community string
	Kind      string
}

// ReadTemplate parses the template workbook's first sheet. The header row
// must carry the 分组/小区/类型 columns; rows with an empty community are
// skipped.
func ReadTemplate(path string) ([]TemplateRow, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "report: open template")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("report: template has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("report: template is empty")
	}

	cols := make(map[string]int)
	for i, cell := range sheet.Rows[0].Cells {
		cols[strings.TrimSpace(cell.String())] = i
	}
	for _, required := range []string{colGroup, colCommunity, colKind} {
		if _, ok := cols[required]; !ok {
			return nil, eris.Errorf("report: template missing column %q", required)
		}
	}

	cellAt := func(row *xlsx.Row, idx int) string {
		if idx >= len(row.Cells) {
			return ""
		}
		return strings.TrimSpace(row.Cells[idx].String())
	}

	var rows []TemplateRow
	for _, row := range sheet.Rows[1:] {
		r := TemplateRow{
			Group:     cellAt(row, cols[colGroup]),
			Community: cellAt(row, cols[colCommunity]),
			Kind:      cellAt(row, cols[colKind]),
		}
		if r.Community == "" {
			continue
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// Addresses returns the template's community names, deduplicated, in
// first-seen order.
func Addresses(rows []TemplateRow) []string {
	seen := make(map[string]bool, len(rows))
	var out []string
	for _, r := range rows {
		if seen[r.Community] {
			continue
		}
		seen[r.Community] = true
		out = append(out, r.Community)
	}
	return out
}

// WriteTemplate writes an example template workbook.
func WriteTemplate(path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	if err != nil {
		return eris.Wrap(err, "report: add template sheet")
	}

	rows := [][]string{
		{colGroup, colCommunity, colKind},
		{"1", "示例小区1", "案例小区"},
		{"1", "示例小区2", "可比对象A"},
		{"2", "示例小区3", "案例小区"},
	}
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, v := range cells {
			row.AddCell().SetString(v)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save template")
	}
	return nil
}
