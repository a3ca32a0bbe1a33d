package report

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/parcelworks/siteassess/internal/model"
	"github.com/parcelworks/siteassess/internal/pipeline"
)

const missingValue = "无数据"

// Write emits the comparison workbook: one sheet per template group, a
// header of community roles, and one row per enriched field. Communities
// the pipeline skipped are rendered as 无数据 across their column.
func Write(path string, rows []TemplateRow, result *pipeline.Result, fields []model.FieldDescriptor) error {
	f := xlsx.NewFile()
	enabled := model.EnabledFields(fields)

	for _, group := range groupOrder(rows) {
		sheet, err := f.AddSheet("分组" + group)
		if err != nil {
			return eris.Wrapf(err, "report: add sheet for group %s", group)
		}

		kinds, byKind := groupColumns(rows, group)

		header := sheet.AddRow()
		header.AddCell().SetString("类目")
		for _, kind := range kinds {
			header.AddCell().SetString(kind)
		}

		nameRow := sheet.AddRow()
		nameRow.AddCell().SetString(model.TitleField)
		for _, kind := range kinds {
			nameRow.AddCell().SetString(byKind[kind])
		}

		for _, field := range enabled {
			row := sheet.AddRow()
			row.AddCell().SetString(headerName(field))
			for _, kind := range kinds {
				row.AddCell().SetString(fieldValue(result, byKind[kind], field.Name))
			}
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save workbook")
	}
	return nil
}

// headerName rewrites the transit-line field label so the row header
// carries the radius the search actually used.
func headerName(field model.FieldDescriptor) string {
	if field.Name == model.FieldTransitLines && field.Radius > 0 {
		return fmt.Sprintf("%d米半径范围内公共交通线路数", field.Radius)
	}
	return field.Name
}

func fieldValue(result *pipeline.Result, address, fieldName string) string {
	rec, ok := result.Get(address)
	if !ok {
		return missingValue
	}
	text, ok := rec.Get(fieldName)
	if !ok || text == "" {
		return missingValue
	}
	return text
}

// groupOrder returns group identifiers in first-seen template order.
func groupOrder(rows []TemplateRow) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if seen[r.Group] {
			continue
		}
		seen[r.Group] = true
		out = append(out, r.Group)
	}
	return out
}

// groupColumns returns the group's role headers in row order and the first
// community carrying each role.
func groupColumns(rows []TemplateRow, group string) ([]string, map[string]string) {
	var kinds []string
	byKind := make(map[string]string)
	for _, r := range rows {
		if r.Group != group {
			continue
		}
		if _, ok := byKind[r.Kind]; ok {
			continue
		}
		byKind[r.Kind] = r.Community
		kinds = append(kinds, r.Kind)
	}
	return kinds, byKind
}
