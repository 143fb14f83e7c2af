// Package export writes course data to spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const gradebookSheet = "Gradebook"

// GradeColumn is one assignment in the gradebook.
type GradeColumn struct {
	ID       int64
	Title    string
	MaxScore int
}

// GradeRow is one student and their results keyed by assignment ID.
type GradeRow struct {
	Name    string
	Email   string
	Results map[int64]GradeCell
}

// GradeCell is a student's result for one assignment.
type GradeCell struct {
	Submitted bool
	Score     *int
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// Gradebook renders students by assignments as an xlsx workbook.
// Ungraded submissions show "submitted", missing ones "-".
func Gradebook(courseTitle string, columns []GradeColumn, rows []GradeRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(gradebookSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	lastCol := 3 + len(columns)
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2F6FDB"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	f.SetCellValue(gradebookSheet, cell(1, 1), courseTitle+" - Gradebook")
	if lastCol > 1 {
		f.MergeCell(gradebookSheet, cell(1, 1), cell(lastCol, 1))
	}

	f.SetCellValue(gradebookSheet, cell(1, 2), "Student")
	f.SetCellValue(gradebookSheet, cell(2, 2), "Email")
	for i, col := range columns {
		f.SetCellValue(gradebookSheet, cell(3+i, 2), fmt.Sprintf("%s (/%d)", col.Title, col.MaxScore))
	}
	f.SetCellValue(gradebookSheet, cell(lastCol, 2), "Total")
	f.SetCellStyle(gradebookSheet, cell(1, 2), cell(lastCol, 2), headerStyle)

	f.SetColWidth(gradebookSheet, "A", "A", 20)
	f.SetColWidth(gradebookSheet, "B", "B", 28)

	for r, row := range rows {
		line := 3 + r
		f.SetCellValue(gradebookSheet, cell(1, line), row.Name)
		f.SetCellValue(gradebookSheet, cell(2, line), row.Email)

		total := 0
		for i, col := range columns {
			res, ok := row.Results[col.ID]
			switch {
			case ok && res.Score != nil:
				f.SetCellValue(gradebookSheet, cell(3+i, line), *res.Score)
				total += *res.Score
			case ok && res.Submitted:
				f.SetCellValue(gradebookSheet, cell(3+i, line), "submitted")
			default:
				f.SetCellValue(gradebookSheet, cell(3+i, line), "-")
			}
		}
		f.SetCellValue(gradebookSheet, cell(lastCol, line), total)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
