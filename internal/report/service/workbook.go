package service

import (
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	changeeventmodels "changepoint/internal/changeevent/models"
	taxonomymodels "changepoint/internal/taxonomy/models"
	id "changepoint/pkg/domain"
)

const (
	SheetMasterList       = "01_MasterList"
	SheetCodes            = "99_Code"
	SheetInspectionResult = "98_InspectionResult"
)

type column struct {
	header string
	width  float64
}

var (
	masterColumns = []column{
		{"Receipt month", 10}, {"Occurred date", 12}, {"Customer", 15}, {"Project", 15},
		{"Product line", 15}, {"Part number", 15}, {"Factory", 10}, {"Line", 10},
		{"Company", 15}, {"Primary class", 15}, {"Primary category", 15}, {"Primary item", 15},
		{"96 class", 15}, {"96 categories", 15}, {"96 items", 30}, {"Description", 30},
		{"Department", 15}, {"Manager", 12}, {"Executive", 12}, {"Status", 10},
	}
	codeColumns = []column{
		{"Class", 15}, {"Category", 15}, {"Item", 30}, {"Code", 15}, {"Name", 30},
	}
	resultColumns = []column{
		{"Change event", 38}, {"Inspection item", 30}, {"Result", 30},
	}
)

// render writes the three sheets in workbook order. Data rows start at row 2.
func render(data *dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetMasterList); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetCodes, SheetInspectionResult} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E0E0E0"}},
		Border: thinBorder(),
	})
	if err != nil {
		return nil, err
	}
	body, err := f.NewStyle(&excelize.Style{Border: thinBorder()})
	if err != nil {
		return nil, err
	}

	sheets := []struct {
		name    string
		columns []column
		rows    [][]any
	}{
		{SheetMasterList, masterColumns, masterRows(data)},
		{SheetCodes, codeColumns, codeRows(data.catalog)},
		{SheetInspectionResult, resultColumns, resultRows(data)},
	}
	for _, sh := range sheets {
		if err := writeSheet(f, sh.name, sh.columns, sh.rows, header, body); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, columns []column, rows [][]any, header, body int) error {
	titles := make([]any, len(columns))
	for i, c := range columns {
		titles[i] = c.header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, c.width); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &titles); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		end, err := excelize.CoordinatesToCellName(len(columns), len(rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A2", end, body); err != nil {
			return err
		}
	}
	return nil
}

func thinBorder() []excelize.Border {
	sides := []string{"left", "top", "right", "bottom"}
	out := make([]excelize.Border, len(sides))
	for i, side := range sides {
		out[i] = excelize.Border{Type: side, Color: "000000", Style: 1}
	}
	return out
}

func masterRows(data *dataset) [][]any {
	rows := make([][]any, 0, len(data.events))
	for _, e := range data.events {
		var primaryClass, primaryCategory, primaryItem string
		if tag, ok := e.PrimaryTag(); ok {
			if d := data.items[tag.ItemID]; d != nil {
				primaryClass, primaryCategory, primaryItem = d.Class.Name, d.Category.Name, d.Item.Name
			}
		}
		groups := groupCP96(e.Tags, data.items)

		var company, manager, executive string
		if c := data.companies[e.CompanyID]; c != nil {
			company = c.Name
		}
		if u := data.users[e.ManagerID]; u != nil {
			manager = u.Name
		}
		if e.ExecutiveID != nil {
			if u := data.users[*e.ExecutiveID]; u != nil {
				executive = u.Name
			}
		}

		rows = append(rows, []any{
			e.ReceiptMonth,
			e.OccurredDate.UTC().Format(time.DateOnly),
			e.Customer,
			e.Project,
			e.ProductLine,
			e.PartNumber,
			e.Factory,
			e.ProductionLine,
			company,
			primaryClass,
			primaryCategory,
			primaryItem,
			groups.first(),
			strings.Join(groups.names, "; "),
			strings.Join(groups.items(), "; "),
			e.Description,
			e.Department,
			manager,
			executive,
			string(e.Status),
		})
	}
	return rows
}

// cp96Groups holds the item names of an event's CP_96 tags keyed by the name
// of their top-level category, in first-seen order.
type cp96Groups struct {
	names   []string
	members map[string][]string
}

func (g cp96Groups) first() string {
	if len(g.names) == 0 {
		return ""
	}
	return g.names[0]
}

func (g cp96Groups) items() []string {
	var out []string
	for _, name := range g.names {
		out = append(out, g.members[name]...)
	}
	return out
}

func groupCP96(tags []changeeventmodels.Tag, items map[id.TaxonomyItemID]*taxonomymodels.ItemDetail) cp96Groups {
	g := cp96Groups{members: make(map[string][]string)}
	for _, t := range tags {
		if t.TagType != changeeventmodels.TagTypeTag {
			continue
		}
		d := items[t.ItemID]
		if d == nil || d.Class.Code != taxonomymodels.ClassCP96 {
			continue
		}
		root := d.Root.Name
		if _, ok := g.members[root]; !ok {
			g.names = append(g.names, root)
		}
		g.members[root] = append(g.members[root], d.Item.Name)
	}
	return g
}

func codeRows(catalog []*taxonomymodels.ItemDetail) [][]any {
	rows := make([][]any, 0, len(catalog))
	for _, d := range catalog {
		rows = append(rows, []any{d.Class.Name, d.Category.Name, d.Item.Name, d.Item.Code, d.Item.Name})
	}
	return rows
}

func resultRows(data *dataset) [][]any {
	var rows [][]any
	for _, e := range data.events {
		for _, r := range data.results[e.ID] {
			question := ""
			if r.Item != nil {
				question = r.Item.Question
			}
			rows = append(rows, []any{e.ID.String(), question, r.Value})
		}
	}
	return rows
}
