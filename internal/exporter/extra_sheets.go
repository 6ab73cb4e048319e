package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"salesanalytics/internal/model"
)

var customerHeader = []string{"Customer Name", "Total Computed Price", "Records"}

// writeCustomersSheet 客户汇总工作表（按传入顺序）
func writeCustomersSheet(f *excelize.File, headerStyle int, aggs []model.CustomerAggregate) error {
	if _, err := f.NewSheet(CustomersSheet); err != nil {
		return fmt.Errorf("create customers sheet: %w", err)
	}

	for i, h := range customerHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(CustomersSheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(CustomersSheet, "A1", "C1", headerStyle); err != nil {
		return err
	}

	for i, a := range aggs {
		row := []interface{}{a.CustomerName, a.TotalComputedPrice, a.RecordCount}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(CustomersSheet, cell, &row); err != nil {
			return fmt.Errorf("write customer row %d: %w", i+2, err)
		}
	}

	return f.SetColWidth(CustomersSheet, "A", "A", 40)
}
