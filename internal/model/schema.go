package model

// ColumnCount 销售明细表的固定列数
const ColumnCount = 96

// Column 固定列在 Columns 中的下标
type Column int

// 计算与展示用到的关键列
const (
	ColCustomerName   Column = 3
	ColSalesDocNo     Column = 8
	ColSalesDocDate   Column = 9
	ColItemName       Column = 13
	ColQuantity       Column = 14
	ColUnitPrice      Column = 15
	ColQuantityXPrice Column = 16
	ColCGST           Column = 17
	ColSGST           Column = 18
	ColIGST           Column = 19
	ColDocumentTotal  Column = 20
	ColExRate         Column = 65
)

// ComputedPriceColumn 派生金额列的列名
const ComputedPriceColumn = "Computed Price"

// Columns 上传文件必须包含的列（顺序即校验报告中的顺序）
var Columns = [ColumnCount]string{
	"Sales Org", "Plant", "Customer Code", "Customer Name",
	"Customer Reference", "Type", "Document Type", "Sales Posting Date",
	"Sales Doc No", "Sales Doc Date", "Sales Order No", "Sales Order Date",
	"Item Code", "Item Name", "Quantity", "Unit Price",
	"Quantity x Price", "CGST", "SGST", "IGST",
	"Document Total", "WP", "Mega Watts", "Price Unit(Price/WP)",
	"Delivery Challan Doc No", "Delivery Challan Doc Date", "LR No", "LR Date",
	"Vehicle No", "Transporter Name", "Transporter Contact No.", "Sales Employee",
	"Sales Emp.Name", "Segment", "Company Code", "Billing Doc.No",
	"Product Type", "Billing type", "Division", "Distribution Channel",
	"Sales FI Doc No", "Sales Creation Date", "Delivery Challan FI Doc No", "Delivery Challan Posting Date",
	"PO number (Customer reference)", "SO.Item No.", "Sales Person", "FY Year",
	"FY_Quarter", "CY_Quarter", "City", "Region",
	"Bill To_GSTIN", "Ship To_GSTIN", "PAN Number", "Item Number",
	"Profit Center", "Profit Center Name", "Business Place", "Material type",
	"Material Group", "Item GROUP", "HSN", "GL Code",
	"Currency Type", "Ex Rate", "Line Discount%", "Line Discount Amount",
	"After Discount in LC", "Tax Code", "Freight", "Insurance",
	"TCS Rate", "TCS Amount", "TCS Section", "GST Rate",
	"IRN Number", "IRN date", "IRN Generation Date", "IRN Acknowledgment No",
	"E-way Bill No", "E-way Bill Dat", "Sold to Party Code", "Sold to party Name",
	"Sold to Party Address", "Sold to Party Region", "Sold to Party Postal Code", "Sold to Party City",
	"Ship to Party Code", "Ship to Party Name", "Ship to Party Address", "Ship to Party Region",
	"Ship to Party Postal Code", "Ship to Party City", "Incoterms", "Terms of payment",
}

var columnIndex = func() map[string]Column {
	m := make(map[string]Column, ColumnCount)
	for i, name := range Columns {
		m[name] = Column(i)
	}
	return m
}()

// Name 返回列名
func (c Column) Name() string {
	if c < 0 || int(c) >= ColumnCount {
		return ""
	}
	return Columns[c]
}

// LookupColumn 按列名（精确、区分大小写）查找固定列
func LookupColumn(name string) (Column, bool) {
	c, ok := columnIndex[name]
	return c, ok
}
