// Package dataset resolves the six source CSV extracts, either from a local
// directory or from a git repository synced into the app cache.
package dataset

// SourceFile ties a source extract to its bronze landing table.
type SourceFile struct {
	// Name is the canonical file name. Matching against the dataset
	// directory is case-insensitive; the ERP extracts arrive uppercase.
	Name string
	// Table is the fully qualified bronze table the file lands in.
	Table string
	// System is the upstream system the extract comes from (crm or erp).
	System string
}

// Manifest enumerates every expected source file. Bronze loads iterate it
// in this order.
var Manifest = []SourceFile{
	{Name: "cust_info.csv", Table: "bronze.crm_customer_info", System: "crm"},
	{Name: "prd_info.csv", Table: "bronze.crm_product_info", System: "crm"},
	{Name: "sales_details.csv", Table: "bronze.crm_sales_details", System: "crm"},
	{Name: "CUST_AZ12.csv", Table: "bronze.erp_customer_demo", System: "erp"},
	{Name: "LOC_A101.csv", Table: "bronze.erp_customer_location", System: "erp"},
	{Name: "PX_CAT_G1V2.csv", Table: "bronze.erp_product_category", System: "erp"},
}

// FileForTable returns the manifest entry landing in the given bronze table.
func FileForTable(table string) (SourceFile, bool) {
	for _, sf := range Manifest {
		if sf.Table == table {
			return sf, true
		}
	}
	return SourceFile{}, false
}
