package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Bronze row types mirror the raw CSV headers landed by the bronze loader.
// Every field is nullable: the loader makes no promises beyond "the file
// parsed", so the silver rules must handle NULL or malformed values in any
// column.

// BronzeCustomerInfo is one raw row of bronze.crm_customer_info (cust_info.csv).
type BronzeCustomerInfo struct {
	ID            sql.NullInt64  // cst_id
	Key           sql.NullString // cst_key
	FirstName     sql.NullString // cst_firstname
	LastName      sql.NullString // cst_lastname
	MaritalStatus sql.NullString // cst_marital_status
	Gender        sql.NullString // cst_gndr
	CreateDate    sql.NullTime   // cst_create_date
}

func (BronzeCustomerInfo) TableName() string { return "bronze.crm_customer_info" }

// BronzeProductInfo is one raw row of bronze.crm_product_info (prd_info.csv).
// The raw end date is landed but ignored: silver recomputes it from the
// version chain.
type BronzeProductInfo struct {
	ID        sql.NullInt64       // prd_id
	Key       sql.NullString      // prd_key
	Name      sql.NullString      // prd_nm
	Cost      decimal.NullDecimal // prd_cost
	Line      sql.NullString      // prd_line
	StartDate sql.NullTime        // prd_start_dt
	EndDate   sql.NullTime        // prd_end_dt
}

func (BronzeProductInfo) TableName() string { return "bronze.crm_product_info" }

// BronzeSalesDetail is one raw row of bronze.crm_sales_details
// (sales_details.csv). Dates arrive as 8-digit YYYYMMDD integers.
type BronzeSalesDetail struct {
	OrderNumber sql.NullString      // sls_ord_num
	ProductKey  sql.NullString      // sls_prd_key
	CustomerID  sql.NullInt64       // sls_cust_id
	OrderDate   sql.NullInt64       // sls_order_dt
	ShipDate    sql.NullInt64       // sls_ship_dt
	DueDate     sql.NullInt64       // sls_due_dt
	SalesAmount decimal.NullDecimal // sls_sales
	Quantity    sql.NullInt64       // sls_quantity
	Price       decimal.NullDecimal // sls_price
}

func (BronzeSalesDetail) TableName() string { return "bronze.crm_sales_details" }

// BronzeProductCategory is one raw row of bronze.erp_product_category
// (PX_CAT_G1V2.csv).
type BronzeProductCategory struct {
	ID          sql.NullString // id
	Category    sql.NullString // cat
	Subcategory sql.NullString // subcat
	Maintenance sql.NullString // maintenance
}

func (BronzeProductCategory) TableName() string { return "bronze.erp_product_category" }

// BronzeCustomerDemo is one raw row of bronze.erp_customer_demo (CUST_AZ12.csv).
type BronzeCustomerDemo struct {
	CustomerID sql.NullString // cid
	Birthdate  sql.NullTime   // bdate
	Gender     sql.NullString // gen
}

func (BronzeCustomerDemo) TableName() string { return "bronze.erp_customer_demo" }

// BronzeCustomerLocation is one raw row of bronze.erp_customer_location
// (LOC_A101.csv).
type BronzeCustomerLocation struct {
	CustomerID sql.NullString // cid
	Country    sql.NullString // cntry
}

func (BronzeCustomerLocation) TableName() string { return "bronze.erp_customer_location" }

// Silver row types carry the cleaned, conformed shape the gold views join
// against. String-coded enums are closed sets (see enums.go); money fields
// are decimals. Each silver table additionally carries a dwh_create_date
// column populated by a DDL default, so it never appears on the row types.

// SilverCustomerInfo is one conformed row of silver.crm_customer_info:
// exactly one per customer id, the survivor of create-date deduplication.
type SilverCustomerInfo struct {
	CustomerID    int64
	CustomerKey   sql.NullString
	FirstName     string
	LastName      string
	MaritalStatus MaritalStatus
	Gender        Gender
	CreateDate    sql.NullTime
}

func (SilverCustomerInfo) TableName() string { return "silver.crm_customer_info" }

// SilverProductInfo is one conformed row of silver.crm_product_info with the
// derived category id, cleaned key, and recomputed version end date.
type SilverProductInfo struct {
	ProductID   sql.NullInt64
	CategoryID  string
	ProductKey  string
	ProductName string
	Cost        decimal.Decimal
	ProductLine ProductLine
	StartDate   sql.NullTime
	EndDate     sql.NullTime
}

func (SilverProductInfo) TableName() string { return "silver.crm_product_info" }

// SilverSalesDetail is one conformed row of silver.crm_sales_details with
// validated dates and repaired measures.
type SilverSalesDetail struct {
	OrderNumber sql.NullString
	ProductKey  sql.NullString
	CustomerID  sql.NullInt64
	OrderDate   sql.NullTime
	ShipDate    sql.NullTime
	DueDate     sql.NullTime
	SalesAmount decimal.NullDecimal
	Quantity    sql.NullInt64
	Price       decimal.NullDecimal
}

func (SilverSalesDetail) TableName() string { return "silver.crm_sales_details" }

// SilverProductCategory is one row of silver.erp_product_category. The rule
// is a pass-through; the type exists so the writer and gold contract stay
// uniform across tables.
type SilverProductCategory struct {
	CategoryID  sql.NullString
	Category    sql.NullString
	Subcategory sql.NullString
	Maintenance sql.NullString
}

func (SilverProductCategory) TableName() string { return "silver.erp_product_category" }

// SilverCustomerDemo is one conformed row of silver.erp_customer_demo with
// the NAS prefix stripped and future birthdates nulled.
type SilverCustomerDemo struct {
	CustomerID string
	Birthdate  sql.NullTime
	Gender     Gender
}

func (SilverCustomerDemo) TableName() string { return "silver.erp_customer_demo" }

// SilverCustomerLocation is one conformed row of silver.erp_customer_location
// with hyphen-free customer ids and full country names.
type SilverCustomerLocation struct {
	CustomerID string
	Country    string
}

func (SilverCustomerLocation) TableName() string { return "silver.erp_customer_location" }
