package silver

import (
	"context"

	"flakeforge/internal/warehouse"
	"flakeforge/pkg/models"
)

// Bronze readers scan whole tables into memory. The row order of the scan
// defines the bronze offset the dedup and version-chain tie-breaks use.

func readCustomers(ctx context.Context, svc *warehouse.Service) ([]models.BronzeCustomerInfo, error) {
	rows, err := svc.Query(ctx, "SELECT cst_id, cst_key, cst_firstname, cst_lastname, cst_marital_status, cst_gndr, cst_create_date FROM bronze.crm_customer_info")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BronzeCustomerInfo
	for rows.Next() {
		var r models.BronzeCustomerInfo
		if err := rows.Scan(&r.ID, &r.Key, &r.FirstName, &r.LastName, &r.MaritalStatus, &r.Gender, &r.CreateDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func readProducts(ctx context.Context, svc *warehouse.Service) ([]models.BronzeProductInfo, error) {
	rows, err := svc.Query(ctx, "SELECT prd_id, prd_key, prd_nm, prd_cost, prd_line, prd_start_dt, prd_end_dt FROM bronze.crm_product_info")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BronzeProductInfo
	for rows.Next() {
		var r models.BronzeProductInfo
		if err := rows.Scan(&r.ID, &r.Key, &r.Name, &r.Cost, &r.Line, &r.StartDate, &r.EndDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func readSales(ctx context.Context, svc *warehouse.Service) ([]models.BronzeSalesDetail, error) {
	rows, err := svc.Query(ctx, "SELECT sls_ord_num, sls_prd_key, sls_cust_id, sls_order_dt, sls_ship_dt, sls_due_dt, sls_sales, sls_quantity, sls_price FROM bronze.crm_sales_details")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BronzeSalesDetail
	for rows.Next() {
		var r models.BronzeSalesDetail
		if err := rows.Scan(&r.OrderNumber, &r.ProductKey, &r.CustomerID, &r.OrderDate, &r.ShipDate, &r.DueDate, &r.SalesAmount, &r.Quantity, &r.Price); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func readCategories(ctx context.Context, svc *warehouse.Service) ([]models.BronzeProductCategory, error) {
	rows, err := svc.Query(ctx, "SELECT id, cat, subcat, maintenance FROM bronze.erp_product_category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BronzeProductCategory
	for rows.Next() {
		var r models.BronzeProductCategory
		if err := rows.Scan(&r.ID, &r.Category, &r.Subcategory, &r.Maintenance); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func readCustomerDemo(ctx context.Context, svc *warehouse.Service) ([]models.BronzeCustomerDemo, error) {
	rows, err := svc.Query(ctx, "SELECT cid, bdate, gen FROM bronze.erp_customer_demo")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BronzeCustomerDemo
	for rows.Next() {
		var r models.BronzeCustomerDemo
		if err := rows.Scan(&r.CustomerID, &r.Birthdate, &r.Gender); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func readLocations(ctx context.Context, svc *warehouse.Service) ([]models.BronzeCustomerLocation, error) {
	rows, err := svc.Query(ctx, "SELECT cid, cntry FROM bronze.erp_customer_location")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BronzeCustomerLocation
	for rows.Next() {
		var r models.BronzeCustomerLocation
		if err := rows.Scan(&r.CustomerID, &r.Country); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
