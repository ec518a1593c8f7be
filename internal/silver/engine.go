package silver

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"flakeforge/internal/warehouse"
	"flakeforge/pkg/errors"
	"flakeforge/pkg/models"
)

// Engine orchestrates the six silver table transforms.
type Engine struct {
	warehouse   *warehouse.Service
	logger      *zap.Logger
	chunkSize   int
	parallelism int

	// now supplies the batch reference time for future-date checks.
	// Overridable in tests.
	now func() time.Time

	// onStep, when set, receives each StepResult as its step completes.
	// Called from worker goroutines.
	onStep func(StepResult)
}

// OnStepResult registers a callback invoked as each table's step completes,
// failed steps included. The callback must be safe for concurrent use.
func (e *Engine) OnStepResult(fn func(StepResult)) {
	e.onStep = fn
}

// NewEngine creates a silver engine tuned by the run configuration.
func NewEngine(svc *warehouse.Service, logger *zap.Logger, run models.RunConfig) *Engine {
	return &Engine{
		warehouse:   svc,
		logger:      logger,
		chunkSize:   run.ChunkSizeOrDefault(),
		parallelism: run.ParallelismOrDefault(),
		now:         time.Now,
	}
}

type step struct {
	table string
	run   func(ctx context.Context) (Counters, error)
}

func (e *Engine) steps() []step {
	return []step{
		{"silver.crm_customer_info", e.runCustomers},
		{"silver.crm_product_info", e.runProducts},
		{"silver.crm_sales_details", e.runSales},
		{"silver.erp_product_category", e.runCategories},
		{"silver.erp_customer_demo", e.runCustomerDemo},
		{"silver.erp_customer_location", e.runLocations},
	}
}

// Tables lists the silver tables in canonical step order.
func Tables() []string {
	e := &Engine{}
	steps := e.steps()
	tables := make([]string, len(steps))
	for i, st := range steps {
		tables[i] = st.table
	}
	return tables
}

// TransformAll runs the silver step for each selected table. The filter
// matches unqualified table names case-insensitively; nil selects all.
// With parallelism > 1 the steps run concurrently under an errgroup; the
// first failure cancels steps that have not started yet, running statements
// are left to finish or fail on the cancelled context. Results are returned
// for every step that ran, failed steps included.
func (e *Engine) TransformAll(ctx context.Context, only []string) ([]StepResult, error) {
	selected := e.selectSteps(only)
	results := make([]StepResult, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)

	for i, st := range selected {
		i, st := i, st
		g.Go(func() error {
			start := time.Now()
			counters, err := st.run(gctx)
			result := StepResult{
				Table:    st.table,
				Counters: counters,
				Duration: time.Since(start),
			}
			if err != nil {
				result.Err = errors.StepError("silver", st.table, err)
				results[i] = result
				if e.onStep != nil {
					e.onStep(result)
				}
				return result.Err
			}

			e.logger.Info("Silver table transformed",
				zap.String("table", st.table),
				zap.Int("rows_in", counters.RowsIn),
				zap.Int("rows_out", counters.RowsOut),
				zap.Int("duplicates_dropped", counters.DuplicatesDropped),
				zap.Int("nulls_defaulted", counters.NullsDefaulted),
				zap.Int("values_recomputed", counters.ValuesRecomputed),
				zap.Int("dates_nulled", counters.DatesNulled),
				zap.Duration("elapsed", result.Duration),
			)
			results[i] = result
			if e.onStep != nil {
				e.onStep(result)
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

func (e *Engine) selectSteps(only []string) []step {
	steps := e.steps()
	if len(only) == 0 {
		return steps
	}

	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[strings.ToLower(warehouse.UnqualifiedName(name))] = true
	}

	selected := make([]step, 0, len(steps))
	for _, st := range steps {
		if wanted[strings.ToLower(warehouse.UnqualifiedName(st.table))] {
			selected = append(selected, st)
		}
	}
	return selected
}

var customerColumns = []string{"cst_id", "cst_key", "cst_firstname", "cst_lastname", "cst_marital_status", "cst_gndr", "cst_create_date"}

func (e *Engine) runCustomers(ctx context.Context) (Counters, error) {
	bronzeRows, err := readCustomers(ctx, e.warehouse)
	if err != nil {
		return Counters{}, err
	}

	silverRows, counters := TransformCustomers(bronzeRows)
	values := make([][]interface{}, len(silverRows))
	for i, r := range silverRows {
		values[i] = []interface{}{r.CustomerID, r.CustomerKey, r.FirstName, r.LastName, r.MaritalStatus.String(), r.Gender.String(), r.CreateDate}
	}
	return counters, e.writeTable(ctx, "silver.crm_customer_info", customerColumns, values)
}

var productColumns = []string{"prd_id", "cat_id", "prd_key", "prd_nm", "prd_cost", "prd_line", "prd_start_dt", "prd_end_dt"}

func (e *Engine) runProducts(ctx context.Context) (Counters, error) {
	bronzeRows, err := readProducts(ctx, e.warehouse)
	if err != nil {
		return Counters{}, err
	}

	silverRows, counters := TransformProducts(bronzeRows)
	values := make([][]interface{}, len(silverRows))
	for i, r := range silverRows {
		values[i] = []interface{}{r.ProductID, r.CategoryID, r.ProductKey, r.ProductName, r.Cost, r.ProductLine.String(), r.StartDate, r.EndDate}
	}
	return counters, e.writeTable(ctx, "silver.crm_product_info", productColumns, values)
}

var salesColumns = []string{"sls_ord_num", "sls_prd_key", "sls_cust_id", "sls_order_dt", "sls_ship_dt", "sls_due_dt", "sls_sales", "sls_quantity", "sls_price"}

func (e *Engine) runSales(ctx context.Context) (Counters, error) {
	bronzeRows, err := readSales(ctx, e.warehouse)
	if err != nil {
		return Counters{}, err
	}

	silverRows, counters := TransformSales(bronzeRows)
	values := make([][]interface{}, len(silverRows))
	for i, r := range silverRows {
		values[i] = []interface{}{r.OrderNumber, r.ProductKey, r.CustomerID, r.OrderDate, r.ShipDate, r.DueDate, r.SalesAmount, r.Quantity, r.Price}
	}
	return counters, e.writeTable(ctx, "silver.crm_sales_details", salesColumns, values)
}

var categoryColumns = []string{"id", "cat", "subcat", "maintenance"}

func (e *Engine) runCategories(ctx context.Context) (Counters, error) {
	bronzeRows, err := readCategories(ctx, e.warehouse)
	if err != nil {
		return Counters{}, err
	}

	silverRows, counters := TransformCategories(bronzeRows)
	values := make([][]interface{}, len(silverRows))
	for i, r := range silverRows {
		values[i] = []interface{}{r.CategoryID, r.Category, r.Subcategory, r.Maintenance}
	}
	return counters, e.writeTable(ctx, "silver.erp_product_category", categoryColumns, values)
}

var demoColumns = []string{"cid", "bdate", "gen"}

func (e *Engine) runCustomerDemo(ctx context.Context) (Counters, error) {
	bronzeRows, err := readCustomerDemo(ctx, e.warehouse)
	if err != nil {
		return Counters{}, err
	}

	silverRows, counters := TransformCustomerDemo(bronzeRows, e.now())
	values := make([][]interface{}, len(silverRows))
	for i, r := range silverRows {
		values[i] = []interface{}{r.CustomerID, r.Birthdate, r.Gender.String()}
	}
	return counters, e.writeTable(ctx, "silver.erp_customer_demo", demoColumns, values)
}

var locationColumns = []string{"cid", "cntry"}

func (e *Engine) runLocations(ctx context.Context) (Counters, error) {
	bronzeRows, err := readLocations(ctx, e.warehouse)
	if err != nil {
		return Counters{}, err
	}

	silverRows, counters := TransformLocations(bronzeRows)
	values := make([][]interface{}, len(silverRows))
	for i, r := range silverRows {
		values[i] = []interface{}{r.CustomerID, r.Country}
	}
	return counters, e.writeTable(ctx, "silver.erp_customer_location", locationColumns, values)
}
