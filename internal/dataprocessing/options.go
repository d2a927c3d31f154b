package dataprocessing

// UnstockRule selects which columns must sum to zero for an item to count as unstocked.
type UnstockRule string

const (
	// UnstockOnHandAndSales sums on-hand quantity with the twelve weekly columns.
	UnstockOnHandAndSales UnstockRule = "on_hand_and_sales"

	// UnstockSalesOnly looks at the twelve weekly columns alone.
	UnstockSalesOnly UnstockRule = "sales_only"
)

// Options configures normalization behavior
type Options struct {
	// UnstockRule decides the UNSTOCK_ITEMS check
	UnstockRule UnstockRule

	// Workers bounds parallel row derivation; 1 or less derives sequentially
	Workers int

	// ParallelThreshold is the row count from which derivation is split across workers
	ParallelThreshold int
}

// DefaultOptions returns default normalization options
func DefaultOptions() Options {
	return Options{
		UnstockRule:       UnstockOnHandAndSales,
		Workers:           1,
		ParallelThreshold: 5000,
	}
}
