package contracts

import "time"

// ChangeType classifies a constituent change between two trading days.
type ChangeType string

const (
	ChangeEntered ChangeType = "entered"
	ChangeExited  ChangeType = "exited"
)

// StockObservation is a raw per-stock market snapshot for one trading day.
// Observations for a date form a full snapshot, not an append log: storing
// a new set for a date replaces any prior set.
type StockObservation struct {
	Symbol              string    `json:"symbol"`
	CompanyName         string    `json:"company_name"`
	Date                time.Time `json:"date"`
	LastPrice           float64   `json:"last_price"`
	MarketCap           float64   `json:"market_cap"`
	OneDayReturnPercent float64   `json:"one_day_return_percent"`
	DataSource          string    `json:"data_source,omitempty"`
}

// IndexComposition is one constituent row of the equal-weight index for a
// date. For any date the weights of all rows sum to 100.
type IndexComposition struct {
	Date          time.Time `json:"date"`
	Symbol        string    `json:"symbol"`
	CompanyName   string    `json:"company_name"`
	WeightPercent float64   `json:"weight_percent"`
	MarketCap     float64   `json:"market_cap"`
	Price         float64   `json:"price"`
	ReturnPercent float64   `json:"return_percent"`
}

// IndexPerformance is the compounded index state for one trading day.
// IndexValue chains strictly sequentially: the value for a date cannot be
// computed without the most recent prior value.
type IndexPerformance struct {
	Date                    time.Time `json:"date"`
	DailyReturnPercent      float64   `json:"daily_return_percent"`
	CumulativeReturnPercent float64   `json:"cumulative_return_percent"`
	IndexValue              float64   `json:"index_value"`
	CompaniesCount          int       `json:"companies_count"`
}

// CompositionChange describes a symbol entering or exiting the index
// between two temporally adjacent compositions. Changes are derived on
// read and never persisted outside the cache.
type CompositionChange struct {
	Date                  time.Time  `json:"date"`
	Symbol                string     `json:"symbol"`
	CompanyName           string     `json:"company_name"`
	ChangeType            ChangeType `json:"change_type"`
	PreviousWeightPercent float64    `json:"previous_weight_percent"`
	NewWeightPercent      float64    `json:"new_weight_percent"`
}

// BuildResult reports the outcome of one incremental build run.
// NothingToDo is true only when the range had no gaps to begin with;
// a run that found gaps but could not fill any (every fetch failed)
// reports NothingToDo=false with the failed dates listed.
type BuildResult struct {
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	TradingDays       int       `json:"trading_days"`
	CompositionsBuilt int       `json:"compositions_built"`
	FailedFetchDates  []string  `json:"failed_fetch_dates,omitempty"`
	NothingToDo       bool      `json:"nothing_to_do"`
	Success           bool      `json:"success"`
	ErrorMessage      string    `json:"error_message,omitempty"`
}

// OperationResult reports the outcome of a single ingest operation.
type OperationResult struct {
	Success          bool      `json:"success"`
	Operation        string    `json:"operation"`
	Date             time.Time `json:"date"`
	RecordsProcessed int       `json:"records_processed"`
	Duration         float64   `json:"execution_time_seconds"`
	ErrorMessage     string    `json:"error_message,omitempty"`
}

// ValidationResult reports whether a date holds the expected observation
// count.
type ValidationResult struct {
	Date          time.Time `json:"date"`
	IsValid       bool      `json:"is_valid"`
	ExpectedCount int       `json:"expected_count"`
	ActualCount   int       `json:"actual_count"`
	HasData       bool      `json:"has_data"`
}
