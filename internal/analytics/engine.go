package analytics

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"

	"saldo/internal/cache"
	"saldo/internal/core"
)

// Report bundles every derived view of a ledger.
type Report struct {
	Month            string               `json:"month"` // YYYY-MM of the reference time
	Totals           core.Totals          `json:"totals"`
	MonthlyTrend     []core.MonthlyBucket `json:"monthly_trend"`
	ExpenseBreakdown []core.CategoryTotal `json:"expense_breakdown"`
	IncomeBreakdown  []core.CategoryTotal `json:"income_breakdown"`
	BalanceEvolution []core.BalancePoint  `json:"balance_evolution"`
	Statistics       core.Statistics      `json:"statistics"`
}

// Build computes a Report without caching.
func Build(txs []core.Transaction, budget decimal.Decimal, now time.Time, catalog *core.Catalog, labeler Labeler) Report {
	return Report{
		Month:            now.Format("2006-01"),
		Totals:           ComputeTotals(txs, budget),
		MonthlyTrend:     MonthlyTrend(txs, now, labeler),
		ExpenseBreakdown: CategoryBreakdown(txs, core.Expense, catalog, labeler),
		IncomeBreakdown:  CategoryBreakdown(txs, core.Income, catalog, labeler),
		BalanceEvolution: BalanceEvolution(txs, labeler),
		Statistics:       ComputeStatistics(txs, now),
	}
}

// Engine memoizes reports by content. Two ledgers with the same records,
// budget, reference month and locale share an entry, so a reload that
// changes nothing is a cache hit.
type Engine struct {
	catalog *core.Catalog
	labeler Labeler
	locale  string
	clock   func() time.Time
	cache   *cache.LRUCache[Report]
}

type EngineOption func(*Engine)

// WithLabeler sets the labeler; locale distinguishes cache entries rendered
// by different labelers.
func WithLabeler(l Labeler, locale string) EngineOption {
	return func(e *Engine) { e.labeler, e.locale = l, locale }
}

func WithEngineClock(clock func() time.Time) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

func NewEngine(catalog *core.Catalog, cacheSize int, ttl time.Duration, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: catalog,
		labeler: DefaultLabeler{},
		locale:  "en",
		clock:   time.Now,
		cache:   cache.NewLRUCache[Report](cacheSize, ttl),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Report returns the memoized report for the given ledger content.
func (e *Engine) Report(txs []core.Transaction, budget decimal.Decimal) Report {
	now := e.clock()
	key := e.key(txs, budget, now)
	r, _ := e.cache.GetOrCompute(key, func() Report {
		return Build(txs, budget, now, e.catalog, e.labeler)
	})
	return r
}

// Labeler returns the labeler reports are rendered with.
func (e *Engine) Labeler() Labeler {
	return e.labeler
}

// Cache exposes the underlying cache for stats and cleanup registration.
func (e *Engine) Cache() *cache.LRUCache[Report] {
	return e.cache
}

// key hashes every field that influences a report. Amounts are hashed as
// cents so that 1.5 and 1.50 collide.
func (e *Engine) key(txs []core.Transaction, budget decimal.Decimal, now time.Time) string {
	h := xxhash.New()
	var buf [8]byte
	writeInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	writeStr := func(s string) {
		h.WriteString(s)
		h.Write([]byte{0})
	}

	writeStr(e.locale)
	writeStr(now.Format("2006-01"))
	writeStr(now.Location().String())
	writeInt(core.ToCents(budget))
	writeInt(int64(len(txs)))
	for _, tx := range txs {
		writeStr(tx.ID)
		writeStr(string(tx.Type))
		writeStr(tx.CategoryID)
		writeInt(core.ToCents(tx.Amount))
		writeInt(tx.Date.UnixNano())
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
