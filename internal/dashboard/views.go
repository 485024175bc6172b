package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/roach88/kpidash/internal/aggregate"
	"github.com/roach88/kpidash/internal/classify"
	"github.com/roach88/kpidash/internal/event"
	"github.com/roach88/kpidash/internal/filter"
	"github.com/roach88/kpidash/internal/target"
	"github.com/roach88/kpidash/internal/window"
)

// seriesName keys a yearly series, e.g. "revenue_2025".
func seriesName(metric string, year int) string {
	return fmt.Sprintf("%s_%d", metric, year)
}

func (e *Engine) managerial(rep *Report, s scope, clock window.Clock) error {
	ytdTable, err := e.table(target.FamilyYTDRevenue)
	if err != nil {
		return err
	}
	qtdTable, err := e.table(target.FamilyQTDRevenue)
	if err != nil {
		return err
	}

	rep.Years = window.ResolveYears(s.ds, clock)
	ws := window.Windows(rep.Years, clock.Now())
	rep.Windows = ws

	sales := s.sales()
	rep.KPIs = []classify.KPIResult{
		classify.VersusPrior(KPIRevenueMonth, sales.within(ws.MTD).sum(), sales.within(ws.PrevMonth).sum()),
		classify.Against(KPIRevenueYTD, sales.within(ws.YTD).sum(), ytdTable.Default),
		classify.Against(KPIRevenueQTD, sales.within(ws.QTD).sum(), qtdTable.Default),
	}

	// The chart compares calendar years, not the resolved previous year.
	for _, y := range []int{rep.Years.Current, rep.Years.Current - 1} {
		rep.Series[seriesName("revenue", y)] = sales.monthly(aggregate.SumAmount, y)
	}

	rows := aggregate.SortByValue(sales.within(ws.YTD).categories(aggregate.SumAmount, aggregate.KeyEntityID), true)
	rep.Leaderboard = make([]LeaderRow, len(rows))
	for i, r := range rows {
		rep.Leaderboard[i] = LeaderRow{Name: r.Keys[0], Revenue: r.Value.V, Sales: r.Rows}
	}
	return nil
}

func (e *Engine) salesTeam(rep *Report, s scope, clock window.Clock, salesperson string) error {
	tables := make(map[string]target.Table, 4)
	for _, family := range []string{
		target.FamilySalesCount,
		target.FamilyAnnualRevenue,
		target.FamilyQuarterlyRevenue,
		target.FamilyYearlyGoal,
	} {
		t, err := e.table(family)
		if err != nil {
			return err
		}
		tables[family] = t
	}

	rep.Salespeople = filter.Options(s.ds, event.ColumnEntityID)
	rep.Years = window.ResolveYears(s.ds, clock)
	ws := window.Windows(rep.Years, clock.Now())
	rep.Windows = ws

	sales := s.sales()
	if salesperson != "" {
		sales = sales.narrow("entity="+filter.EscapeValue(salesperson), func(ev event.Event) bool {
			return ev.EntityID == salesperson
		})
	}

	// Thresholds resolve by the selector value; "All" falls back to the defaults.
	entity := salesperson
	if entity == "" {
		entity = filter.All
	}

	revenueYTD := sales.within(ws.YTD).sum()
	revenueLastYear := sales.within(ws.PrevYear).sum()

	rep.KPIs = []classify.KPIResult{
		classify.VersusPrior(KPIRevenueMonth, sales.within(ws.MTD).sum(), sales.within(ws.PrevMonth).sum()),
		classify.Against(KPISalesYTD, sales.within(ws.YTD).count(), tables[target.FamilySalesCount].Pair(entity)),
		classify.Against(KPIRevenueYTD, revenueYTD, tables[target.FamilyAnnualRevenue].Pair(entity)),
		classify.Against(KPIRevenueQTD, sales.within(ws.QTD).sum(), tables[target.FamilyQuarterlyRevenue].Pair(entity)),
	}

	thisYear := sales.monthly(aggregate.SumAmount, rep.Years.Current)
	rep.Series["revenue_this_year"] = thisYear
	rep.Series["revenue_last_year"] = sales.monthly(aggregate.SumAmount, rep.Years.Previous)
	rep.Series["team_average"] = thisYear.RollingMean(e.rolling)

	goal := tables[target.FamilyYearlyGoal].Pair(entity).Upper
	tier := classify.MotivationOf(revenueYTD, revenueLastYear, goal)
	rep.Motivation = &MotivationTile{
		Tier:     tier,
		Message:  tier.Message(),
		Goal:     goal,
		ThisYear: revenueYTD,
		LastYear: revenueLastYear,
	}
	return nil
}

func (e *Engine) traffic(rep *Report, s scope, clock window.Clock) error {
	pairs := make(map[string]target.Pair, 3)
	for _, family := range []string{target.FamilyVisits, target.FamilyProductVisits, target.FamilySales} {
		t, err := e.table(family)
		if err != nil {
			return err
		}
		pairs[family] = t.Default
	}

	rep.Years = window.ResolveYears(s.ds, clock)
	rep.Windows = window.Windows(rep.Years, clock.Now())

	thisYear := s.year(rep.Years.Current)
	lastYear := s.year(rep.Years.Previous)
	product := func(sc scope) scope {
		return sc.narrow("product_page", event.Event.IsProductPage)
	}

	visits, visitsLast := thisYear.count(), lastYear.count()
	productVisits, productVisitsLast := product(thisYear).count(), product(lastYear).count()
	sales, salesLast := thisYear.sales().count(), lastYear.sales().count()

	rep.KPIs = []classify.KPIResult{
		classify.Against(KPIVisits, visits, pairs[target.FamilyVisits]),
		classify.VersusPrior(KPIVisitsYoY, visits, visitsLast),
		classify.Against(KPIProductVisits, productVisits, pairs[target.FamilyProductVisits]),
		classify.VersusPrior(KPIProductVisitsYoY, productVisits, productVisitsLast),
		classify.Against(KPISales, sales, pairs[target.FamilySales]),
		classify.VersusPrior(KPISalesYoY, sales, salesLast),
	}

	rep.Breakdowns["sales_by_region"] = s.sales().valueCounts(aggregate.KeyRegion)
	rep.Breakdowns["events_by_weekday"] = thisYear.group(aggregate.Count, aggregate.KeyWeekday)
	rep.Breakdowns["events_by_hour"] = thisYear.group(aggregate.Count, aggregate.KeyHour)
	rep.Breakdowns["sales_by_device"] = thisYear.sales().valueCounts(aggregate.KeyDeviceType)
	rep.Breakdowns["sales_by_referrer"] = thisYear.sales().valueCounts(aggregate.KeyReferrerType)
	rep.Breakdowns["sales_by_user_agent"] = thisYear.sales().valueCounts(aggregate.KeyUserAgent)
	return nil
}

// advertisement always reports the real-world year of now, regardless of
// which years hold sales.
func (e *Engine) advertisement(rep *Report, s scope, now time.Time) error {
	timeTable, err := e.table(target.FamilyAvgTimeOnPage)
	if err != nil {
		return err
	}
	demoTable, err := e.table(target.FamilyDemoRequests)
	if err != nil {
		return err
	}

	rep.Years = window.Years{Current: now.Year(), Previous: now.Year() - 1}
	rep.Windows = window.Windows(rep.Years, now)

	thisYear := s.year(rep.Years.Current)
	rep.KPIs = []classify.KPIResult{
		classify.AgainstValue(KPIAvgTimeOnPage, thisYear.scalar(aggregate.MeanTimeOnPage), timeTable.Default),
		classify.Against(KPIDemoRequests, thisYear.demos().count(), demoTable.Default),
	}

	demos := s.demos()
	rep.Breakdowns["demos_by_country_product"] = demos.categories(aggregate.Count, aggregate.KeyRegion, aggregate.KeyDemoProduct)
	rep.Funnel = funnel(
		demos.categories(aggregate.Count, aggregate.KeyDemoProduct),
		s.sales().categories(aggregate.Count, aggregate.KeyDemoProduct),
	)

	for _, y := range []int{rep.Years.Current, rep.Years.Previous} {
		rep.Series[seriesName("demos", y)] = demos.monthly(aggregate.Count, y)
		rep.Series[seriesName("events", y)] = s.monthly(aggregate.Count, y)
	}
	return nil
}

// funnel joins demo and sale counts per demo product. Products present on
// only one side get 0 on the other.
func funnel(demos, sales []aggregate.Row) []FunnelRow {
	byProduct := make(map[string]*FunnelRow)
	get := func(product string) *FunnelRow {
		r, ok := byProduct[product]
		if !ok {
			r = &FunnelRow{Product: product}
			byProduct[product] = r
		}
		return r
	}
	for _, r := range demos {
		get(r.Keys[0]).Demos = r.Rows
	}
	for _, r := range sales {
		get(r.Keys[0]).Sales = r.Rows
	}

	out := make([]FunnelRow, 0, len(byProduct))
	for _, r := range byProduct {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product < out[j].Product })
	return out
}
