// Package health reports whether a postsync session can do its job: whether
// the backend answers, and whether the query cache is mostly serving data
// rather than errors.
//
// Checkers are registered on an Aggregator, which runs them in parallel
// under one deadline and folds the results into a Report:
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewBackendChecker(client))
//	agg.Register(health.NewCacheChecker(cache, 0.5))
//
//	report := agg.Report(ctx)
//	_ = report.WriteJSON(os.Stdout)
package health
