// Package health reports whether the configuration engine and its secret
// backend are usable.
//
// A Checker reports one component. The engine is healthy once its snapshot
// is published; the secret resolver maps the vault circuit breaker onto
// Healthy, Degraded and Unhealthy. An Aggregator runs several checkers
// concurrently and folds them into one Report:
//
//	agg := health.NewAggregator()
//	agg.Register(engine.Checker())
//	agg.Register(resolver.Checker())
//	report := agg.Run(ctx)
//	fmt.Println(report.Status)
package health
