package health_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/layerconf/health"
)

func ExampleAggregator_Run() {
	agg := health.NewAggregator()
	agg.Register(health.NewCheckerFunc("engine", func(context.Context) health.Result {
		return health.Healthy("snapshot published")
	}))
	agg.Register(health.NewCheckerFunc("secrets", func(context.Context) health.Result {
		return health.Degraded("vault circuit half-open")
	}))

	report := agg.Run(context.Background())
	for _, name := range report.Names() {
		fmt.Printf("%s: %s\n", name, report.Results[name].Status)
	}
	fmt.Println("overall:", report.Status)
	// Output:
	// engine: healthy
	// secrets: degraded
	// overall: degraded
}
