package cache_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/layerconf/cache"
)

func ExampleNewMemoryCache() {
	c := cache.NewMemoryCache()
	ctx := context.Background()

	_ = c.Set(ctx, "db.password", "hunter2")

	value, ok := c.Get(ctx, "db.password")
	fmt.Println("found:", ok, "length:", len(value))
	// Output:
	// found: true length: 7
}

func ExampleMemoryCache_Clear() {
	c := cache.NewMemoryCache()
	ctx := context.Background()

	_ = c.Set(ctx, "api.token", "t")
	_ = c.Clear(ctx)

	_, ok := c.Get(ctx, "api.token")
	fmt.Println("found after clear:", ok)
	// Output:
	// found after clear: false
}
