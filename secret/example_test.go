package secret_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/layerconf/env"
	"github.com/jonwraymond/layerconf/secret"
)

func ExampleResolver_Get() {
	src := env.NewMap(nil, map[string]string{
		"SECRET_DB_PASSWORD": "from-prefix",
		"API_TOKEN":          "from-env",
	})
	r := secret.NewResolver(src)
	defer r.Close()

	ctx := context.Background()
	pw, _ := r.Get(ctx, "db.password")
	tok, _ := r.Get(ctx, "api.token")
	_, found := r.Get(ctx, "smtp.password")

	fmt.Println(pw)
	fmt.Println(tok)
	fmt.Println(found)
	// Output:
	// from-prefix
	// from-env
	// false
}
