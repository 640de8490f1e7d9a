package shortener_test

import (
	"context"
	"testing"

	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/stretchr/testify/assert"
)

func TestCallerContext(t *testing.T) {
	t.Run("empty without caller", func(t *testing.T) {
		assert.Equal(t, shortener.Caller{}, shortener.CallerFrom(context.Background()))
	})

	t.Run("round trips caller", func(t *testing.T) {
		caller := shortener.Caller{ClientIP: "10.0.0.1", UserAgent: "curl/8", Referrer: "https://ref.example"}
		ctx := shortener.WithCaller(context.Background(), caller)

		assert.Equal(t, caller, shortener.CallerFrom(ctx))
	})
}
