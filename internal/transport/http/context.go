package http

import (
	"context"
	"net/http"
)

func contextWithBiopsyNo(ctx context.Context, biopsyNo string) context.Context {
	return context.WithValue(ctx, biopsyNoKey{}, biopsyNo)
}

func biopsyNoFrom(r *http.Request) string {
	v, _ := r.Context().Value(biopsyNoKey{}).(string)
	return v
}
