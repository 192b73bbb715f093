package client

import (
	"net/http"
)

type Client struct {
	Dictations  DictationService
	Evaluations EvaluationService
}

func New(url string, opts ...RequestOption) *Client {
	opts = append(opts, WithURL(url))

	return &Client{
		Dictations:  NewDictationService(opts...),
		Evaluations: NewEvaluationService(opts...),
	}
}

func newRequestConfig(opts ...RequestOption) *RequestConfig {
	c := &RequestConfig{
		Client: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func Ptr[T any](v T) *T {
	return &v
}
