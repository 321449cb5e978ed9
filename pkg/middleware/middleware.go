// Package middleware holds the HTTP wrappers shared by modules: CORS, request
// logging and panic recovery, plus the Stack that orders them.
package middleware

import "net/http"

// Middleware wraps a handler with cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

// Stack is an ordered list of Middleware. The first layer added is the
// outermost when applied.
type Stack struct {
	layers []Middleware
}

// New creates a Stack holding layers in order.
func New(layers ...Middleware) *Stack {
	s := &Stack{}
	s.Use(layers...)
	return s
}

// Use appends layers to the stack. Nil layers are skipped.
func (s *Stack) Use(layers ...Middleware) {
	for _, l := range layers {
		if l != nil {
			s.layers = append(s.layers, l)
		}
	}
}

// Len reports the number of layers.
func (s *Stack) Len() int {
	return len(s.layers)
}

// Apply wraps handler in every layer.
func (s *Stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.layers) - 1; i >= 0; i-- {
		handler = s.layers[i](handler)
	}
	return handler
}
