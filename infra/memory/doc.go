// Package memory provides a typed object pool used to avoid GC churn on
// the order-book hot path. It is dependency-free.
package memory
