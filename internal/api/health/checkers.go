package health

import (
	"context"
	"fmt"
)

// Pinger interface for stores that support ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StorageChecker checks key-value store connectivity.
type StorageChecker struct {
	name   string
	pinger Pinger
}

// NewStorageChecker creates a health checker for the named storage driver.
func NewStorageChecker(driver string, p Pinger) *StorageChecker {
	return &StorageChecker{name: "storage_" + driver, pinger: p}
}

// Name returns the checker name.
func (c *StorageChecker) Name() string {
	return c.name
}

// Check verifies the store is accessible.
func (c *StorageChecker) Check(ctx context.Context) error {
	if c.pinger == nil {
		return fmt.Errorf("storage not initialized")
	}
	return c.pinger.Ping(ctx)
}

// FuncChecker adapts a function to the Checker interface.
type FuncChecker struct {
	name  string
	check func(ctx context.Context) error
}

// NewFuncChecker creates a checker named name that runs check.
func NewFuncChecker(name string, check func(ctx context.Context) error) *FuncChecker {
	return &FuncChecker{name: name, check: check}
}

// Name returns the checker name.
func (c *FuncChecker) Name() string {
	return c.name
}

// Check runs the wrapped function.
func (c *FuncChecker) Check(ctx context.Context) error {
	return c.check(ctx)
}
