package entity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrUnsupportedChain      = errors.New("chain not supported by provider")
	ErrProviderNotConfigured = errors.New("provider API key not configured")
	ErrNoProviderForChain    = errors.New("no provider for chain")
	ErrCircuitOpen           = errors.New("circuit breaker open")
)

// ValidationError reports malformed caller input. It is terminal.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ProviderError is the failure of a single adapter call.
type ProviderError struct {
	Provider  ProviderID
	Operation string
	ChainID   uint64
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s on chain %d: %v", e.Provider, e.Operation, e.ChainID, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// AggregateProviderError reports that every provider failed for one capability on one chain.
type AggregateProviderError struct {
	Capability Capability
	ChainID    uint64
	Errors     map[ProviderID]string
	Cause      error
}

func (e *AggregateProviderError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s on chain %d: %v", e.Capability, e.ChainID, e.Cause)
	}
	ids := make([]string, 0, len(e.Errors))
	for id := range e.Errors {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id+": "+e.Errors[ProviderID(id)])
	}
	return fmt.Sprintf("all providers failed for %s on chain %d (%s)", e.Capability, e.ChainID, strings.Join(parts, "; "))
}

func (e *AggregateProviderError) Unwrap() error {
	return e.Cause
}

// AcquisitionError reports that no usable data was obtained for any chain and capability.
type AcquisitionError struct {
	Address  string
	Failures []ChainError
	Err      error
}

func (e *AcquisitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to acquire wallet data for %s: %v", e.Address, e.Err)
	}
	return fmt.Sprintf("failed to acquire wallet data for %s: all %d chain requests failed", e.Address, len(e.Failures))
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that the analysis deadline elapsed. Callers should offer a retry.
type TimeoutError struct {
	Stage    string
	Deadline time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("analysis exceeded its %s deadline during %s; try again", e.Deadline, e.Stage)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// SummaryGenerationError is recovered internally by the fallback generator.
type SummaryGenerationError struct {
	Generator string
	Err       error
}

func (e *SummaryGenerationError) Error() string {
	return fmt.Sprintf("summary generation with %s failed: %v", e.Generator, e.Err)
}

func (e *SummaryGenerationError) Unwrap() error {
	return e.Err
}
