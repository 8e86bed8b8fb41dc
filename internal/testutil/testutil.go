// Package testutil provides test utilities for semgov:
//   - quiet loggers for service construction (Logger)
//   - in-memory SQLite stores with lifecycle cleanup (NewStore)
//   - metric fixtures built with functional options (NewMetric)
//
// The helpers depend only on the store and metric packages so that
// every higher layer's tests can use them without import cycles.
package testutil

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/semlayer/semgov/pkg/store"
)

// Logger returns a logger that only reports errors, keeping test
// output readable.
func Logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return logger
}

// NewStore returns a started in-memory store that is stopped when the
// test finishes.
func NewStore(t *testing.T) store.Store {
	t.Helper()

	st, err := store.NewStore(Logger(), &store.Config{Path: ":memory:", BusyTimeout: 1000})
	require.NoError(t, err)
	require.NoError(t, st.Start(context.Background()))

	t.Cleanup(func() {
		require.NoError(t, st.Stop())
	})

	return st
}
