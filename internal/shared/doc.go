// Package shared groups helpers used by more than one package but owned by
// none of them.
//
// The testutil subpackage builds sales and plans workbooks with excelize,
// serves fake license registries over httptest and captures slog output:
//
//	logger, logs := testutil.NewTestLogger(t)
//	data := testutil.SalesWorkbook(t, rows)
//	srv := testutil.NewRegistryServer(t, registry)
//
// Only test code should import testutil.
package shared
