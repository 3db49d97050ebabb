// Package dataprocessing turns uploaded sales exports into report data.
//
// # Pipeline
//
//	Uploads → Loader (parallel workbook parsing, plans file) → Dataset
//	Dataset → Processor.Clean (date range, exclusions, derived fields) → Transactions
//	Transactions → Summarize / PrepareYoY / MultiBrandSegment / FlavorSegment
//
// Loads are memoized by a BLAKE2b hash of the uploaded names and contents,
// so repeated reports over the same files parse them once.
//
// # Rules
//
// Channel overrides, product exclusions, package size and unit patterns, and
// the segment matchers come from config.Rules compiled into a RuleSet.
// A RuleSet is immutable and may be shared between goroutines.
//
// # Usage
//
//	memo := dataprocessing.NewMemo(dataprocessing.NewLoader(logger), store, logger)
//	ds, _, err := memo.Load(ctx, uploads)
//	if err != nil {
//	    return err
//	}
//	proc := dataprocessing.NewProcessor(nil, logger)
//	rows, err := proc.Clean(ctx, ds, from, to, "")
//	summary := proc.Summarize(ctx, rows, params)
package dataprocessing
