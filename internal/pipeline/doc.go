// Package pipeline implements the four-stage migration: Export → Transform → Import → Validate.
//
// # Stage Engines
//
// Each stage is a standalone engine with explicit inputs and a returned
// summary value; no state is shared between stages except the JSON
// artifacts on disk:
//
//  1. [Exporter.Run] : snapshots every source collection, the auth
//     provider's user registry, and the blob-storage index into one JSON
//     array file per collection plus export_summary.json.
//  2. [Transformer.Run] : rewrites exported records into destination
//     shapes in fixed dependency order, normalizing flex fields, enums,
//     and dates, plus transform_summary.json.
//  3. [Importer.Run] : persists transformed records in batches, in the
//     same dependency order, with dry-run support, plus import_summary.json.
//  4. [Validator.Run] : independently compares export, transformed, and
//     live destination data, plus validation_report.json.
//
// # Failure Philosophy
//
// Expected failures (one collection's query, one record's write, one
// malformed field) are collected into the stage summary and never abort
// the run; a stage always produces a complete, inspectable report. Only
// fatal initialization errors propagate out (see shared sentinel errors).
//
// # Ordering
//
// Records are processed in the order they appear in the input file, which
// the exporter wrote in creation-time order. Destination collections are
// always handled in [DestinationOrder]: users first, trips last, because
// trips reference users and clients.
//
// # Progress Reporting
//
// All engines emit non-blocking [ProgressUpdate] values on an optional
// channel for CLI display; updates use select with default so reporting
// never blocks the pipeline.
package pipeline
