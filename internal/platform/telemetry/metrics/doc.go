// Package metrics provides operational metrics for the bot.
//
// Metrics are kept in a dedicated Prometheus registry and exposed through
// Handler on the operator HTTP endpoint:
//
//   - godlike_commands_total{command,outcome}: slash commands and sheet
//     interactions by result
//   - godlike_dice_total{kind}: dice requested, split by regular, hard and
//     wiggle
//   - godlike_roll_log_failures_total: regular-die results that could not be
//     appended to the roll log
//   - godlike_sheet_sessions: interactive sheets currently open
//
// All recording methods are safe on a nil *Metrics.
package metrics
