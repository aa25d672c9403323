// Package timeouts defines shared timeout constants used across the bot.
package timeouts

import "time"

// ReadHeader limits how long the operator HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the operator HTTP server and the chat gateway wait
// for in-flight work during graceful shutdown.
const Shutdown = 5 * time.Second

// SheetSession is the inactivity window after which an interactive character
// sheet is abandoned.
const SheetSession = 180 * time.Second

// TransientNotice is how long edit confirmations stay visible.
const TransientNotice = 5 * time.Second

// StoreOperation caps a single persistence operation triggered by a command.
const StoreOperation = 10 * time.Second
