package simulator

import "github.com/sarchlab/rv32pipe/timing/pipeline"

// Severity codes for the log channel.
const (
	logSuccess = pipeline.LogSuccess
	logTrace   = pipeline.LogTrace
	logWarning = pipeline.LogWarning
	logFatal   = pipeline.LogFatal
)

// LogEntry is the severity-coded message a presentation collaborator reads
// from Simulator.Logs. It is the same shape the pipeline controller already
// emits, so cycle-local traces and façade-level faults share one channel.
type LogEntry = pipeline.LogEntry

// LogChannel accumulates log entries across Step calls and is drained on
// read. It is a first-class domain type, not a log sink: severity-coded
// messages for a presentation collaborator to consume, not diagnostics for
// an operator.
type LogChannel struct {
	entries []LogEntry
}

func (c *LogChannel) append(severity int, message string) {
	c.entries = append(c.entries, LogEntry{Severity: severity, Message: message})
}

func (c *LogChannel) absorb(entries []LogEntry) {
	c.entries = append(c.entries, entries...)
}

// Drain returns all accumulated entries and clears the channel.
func (c *LogChannel) Drain() []LogEntry {
	out := c.entries
	c.entries = nil
	return out
}
