package ui

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// NewProgressWriter returns a stderr writer for one tracker per synced source.
// It does not stop on its own; pair StartProgress with StopProgress.
func NewProgressWriter() progress.Writer {
	writer := progress.NewWriter()
	writer.SetOutputWriter(os.Stderr)
	writer.SetAutoStop(false)
	writer.SetTrackerLength(30)
	writer.SetMessageLength(24)
	writer.SetUpdateFrequency(100 * time.Millisecond)
	writer.SetStyle(progress.StyleBlocks)
	writer.Style().Options.DoneString = "synced"
	writer.Style().Options.ErrorString = "failed"
	writer.Style().Visibility.ETA = false
	writer.Style().Visibility.Value = true

	return writer
}

// StartProgress renders the writer in the background and returns once
// rendering has begun, so a later StopProgress is never missed.
func StartProgress(writer progress.Writer) {
	go writer.Render()
	for !writer.IsRenderInProgress() {
		time.Sleep(time.Millisecond)
	}
}

// StopProgress stops the writer and waits for its final frame.
func StopProgress(writer progress.Writer) {
	writer.Stop()
	for writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
