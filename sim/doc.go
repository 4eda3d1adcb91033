// Package sim implements a discrete-event simulator for network slice
// provisioning. Slice requests arrive over virtual time, a provisioning
// algorithm embeds each one onto the shared substrate, and admitted slices
// release their resources when their lifetime expires. The simulator tracks
// acceptance, revenue and cost throughout the run and reports them as a
// Results object.
package sim
