package simulate

import "github.com/l3aro/pyflow/pkg/flow"

// Snapshot is the plain-data form of a Result, used by the analysis cache
// and for JSON export.
type Snapshot struct {
	Graph flow.GraphSnapshot `json:"graph" msgpack:"graph"`
	Entry flow.NodeID        `json:"entry" msgpack:"entry"`
	End   flow.NodeID        `json:"end" msgpack:"end"`
	Log   []LogEntry         `json:"log" msgpack:"log"`
}

// Snapshot copies the result into plain data. The definition table and
// syntax back-references are not kept.
func (r *Result) Snapshot() Snapshot {
	return Snapshot{
		Graph: r.Graph.Snapshot(),
		Entry: r.Entry,
		End:   r.End,
		Log:   append([]LogEntry(nil), r.Log...),
	}
}

// Result rebuilds a Result from the snapshot.
func (s Snapshot) Result() *Result {
	return &Result{
		Graph: s.Graph.Restore(),
		Entry: s.Entry,
		End:   s.End,
		Log:   append([]LogEntry(nil), s.Log...),
	}
}
