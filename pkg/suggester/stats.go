package suggester

type ShardStats struct {
	Label       string `json:"type"`
	Shard       int    `json:"shard"`
	SizeInBytes int    `json:"sizeInBytes"`
}

type Snapshot struct {
	TotalSizeInBytes int                     `json:"totalSizeInBytes"`
	Indices          map[string][]ShardStats `json:"indices"`
}

type Reporter struct {
	registry *Registry
}

func NewReporter(registry *Registry) *Reporter {
	return &Reporter{registry: registry}
}

// Snapshot reports the automaton size of every built instance. Unbuilt instances are left out,
// so an index nobody queried yet does not show up.
func (r *Reporter) Snapshot() Snapshot {
	snap := Snapshot{Indices: make(map[string][]ShardStats)}
	for _, in := range r.registry.Instances(nil) {
		size, ok := in.SizeBytes()
		if !ok {
			continue
		}
		key := in.Key()
		snap.Indices[key.Index] = append(snap.Indices[key.Index], ShardStats{
			Label:       key.Label(),
			Shard:       key.Shard,
			SizeInBytes: size,
		})
		snap.TotalSizeInBytes += size
	}
	return snap
}
