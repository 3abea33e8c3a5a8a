package contracts

// Release describes one release-type's promoted artifact set. Instances
// originate upstream (the promotion process writes them); the sync engine
// only ever reads them and relocates the files they name. JSON tags are
// kept in alphabetical order so serialized sidecars come out with sorted
// keys.
type Release struct {
	AmountMetrics  []AmountMetric               `json:"amount_metrics"`
	Developer      string                       `json:"developer"`
	Files          []string                     `json:"files"`
	Info           map[string]map[string]string `json:"info,omitempty"`
	Name           string                       `json:"name"`
	PGPPublicKey   string                       `json:"pgp_public_key"`
	SizeMetrics    []SizeMetric                 `json:"size_metrics"`
	TorrentFile    string                       `json:"torrent_file"`
	Version        string                       `json:"version"`
	VersionMetrics []VersionMetric              `json:"version_metrics"`
}

// Metric records are carried through sidecars untouched; the engine never
// interprets them.

type AmountMetric struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

type SizeMetric struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Size        float64 `json:"size"`
}

type VersionMetric struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}
