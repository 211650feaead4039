package models

// AssetDTO is one asset as the admin API and gRPC service report it.
type AssetDTO struct {
	Path string `json:"path"`
	Kind string `json:"kind"` // "script" or "style"
}

type PayloadDTO struct {
	Entry  string     `json:"entry"`
	Assets []AssetDTO `json:"assets"`
}

// EntryDTO mirrors one manifest entry plus its resolved chunk graph.
type EntryDTO struct {
	Key            string   `json:"key"`
	File           string   `json:"file"`
	Src            string   `json:"src,omitempty"`
	CSS            []string `json:"css"`
	IsEntry        bool     `json:"is_entry"`
	Imports        []string `json:"imports"`
	DynamicImports []string `json:"dynamic_imports"`
	ImportedChunks []string `json:"imported_chunks,omitempty"`
}

type EntryListDTO struct {
	Total   int      `json:"total"`
	Keys    []string `json:"keys"`
	Entries []string `json:"entries"`
}
