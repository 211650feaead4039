package models

import (
	"vitehub/pkg/manifest"
	"vitehub/pkg/vite"
)

func FromPayload(entry string, p *vite.Payload) PayloadDTO {
	assets := p.Assets()
	out := PayloadDTO{Entry: entry, Assets: make([]AssetDTO, 0, len(assets))}
	for _, a := range assets {
		out.Assets = append(out.Assets, AssetDTO{Path: a.Path, Kind: a.Kind.String()})
	}
	return out
}

func FromEntry(m manifest.Manifest, key string, e *manifest.Entry) EntryDTO {
	dto := EntryDTO{
		Key:            key,
		File:           e.File,
		Src:            e.Src,
		CSS:            e.CSS,
		IsEntry:        e.IsEntry,
		Imports:        e.Imports,
		DynamicImports: e.DynamicImports,
	}
	for _, chunk := range m.ImportedChunks(key) {
		dto.ImportedChunks = append(dto.ImportedChunks, chunk.File)
	}
	return dto
}

func FromManifest(m manifest.Manifest) EntryListDTO {
	return EntryListDTO{Total: len(m), Keys: m.Keys(), Entries: m.Entries()}
}

func FromReload(r vite.ReloadResult) ReloadEvent {
	ev := ReloadEvent{
		Type:    ManifestReloadEventType,
		Path:    r.Path,
		OK:      r.OK(),
		Entries: r.Entries,
		At:      r.At,
	}
	if r.Err != nil {
		ev.Error = r.Err.Error()
	}
	return ev
}
