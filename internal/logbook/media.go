package logbook

// Medium is one attachment reference inside an entry: a filename unique
// within the entry plus free-form rendering options. Options are not part of
// the attachment's identity.
type Medium struct {
	Filename string
	Options  string
}

// Header preserves an unrecognized header line verbatim.
type Header struct {
	Key   string
	Value string
}

// diffMedia compares two attachment lists by filename and reports which names
// appear only in the new list and which only in the old one.
func diffMedia(old, updated []Medium) (added, removed []string) {
	oldNames := make(map[string]bool, len(old))
	for _, m := range old {
		oldNames[m.Filename] = true
	}
	newNames := make(map[string]bool, len(updated))
	for _, m := range updated {
		newNames[m.Filename] = true
	}

	for _, m := range updated {
		if !oldNames[m.Filename] {
			added = append(added, m.Filename)
		}
	}
	for _, m := range old {
		if !newNames[m.Filename] {
			removed = append(removed, m.Filename)
		}
	}
	return added, removed
}

func mediaFilenames(media []Medium) []string {
	names := make([]string, len(media))
	for i, m := range media {
		names[i] = m.Filename
	}
	return names
}

func hasFilename(media []Medium, name string) bool {
	for _, m := range media {
		if m.Filename == name {
			return true
		}
	}
	return false
}
