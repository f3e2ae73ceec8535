// Package merge holds the precedence-merge primitives shared by every
// stage of the pipeline: earlier writers always win, later stages may
// only fill gaps or replace entries they explicitly key.
package merge

import (
	"dario.cat/mergo"

	"mspro-labs/bean-atlas/internal/models"
	"mspro-labs/bean-atlas/internal/textutil"
)

// FillMissing copies extracted values into a coffee record, touching only
// fields that are still unset. Fields populated by the catalog or an
// enhancer are left exactly as they were.
func FillMissing(c *models.Coffee, d models.ExtractedDetails) error {
	patch := models.Coffee{
		Country:  d.Country,
		Region:   d.Region,
		Producer: d.Producer,
		Process:  d.Process,
		Protocol: d.Protocol,
		Variety:  d.Variety,
		Notes:    textutil.Dedupe(d.Notes),
	}
	if err := mergo.Merge(c, patch); err != nil {
		return err
	}
	c.Notes = textutil.Dedupe(c.Notes)
	return nil
}

// Keyed merges a batch of new entries into an existing collection sharing
// a key. New entries replace existing ones with the same key, existing
// entries with unseen keys are preserved in place, and remaining new keys
// are appended in batch order. The result has exactly one entry per key.
func Keyed[T any, K comparable](existing, incoming []T, key func(T) K) []T {
	replace := make(map[K]T, len(incoming))
	for _, e := range incoming {
		replace[key(e)] = e
	}

	out := make([]T, 0, len(existing)+len(incoming))
	seen := make(map[K]struct{}, len(existing)+len(incoming))
	for _, e := range existing {
		k := key(e)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if r, ok := replace[k]; ok {
			out = append(out, r)
		} else {
			out = append(out, e)
		}
	}
	for _, e := range incoming {
		k := key(e)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}
