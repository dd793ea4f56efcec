package profile

import (
	"encoding/json"
	"fmt"
)

// RecordType is the lexicon type written into every profile record.
const RecordType = "app.bsky.actor.profile"

// BlobMetadata describes a fetched blob: its content identifier, the sniffed
// media type and the exact byte length. It is derived fresh every cycle and
// never persisted locally.
type BlobMetadata struct {
	CID       string
	MimeType  string
	SizeBytes uint64
}

// blobRefJSON is the wire shape of a blob reference inside a repo record.
type blobRefJSON struct {
	Type string `json:"$type"`
	Ref  struct {
		Link string `json:"$link"`
	} `json:"ref"`
	MimeType string `json:"mimeType"`
	Size     uint64 `json:"size"`
}

// MarshalJSON encodes the metadata as an atproto blob reference.
func (b BlobMetadata) MarshalJSON() ([]byte, error) {
	var ref blobRefJSON
	ref.Type = "blob"
	ref.Ref.Link = b.CID
	ref.MimeType = b.MimeType
	ref.Size = b.SizeBytes
	return json.Marshal(ref)
}

// UnmarshalJSON decodes an atproto blob reference.
func (b *BlobMetadata) UnmarshalJSON(data []byte) error {
	var ref blobRefJSON
	if err := json.Unmarshal(data, &ref); err != nil {
		return fmt.Errorf("failed to decode blob reference: %w", err)
	}
	b.CID = ref.Ref.Link
	b.MimeType = ref.MimeType
	b.SizeBytes = ref.Size
	return nil
}

// Record is a local read copy of the remote profile record, held only for the
// duration of one update cycle. Fields the pipeline never touches are kept in
// extra so a rewrite cannot drop them.
type Record struct {
	DisplayName *string
	Description *string
	Avatar      *BlobMetadata
	Banner      *BlobMetadata

	extra map[string]json.RawMessage
}

// managed keys are owned by the typed fields above; everything else round-trips
// through extra untouched.
func isManagedKey(k string) bool {
	switch k {
	case "$type", "displayName", "description", "avatar", "banner":
		return true
	}
	return false
}

// MarshalJSON encodes the record in the app.bsky.actor.profile wire shape,
// re-emitting any unrecognized fields captured at read time.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.extra)+5)
	for k, v := range r.extra {
		out[k] = v
	}
	out["$type"] = json.RawMessage(fmt.Sprintf("%q", RecordType))

	encode := func(key string, v interface{}) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode profile field %s: %w", key, err)
		}
		out[key] = raw
		return nil
	}
	if r.DisplayName != nil {
		if err := encode("displayName", *r.DisplayName); err != nil {
			return nil, err
		}
	}
	if r.Description != nil {
		if err := encode("description", *r.Description); err != nil {
			return nil, err
		}
	}
	if r.Avatar != nil {
		if err := encode("avatar", *r.Avatar); err != nil {
			return nil, err
		}
	}
	if r.Banner != nil {
		if err := encode("banner", *r.Banner); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a profile record, routing known fields into the typed
// struct and preserving the rest verbatim.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode profile record: %w", err)
	}

	*r = Record{}
	for k, v := range raw {
		if !isManagedKey(k) {
			if r.extra == nil {
				r.extra = make(map[string]json.RawMessage)
			}
			r.extra[k] = v
		}
	}

	if v, ok := raw["displayName"]; ok {
		if err := json.Unmarshal(v, &r.DisplayName); err != nil {
			return fmt.Errorf("invalid displayName in profile record: %w", err)
		}
	}
	if v, ok := raw["description"]; ok {
		if err := json.Unmarshal(v, &r.Description); err != nil {
			return fmt.Errorf("invalid description in profile record: %w", err)
		}
	}
	if v, ok := raw["avatar"]; ok {
		if err := json.Unmarshal(v, &r.Avatar); err != nil {
			return fmt.Errorf("invalid avatar in profile record: %w", err)
		}
	}
	if v, ok := raw["banner"]; ok {
		if err := json.Unmarshal(v, &r.Banner); err != nil {
			return fmt.Errorf("invalid banner in profile record: %w", err)
		}
	}
	return nil
}
