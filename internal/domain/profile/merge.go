package profile

// BannerOp tells BuildNext what to do with the banner field.
type BannerOp int

const (
	// BannerKeep carries the current banner over unchanged.
	BannerKeep BannerOp = iota
	// BannerSet replaces the banner with freshly fetched metadata.
	BannerSet
	// BannerClear removes the banner from the record.
	BannerClear
)

// BuildNext constructs the next profile record from the current one by
// overlaying only the intended changes. displayName, description and any
// unrecognized fields are always carried over; the avatar is always replaced;
// the banner follows op. A BannerSet without metadata (failed banner fetch)
// degrades to BannerKeep so a fetch failure can never erase an existing banner.
func BuildNext(current *Record, newAvatar BlobMetadata, newBanner *BlobMetadata, op BannerOp) *Record {
	next := &Record{}
	if current != nil {
		next.DisplayName = current.DisplayName
		next.Description = current.Description
		next.Banner = current.Banner
		if len(current.extra) > 0 {
			next.extra = current.extra
		}
	}

	next.Avatar = &newAvatar

	switch op {
	case BannerSet:
		if newBanner != nil {
			next.Banner = newBanner
		}
	case BannerClear:
		next.Banner = nil
	}
	return next
}
