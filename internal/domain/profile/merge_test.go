package profile

import "testing"

func strPtr(s string) *string { return &s }

func TestBuildNextPreservesUnrelatedFields(t *testing.T) {
	current := &Record{
		DisplayName: strPtr("Alice"),
		Description: strPtr("hello"),
		Avatar:      &BlobMetadata{CID: "old-avatar", MimeType: "image/png", SizeBytes: 10},
		Banner:      &BlobMetadata{CID: "old-banner", MimeType: "image/jpeg", SizeBytes: 20},
	}
	newAvatar := BlobMetadata{CID: "new-avatar", MimeType: "image/png", SizeBytes: 30}

	next := BuildNext(current, newAvatar, nil, BannerKeep)

	if next.Avatar == nil || next.Avatar.CID != "new-avatar" {
		t.Fatalf("avatar not replaced: %+v", next.Avatar)
	}
	if next.DisplayName == nil || *next.DisplayName != "Alice" {
		t.Errorf("displayName not preserved: %v", next.DisplayName)
	}
	if next.Description == nil || *next.Description != "hello" {
		t.Errorf("description not preserved: %v", next.Description)
	}
	if next.Banner == nil || next.Banner.CID != "old-banner" {
		t.Errorf("banner not carried over: %+v", next.Banner)
	}
}

func TestBuildNextFromEmptyBaseline(t *testing.T) {
	newAvatar := BlobMetadata{CID: "cid-A", MimeType: "image/png", SizeBytes: 5}

	next := BuildNext(nil, newAvatar, nil, BannerKeep)

	if next.Avatar == nil || next.Avatar.CID != "cid-A" {
		t.Fatalf("avatar not set: %+v", next.Avatar)
	}
	if next.DisplayName != nil || next.Description != nil || next.Banner != nil {
		t.Errorf("empty baseline produced non-empty fields: %+v", next)
	}
}

func TestBuildNextSetsBanner(t *testing.T) {
	current := &Record{
		DisplayName: strPtr("Alice"),
		Banner:      &BlobMetadata{CID: "old-banner"},
	}
	newAvatar := BlobMetadata{CID: "cid-B"}
	newBanner := &BlobMetadata{CID: "cid-C", MimeType: "image/png", SizeBytes: 99}

	next := BuildNext(current, newAvatar, newBanner, BannerSet)

	if next.Banner == nil || next.Banner.CID != "cid-C" {
		t.Fatalf("banner not replaced: %+v", next.Banner)
	}
	if next.DisplayName == nil || *next.DisplayName != "Alice" {
		t.Errorf("displayName not preserved: %v", next.DisplayName)
	}
}

func TestBuildNextBannerSetWithoutMetadataKeepsPrior(t *testing.T) {
	current := &Record{Banner: &BlobMetadata{CID: "old-banner"}}

	next := BuildNext(current, BlobMetadata{CID: "cid-B"}, nil, BannerSet)

	if next.Banner == nil || next.Banner.CID != "old-banner" {
		t.Errorf("failed banner fetch must preserve prior banner, got %+v", next.Banner)
	}
}

func TestBuildNextClearsBanner(t *testing.T) {
	current := &Record{Banner: &BlobMetadata{CID: "old-banner"}}

	next := BuildNext(current, BlobMetadata{CID: "cid-B"}, nil, BannerClear)

	if next.Banner != nil {
		t.Errorf("banner not cleared: %+v", next.Banner)
	}
}
